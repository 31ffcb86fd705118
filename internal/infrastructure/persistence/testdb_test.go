package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/opsdash/backend/internal/domain/purchasing"
)

// setupTestDB creates an in-memory sqlite database with the purchasing schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&purchasing.Supplier{},
		&purchasing.Product{},
		&purchasing.ProductSupplier{},
		&purchasing.PurchaseOrder{},
		&purchasing.PurchaseOrderItem{},
		&purchasing.SyncState{},
	)
	require.NoError(t, err)

	return db
}
