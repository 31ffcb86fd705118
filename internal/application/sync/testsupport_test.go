package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/opsdash/backend/internal/domain/bms"
	"github.com/opsdash/backend/internal/domain/purchasing"
	"github.com/opsdash/backend/internal/domain/shared"
	"github.com/opsdash/backend/internal/infrastructure/persistence"
)

// fakeGateway serves canned platform data
type fakeGateway struct {
	orders     []bms.PurchaseOrder
	receptions []bms.Reception
	suppliers  []bms.Supplier
	err        error
}

func (f *fakeGateway) ListPurchaseOrders(ctx context.Context) ([]bms.PurchaseOrder, error) {
	return f.orders, f.err
}

func (f *fakeGateway) ListReceptions(ctx context.Context) ([]bms.Reception, error) {
	return f.receptions, f.err
}

func (f *fakeGateway) ListSuppliers(ctx context.Context) ([]bms.Supplier, error) {
	return f.suppliers, f.err
}

func (f *fakeGateway) CreatePurchaseOrder(ctx context.Context, req bms.CreateOrderRequest) (*bms.CreateOrderResponse, error) {
	return nil, f.err
}

var _ bms.Gateway = (*fakeGateway)(nil)

// setupSyncDB creates an in-memory database with the purchasing schema
func setupSyncDB(t *testing.T) *persistence.Database {
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

	return &persistence.Database{DB: db}
}

// storeSupplier persists a supplier linked to the given external id
func storeSupplier(t *testing.T, db *persistence.Database, code, name, externalID string) *purchasing.Supplier {
	t.Helper()

	supplier, err := purchasing.NewSupplier(code, name)
	require.NoError(t, err)
	if externalID != "" {
		supplier.LinkExternal(externalID)
	}
	require.NoError(t, db.DB.Create(supplier).Error)
	return supplier
}

// storeProduct persists a catalog product
func storeProduct(t *testing.T, db *persistence.Database, sku, name string, stock int) *purchasing.Product {
	t.Helper()

	product := &purchasing.Product{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        sku,
		Name:       name,
		Stock:      stock,
	}
	require.NoError(t, db.DB.Create(product).Error)
	return product
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
