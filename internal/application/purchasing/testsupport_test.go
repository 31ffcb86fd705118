package purchasing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/opsdash/backend/internal/domain/bms"
	"github.com/opsdash/backend/internal/domain/purchasing"
	"github.com/opsdash/backend/internal/domain/shared"
	"github.com/opsdash/backend/internal/infrastructure/persistence"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&purchasing.Supplier{},
		&purchasing.Product{},
		&purchasing.ProductSupplier{},
		&purchasing.PurchaseOrder{},
		&purchasing.PurchaseOrderItem{},
	)
	require.NoError(t, err)

	return db
}

func storeSupplier(t *testing.T, db *gorm.DB, code, name, externalID string) *purchasing.Supplier {
	t.Helper()

	supplier, err := purchasing.NewSupplier(code, name)
	require.NoError(t, err)
	if externalID != "" {
		supplier.LinkExternal(externalID)
	}
	require.NoError(t, db.Create(supplier).Error)
	return supplier
}

func storeProduct(t *testing.T, db *gorm.DB, sku, name string, stock int) *purchasing.Product {
	t.Helper()

	product := &purchasing.Product{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        sku,
		Name:       name,
		Stock:      stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func newOrderService(t *testing.T, db *gorm.DB) *PurchaseOrderService {
	t.Helper()
	return NewPurchaseOrderService(
		persistence.NewGormPurchaseOrderRepository(db),
		persistence.NewGormSupplierRepository(db),
		zap.NewNop(),
	)
}

// stubGateway records the create request it receives
type stubGateway struct {
	lastCreate *bms.CreateOrderRequest
	createErr  error
	response   bms.CreateOrderResponse
}

func (s *stubGateway) ListPurchaseOrders(ctx context.Context) ([]bms.PurchaseOrder, error) {
	return nil, nil
}

func (s *stubGateway) ListReceptions(ctx context.Context) ([]bms.Reception, error) {
	return nil, nil
}

func (s *stubGateway) ListSuppliers(ctx context.Context) ([]bms.Supplier, error) {
	return nil, nil
}

func (s *stubGateway) CreatePurchaseOrder(ctx context.Context, req bms.CreateOrderRequest) (*bms.CreateOrderResponse, error) {
	s.lastCreate = &req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &s.response, nil
}

var _ bms.Gateway = (*stubGateway)(nil)

// fakeSalesRepo serves a fixed monthly series regardless of window
type fakeSalesRepo struct {
	samples []purchasing.DemandSample
}

func (f *fakeSalesRepo) MonthlySales(ctx context.Context, productID uuid.UUID, months int) ([]purchasing.DemandSample, error) {
	return f.samples, nil
}

var _ purchasing.SalesHistoryRepository = (*fakeSalesRepo)(nil)
