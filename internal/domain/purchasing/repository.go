package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderFilter represents query filter options for listing purchase orders
type OrderFilter struct {
	Status     *OrderStatus
	SupplierID *uuid.UUID
	Page       int
	PageSize   int
}

// PurchaseOrderRepository persists purchase orders together with their items.
// Save replaces the stored item set wholesale with the aggregate's items.
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByExternalID(ctx context.Context, externalID string) (*PurchaseOrder, error)
	// FindByExternalReference returns every order carrying the reference;
	// callers must treat multiple matches as ambiguous.
	FindByExternalReference(ctx context.Context, reference string) ([]PurchaseOrder, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// SupplierRepository persists suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindByExternalID(ctx context.Context, externalID string) (*Supplier, error)
	FindByCode(ctx context.Context, code string) (*Supplier, error)
	FindAll(ctx context.Context) ([]Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
}

// ProductRepository reads catalog products for SKU resolution
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
}

// ProductSupplierRepository persists product-supplier price links
type ProductSupplierRepository interface {
	FindByPair(ctx context.Context, productID, supplierID uuid.UUID) (*ProductSupplier, error)
	Save(ctx context.Context, link *ProductSupplier) error
}

// SyncStateRepository persists per-sync-type watermarks. Get returns nil
// for a sync that has never run.
type SyncStateRepository interface {
	Get(ctx context.Context, key string) (*time.Time, error)
	Set(ctx context.Context, key string, value time.Time) error
}

// SalesHistoryRepository aggregates historical sales into monthly demand
// samples, oldest month first
type SalesHistoryRepository interface {
	MonthlySales(ctx context.Context, productID uuid.UUID, months int) ([]DemandSample, error)
}
