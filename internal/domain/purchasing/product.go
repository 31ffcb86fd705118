package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsdash/backend/internal/domain/shared"
)

// Product is the catalog entity referenced by purchasing. The purchasing
// core reads products to resolve SKUs; it never mutates them directly.
type Product struct {
	shared.BaseEntity
	SKU   string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name  string          `gorm:"type:varchar(200);not null"`
	Stock int             `gorm:"not null;default:0"`
	Cost  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductSupplier links a product to one of its suppliers and carries the
// supplier-side SKU and price. Refreshed as a side effect of order
// synchronization so purchasing prices stay current.
type ProductSupplier struct {
	shared.BaseEntity
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_supplier_pair,priority:1"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_supplier_pair,priority:2"`
	SupplierSKU   string          `gorm:"type:varchar(100)"`
	SupplierPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsPrimary     bool            `gorm:"not null;default:false"`
	MinOrderQty   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductSupplier) TableName() string {
	return "product_suppliers"
}

// NewProductSupplier creates a new product-supplier link
func NewProductSupplier(productID, supplierID uuid.UUID, supplierSKU string, price decimal.Decimal) (*ProductSupplier, error) {
	if productID == uuid.Nil || supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LINK", "Product and supplier IDs are required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Supplier price cannot be negative")
	}

	return &ProductSupplier{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		SupplierID:    supplierID,
		SupplierSKU:   supplierSKU,
		SupplierPrice: price,
	}, nil
}

// UpdateQuote refreshes the supplier-side SKU and price
func (ps *ProductSupplier) UpdateQuote(supplierSKU string, price decimal.Decimal) {
	if supplierSKU != "" {
		ps.SupplierSKU = supplierSKU
	}
	if !price.IsNegative() {
		ps.SupplierPrice = price
	}
	ps.UpdatedAt = time.Now()
}
