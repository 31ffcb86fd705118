package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsdash/backend/internal/domain/purchasing"
	"github.com/opsdash/backend/internal/domain/shared"
)

// GormProductSupplierRepository implements ProductSupplierRepository using GORM
type GormProductSupplierRepository struct {
	db *gorm.DB
}

// NewGormProductSupplierRepository creates a new GormProductSupplierRepository
func NewGormProductSupplierRepository(db *gorm.DB) *GormProductSupplierRepository {
	return &GormProductSupplierRepository{db: db}
}

// FindByPair finds the price link between a product and a supplier
func (r *GormProductSupplierRepository) FindByPair(ctx context.Context, productID, supplierID uuid.UUID) (*purchasing.ProductSupplier, error) {
	var link purchasing.ProductSupplier
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND supplier_id = ?", productID, supplierID).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// Save creates or updates a product-supplier link
func (r *GormProductSupplierRepository) Save(ctx context.Context, link *purchasing.ProductSupplier) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// Ensure GormProductSupplierRepository implements ProductSupplierRepository
var _ purchasing.ProductSupplierRepository = (*GormProductSupplierRepository)(nil)
