package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/opsdash/backend/internal/domain/purchasing"
	"github.com/opsdash/backend/internal/domain/shared"
)

func newStoredOrder(t *testing.T, db *gorm.DB, number string) *purchasing.PurchaseOrder {
	t.Helper()

	order, err := purchasing.NewPurchaseOrder(number, uuid.New())
	require.NoError(t, err)
	_, err = order.AddItem(nil, "SKU-1", "Widget", 10, decimal.NewFromInt(2))
	require.NoError(t, err)

	repo := NewGormPurchaseOrderRepository(db)
	require.NoError(t, repo.Save(context.Background(), order))
	return order
}

func TestGormPurchaseOrderRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	order := newStoredOrder(t, db, "PO-2026-00001")

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO-2026-00001", found.OrderNumber)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "SKU-1", found.Items[0].SupplierSKU)
	assert.Equal(t, 10, found.Items[0].QtyOrdered)
}

func TestGormPurchaseOrderRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPurchaseOrderRepository_FindByExternalID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	order := newStoredOrder(t, db, "PO-2026-00001")
	require.NoError(t, order.MarkSent("ext-99"))
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByExternalID(ctx, "ext-99")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindByExternalID(ctx, "ext-unknown")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPurchaseOrderRepository_FindByExternalReference(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	first := newStoredOrder(t, db, "PO-2026-00001")
	first.ExternalReference = "REF-A"
	require.NoError(t, repo.Save(ctx, first))

	second := newStoredOrder(t, db, "PO-2026-00002")
	second.ExternalReference = "REF-A"
	require.NoError(t, repo.Save(ctx, second))

	matches, err := repo.FindByExternalReference(ctx, "REF-A")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	none, err := repo.FindByExternalReference(ctx, "REF-B")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormPurchaseOrderRepository_SaveReplacesItems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	order := newStoredOrder(t, db, "PO-2026-00001")

	replacement, err := purchasing.NewPurchaseOrderItem(order.ID, nil, "SKU-2", "Gadget", 5, decimal.NewFromInt(3))
	require.NoError(t, err)
	order.ReplaceItems([]purchasing.PurchaseOrderItem{*replacement})
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "SKU-2", found.Items[0].SupplierSKU)

	var itemCount int64
	require.NoError(t, db.Model(&purchasing.PurchaseOrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), itemCount)
}

func TestGormPurchaseOrderRepository_FilterAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	order := newStoredOrder(t, db, "PO-2026-00001")
	require.NoError(t, order.TransitionTo(purchasing.OrderStatusSent))
	require.NoError(t, repo.Save(ctx, order))
	newStoredOrder(t, db, "PO-2026-00002")

	sent := purchasing.OrderStatusSent
	orders, err := repo.FindAll(ctx, purchasing.OrderFilter{Status: &sent})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "PO-2026-00001", orders[0].OrderNumber)

	count, err := repo.Count(ctx, purchasing.OrderFilter{Status: &sent})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	supplierID := order.SupplierID
	count, err = repo.Count(ctx, purchasing.OrderFilter{SupplierID: &supplierID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormPurchaseOrderRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	order := newStoredOrder(t, db, "PO-2026-00001")
	require.NoError(t, repo.Delete(ctx, order.ID))

	_, err := repo.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var itemCount int64
	require.NoError(t, db.Model(&purchasing.PurchaseOrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}

func TestGormPurchaseOrderRepository_GenerateOrderNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()

	year := time.Now().Year()

	number, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PO-%d-00001", year), number)

	newStoredOrder(t, db, number)

	next, err := repo.GenerateOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("PO-%d-00002", year), next)
}
