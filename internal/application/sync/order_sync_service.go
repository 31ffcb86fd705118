// Package sync contains the reconcilers that mirror the external
// fulfillment platform into the local purchasing database. Each reconciler
// is idempotent: it keys on external ids, filters on a persisted
// watermark, and applies a whole batch inside one transaction.
package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsdash/backend/internal/domain/bms"
	"github.com/opsdash/backend/internal/domain/purchasing"
	"github.com/opsdash/backend/internal/domain/shared"
	"github.com/opsdash/backend/internal/infrastructure/persistence"
	"github.com/opsdash/backend/internal/infrastructure/telemetry"
)

// OrderSyncResult summarizes one order reconciliation run
type OrderSyncResult struct {
	Fetched int
	Created int
	Updated int
	Skipped int
}

// OrderSyncService pulls purchase orders from the platform and upserts
// them locally, keyed on their external id
type OrderSyncService struct {
	db      *persistence.Database
	gateway bms.Gateway
	logger  *zap.Logger
	metrics *telemetry.BusinessMetrics
}

// NewOrderSyncService creates a new OrderSyncService
func NewOrderSyncService(db *persistence.Database, gateway bms.Gateway, logger *zap.Logger) *OrderSyncService {
	return &OrderSyncService{
		db:      db,
		gateway: gateway,
		logger:  logger.Named("order-sync"),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *OrderSyncService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// SyncOrders runs one reconciliation pass, discarding the counters
func (s *OrderSyncService) SyncOrders(ctx context.Context) error {
	_, err := s.Run(ctx)
	return err
}

// Run fetches the full order list and reconciles every order created or
// modified since the stored watermark. The whole batch commits in one
// transaction together with the advanced watermark: a failed run changes
// nothing and the next run retries the same window.
func (s *OrderSyncService) Run(ctx context.Context) (*OrderSyncResult, error) {
	start := time.Now()

	externalOrders, err := s.gateway.ListPurchaseOrders(ctx)
	if err != nil {
		s.recordRun(ctx, start, true)
		return nil, err
	}

	result := &OrderSyncResult{Fetched: len(externalOrders)}

	err = s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := persistence.NewGormPurchaseOrderRepository(tx)
		suppliers := persistence.NewGormSupplierRepository(tx)
		products := persistence.NewGormProductRepository(tx)
		links := persistence.NewGormProductSupplierRepository(tx)
		syncState := persistence.NewGormSyncStateRepository(tx)

		watermark, err := syncState.Get(ctx, purchasing.SyncKeyOrders)
		if err != nil {
			return err
		}

		var newest time.Time
		for _, external := range externalOrders {
			if ts := latestTimestamp(external.CreatedAt, external.UpdatedAt); ts.After(newest) {
				newest = ts
			}

			if watermark != nil && external.CreatedAt.Before(*watermark) && external.UpdatedAt.Before(*watermark) {
				continue
			}

			outcome, err := s.reconcileOrder(ctx, orders, suppliers, products, links, external)
			if err != nil {
				return err
			}
			switch outcome {
			case outcomeCreated:
				result.Created++
			case outcomeUpdated:
				result.Updated++
			case outcomeSkipped:
				result.Skipped++
			}
		}

		// Advance only: a degraded fetch missing the newest records must
		// not pull the watermark back
		if newest.IsZero() || (watermark != nil && !newest.After(*watermark)) {
			return nil
		}
		return syncState.Set(ctx, purchasing.SyncKeyOrders, newest)
	})
	if err != nil {
		s.recordRun(ctx, start, true)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordSyncRecords(ctx, telemetry.SyncTypeOrders, telemetry.SyncOutcomeCreated, result.Created)
		s.metrics.RecordSyncRecords(ctx, telemetry.SyncTypeOrders, telemetry.SyncOutcomeUpdated, result.Updated)
		s.metrics.RecordSyncRecords(ctx, telemetry.SyncTypeOrders, telemetry.SyncOutcomeSkipped, result.Skipped)
	}
	s.recordRun(ctx, start, false)

	s.logger.Info("order sync finished",
		zap.Int("fetched", result.Fetched),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

func (s *OrderSyncService) recordRun(ctx context.Context, start time.Time, failed bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSyncRun(ctx, telemetry.SyncTypeOrders, time.Since(start), failed)
}

type reconcileOutcome int

const (
	outcomeCreated reconcileOutcome = iota
	outcomeUpdated
	outcomeSkipped
)

// reconcileOrder upserts one external order. Orders whose supplier is not
// known locally are skipped and retried on a later run once the supplier
// sync has caught up.
func (s *OrderSyncService) reconcileOrder(
	ctx context.Context,
	orders purchasing.PurchaseOrderRepository,
	suppliers purchasing.SupplierRepository,
	products purchasing.ProductRepository,
	links purchasing.ProductSupplierRepository,
	external bms.PurchaseOrder,
) (reconcileOutcome, error) {
	supplier, err := suppliers.FindByExternalID(ctx, external.SupplierID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("skipping order with unknown supplier",
				zap.String("external_id", external.ID),
				zap.String("supplier_external_id", external.SupplierID))
			return outcomeSkipped, nil
		}
		return 0, err
	}

	status := bms.MapOrderStatus(external.Status, external.AnyReceived(), external.FullyReceived())

	items, err := s.buildItems(ctx, products, links, supplier, external)
	if err != nil {
		return 0, err
	}

	existing, err := orders.FindByExternalID(ctx, external.ID)
	switch {
	case err == nil:
		existing.ExternalReference = external.Reference
		existing.ReplaceItems(items)
		existing.Status = status
		existing.RefreshStatus()
		if err := orders.Save(ctx, existing); err != nil {
			return 0, err
		}
		return outcomeUpdated, nil

	case errors.Is(err, shared.ErrNotFound):
		orderNumber, err := orders.GenerateOrderNumber(ctx)
		if err != nil {
			return 0, err
		}
		order, err := purchasing.NewPurchaseOrder(orderNumber, supplier.ID)
		if err != nil {
			return 0, err
		}
		externalID := external.ID
		order.ExternalID = &externalID
		order.ExternalReference = external.Reference
		order.OrderDate = timePtr(external.CreatedAt)
		order.ReplaceItems(items)
		order.Status = status
		order.RefreshStatus()
		if err := orders.Save(ctx, order); err != nil {
			return 0, err
		}
		return outcomeCreated, nil

	default:
		return 0, err
	}
}

// buildItems converts external lines to local ones, resolving SKUs against
// the catalog and refreshing the product-supplier quotes along the way
func (s *OrderSyncService) buildItems(
	ctx context.Context,
	products purchasing.ProductRepository,
	links purchasing.ProductSupplierRepository,
	supplier *purchasing.Supplier,
	external bms.PurchaseOrder,
) ([]purchasing.PurchaseOrderItem, error) {
	items := make([]purchasing.PurchaseOrderItem, 0, len(external.Items))

	for _, line := range external.Items {
		if line.Qty <= 0 {
			continue
		}

		var productID *uuid.UUID
		product, err := products.FindBySKU(ctx, line.SKU)
		switch {
		case err == nil:
			productID = &product.ID
			if err := s.refreshQuote(ctx, links, product.ID, supplier.ID, line); err != nil {
				return nil, err
			}
		case errors.Is(err, shared.ErrNotFound):
			// Unknown SKU: keep the line, leave it unresolved
		default:
			return nil, err
		}

		item, err := purchasing.NewPurchaseOrderItem(uuid.Nil, productID, line.SKU, line.Name, line.Qty, line.Price)
		if err != nil {
			return nil, err
		}
		item.SetReceivedQty(line.QtyReceived)
		items = append(items, *item)
	}

	return items, nil
}

// refreshQuote upserts the product-supplier price link from the order line
func (s *OrderSyncService) refreshQuote(
	ctx context.Context,
	links purchasing.ProductSupplierRepository,
	productID, supplierID uuid.UUID,
	line bms.PurchaseOrderItem,
) error {
	link, err := links.FindByPair(ctx, productID, supplierID)
	switch {
	case err == nil:
		link.UpdateQuote(line.SKU, line.Price)
		return links.Save(ctx, link)
	case errors.Is(err, shared.ErrNotFound):
		link, err := purchasing.NewProductSupplier(productID, supplierID, line.SKU, line.Price)
		if err != nil {
			return err
		}
		return links.Save(ctx, link)
	default:
		return err
	}
}

func latestTimestamp(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
