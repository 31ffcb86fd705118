package sync

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsdash/backend/internal/domain/bms"
	"github.com/opsdash/backend/internal/domain/purchasing"
	"github.com/opsdash/backend/internal/infrastructure/persistence"
	"github.com/opsdash/backend/internal/infrastructure/telemetry"
)

// ReceptionSyncResult summarizes one reception reconciliation run
type ReceptionSyncResult struct {
	Fetched       int
	Processed     int
	Skipped       int
	UpdatedOrders int
}

// ReceptionSyncService applies external goods-receipt events to local
// purchase orders, matched by the platform's reference string
type ReceptionSyncService struct {
	db      *persistence.Database
	gateway bms.Gateway
	logger  *zap.Logger
	metrics *telemetry.BusinessMetrics
}

// NewReceptionSyncService creates a new ReceptionSyncService
func NewReceptionSyncService(db *persistence.Database, gateway bms.Gateway, logger *zap.Logger) *ReceptionSyncService {
	return &ReceptionSyncService{
		db:      db,
		gateway: gateway,
		logger:  logger.Named("reception-sync"),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ReceptionSyncService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// SyncReceptions runs one reconciliation pass, discarding the counters
func (s *ReceptionSyncService) SyncReceptions(ctx context.Context) error {
	_, err := s.Run(ctx)
	return err
}

// Run fetches the reception list and applies every event created since the
// stored watermark. Receptions are append-only upstream, so the watermark
// filters on creation time alone. Quantities accumulate onto the matched
// order's lines and the order status is re-derived afterwards.
func (s *ReceptionSyncService) Run(ctx context.Context) (*ReceptionSyncResult, error) {
	start := time.Now()

	receptions, err := s.gateway.ListReceptions(ctx)
	if err != nil {
		s.recordRun(ctx, start, true)
		return nil, err
	}

	result := &ReceptionSyncResult{Fetched: len(receptions)}

	err = s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := persistence.NewGormPurchaseOrderRepository(tx)
		syncState := persistence.NewGormSyncStateRepository(tx)

		watermark, err := syncState.Get(ctx, purchasing.SyncKeyReceptions)
		if err != nil {
			return err
		}

		var newest time.Time
		touched := make(map[string]bool)
		for _, reception := range receptions {
			if reception.CreatedAt.After(newest) {
				newest = reception.CreatedAt
			}
			// Strictly after: quantities accumulate, so replaying the
			// reception at the watermark would double-count it
			if watermark != nil && !reception.CreatedAt.After(*watermark) {
				continue
			}

			updated, err := s.applyReception(ctx, orders, reception)
			if err != nil {
				return err
			}
			if updated == "" {
				result.Skipped++
				continue
			}
			result.Processed++
			touched[updated] = true
		}
		result.UpdatedOrders = len(touched)

		// Advance only: a degraded fetch missing the newest receptions
		// must not pull the watermark back
		if newest.IsZero() || (watermark != nil && !newest.After(*watermark)) {
			return nil
		}
		return syncState.Set(ctx, purchasing.SyncKeyReceptions, newest)
	})
	if err != nil {
		s.recordRun(ctx, start, true)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordSyncRecords(ctx, telemetry.SyncTypeReceptions, telemetry.SyncOutcomeProcessed, result.Processed)
		s.metrics.RecordSyncRecords(ctx, telemetry.SyncTypeReceptions, telemetry.SyncOutcomeSkipped, result.Skipped)
	}
	s.recordRun(ctx, start, false)

	s.logger.Info("reception sync finished",
		zap.Int("fetched", result.Fetched),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("updated_orders", result.UpdatedOrders))

	return result, nil
}

func (s *ReceptionSyncService) recordRun(ctx context.Context, start time.Time, failed bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSyncRun(ctx, telemetry.SyncTypeReceptions, time.Since(start), failed)
}

// applyReception matches one reception to a local order and accumulates its
// quantities. It returns the updated order's id, or "" when the event was
// skipped. A reference matching zero orders or more than one order is
// skipped with a warn line for an operator to resolve; the order sync runs
// first in each cycle, so a missing order means the platform never listed
// it, not that this run is ahead of it.
func (s *ReceptionSyncService) applyReception(ctx context.Context, orders purchasing.PurchaseOrderRepository, reception bms.Reception) (string, error) {
	matches, err := orders.FindByExternalReference(ctx, reception.Reference)
	if err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		s.logger.Warn("skipping reception with no matching order",
			zap.String("reception_id", reception.ID),
			zap.String("reference", reception.Reference))
		return "", nil
	case 1:
	default:
		s.logger.Warn("skipping reception with ambiguous reference",
			zap.String("reception_id", reception.ID),
			zap.String("reference", reception.Reference),
			zap.Int("matches", len(matches)))
		return "", nil
	}

	order := &matches[0]
	applied := false
	for _, line := range reception.Items {
		if line.Qty <= 0 {
			continue
		}
		if order.ReceiveBySKU(line.SKU, line.Qty) {
			applied = true
		} else {
			s.logger.Warn("reception line matches no order line",
				zap.String("reception_id", reception.ID),
				zap.String("order_number", order.OrderNumber),
				zap.String("sku", line.SKU))
		}
	}
	if !applied {
		return "", nil
	}

	order.RefreshStatus()
	if err := orders.Save(ctx, order); err != nil {
		return "", err
	}
	return order.ID.String(), nil
}
