// Package scheduler drives the periodic reconciliation against the
// external fulfillment platform.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OrderSyncer reconciles purchase orders pulled from the platform
type OrderSyncer interface {
	SyncOrders(ctx context.Context) error
}

// ReceptionSyncer reconciles goods-receipt events pulled from the platform
type ReceptionSyncer interface {
	SyncReceptions(ctx context.Context) error
}

// SupplierSyncer refreshes the supplier directory from the platform
type SupplierSyncer interface {
	SyncSuppliers(ctx context.Context) error
}

// SyncTriggerConfig holds the trigger's timing configuration
type SyncTriggerConfig struct {
	// Interval between order/reception reconciliation runs
	Interval time.Duration
	// SupplierInterval between supplier directory refreshes
	SupplierInterval time.Duration
}

// SyncTrigger periodically runs the reconcilers. Runs are serialized: a
// tick that fires while a run is still in flight is skipped, never queued.
// Orders are always reconciled before receptions, so a reception never
// arrives ahead of the order it belongs to.
type SyncTrigger struct {
	config    SyncTriggerConfig
	orders    OrderSyncer
	receipts  ReceptionSyncer
	suppliers SupplierSyncer
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastSupplierSync time.Time
}

// NewSyncTrigger creates a new sync trigger
func NewSyncTrigger(
	config SyncTriggerConfig,
	orders OrderSyncer,
	receipts ReceptionSyncer,
	suppliers SupplierSyncer,
	logger *zap.Logger,
) *SyncTrigger {
	return &SyncTrigger{
		config:    config,
		orders:    orders,
		receipts:  receipts,
		suppliers: suppliers,
		logger:    logger.Named("sync-trigger"),
	}
}

// Start starts the trigger loop. The first run fires immediately.
func (s *SyncTrigger) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("sync trigger started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("supplier_interval", s.config.SupplierInterval),
	)

	return nil
}

// Stop stops the trigger and waits for an in-flight run to finish
func (s *SyncTrigger) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("sync trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SyncTrigger) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes one reconciliation pass. A failure in one phase does
// not stop the following phases; each keeps its own watermark.
func (s *SyncTrigger) RunOnce(ctx context.Context) {
	started := time.Now()

	if s.suppliers != nil && time.Since(s.lastSupplierSync) >= s.config.SupplierInterval {
		if err := s.suppliers.SyncSuppliers(ctx); err != nil {
			s.logger.Error("supplier sync failed", zap.Error(err))
		} else {
			s.lastSupplierSync = time.Now()
		}
	}

	if err := s.orders.SyncOrders(ctx); err != nil {
		s.logger.Error("order sync failed", zap.Error(err))
	}

	if err := s.receipts.SyncReceptions(ctx); err != nil {
		s.logger.Error("reception sync failed", zap.Error(err))
	}

	s.logger.Debug("sync pass finished", zap.Duration("took", time.Since(started)))
}
