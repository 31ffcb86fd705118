package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks purchase order activity and the reconciliation
// loops against the external platform.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderCreatedTotal *Counter
	orderAmountTotal  *Counter
	orderPushedTotal  *Counter
	syncRecordsTotal  *Counter
	syncRunsTotal     *Counter

	// Distribution metrics
	syncRunDuration *Histogram
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	bm.orderCreatedTotal, err = NewCounter(
		cfg.Meter,
		"opsdash_order_created_total",
		"Total number of purchase orders created",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmountTotal, err = NewCounter(
		cfg.Meter,
		"opsdash_order_amount_total",
		"Total purchase order amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderPushedTotal, err = NewCounter(
		cfg.Meter,
		"opsdash_order_pushed_total",
		"Total number of purchase orders pushed to the external platform",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.syncRecordsTotal, err = NewCounter(
		cfg.Meter,
		"opsdash_sync_records_total",
		"Total number of external records reconciled, by outcome",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	bm.syncRunsTotal, err = NewCounter(
		cfg.Meter,
		"opsdash_sync_runs_total",
		"Total number of reconciliation runs, by result",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.syncRunDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "opsdash_sync_run_duration_seconds",
		Description: "Duration of reconciliation runs",
		Unit:        "s",
		Boundaries:  SyncDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// OrderSource says where a purchase order came from, for metrics labeling.
type OrderSource string

const (
	OrderSourceLocal    OrderSource = "local"
	OrderSourcePlatform OrderSource = "platform"
)

// RecordOrderCreated records an order creation event.
// This should be called from the application layer when an order is created.
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, source OrderSource) {
	bm.orderCreatedTotal.Inc(ctx, AttrOrderSource.String(string(source)))
}

// RecordOrderAmount records the order amount.
// Amount should be in the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordOrderAmount(ctx context.Context, source OrderSource, amountCents int64) {
	bm.orderAmountTotal.Add(ctx, amountCents, AttrOrderSource.String(string(source)))
}

// RecordOrderWithAmount is a convenience method that records both order count and amount.
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, source OrderSource, amount decimal.Decimal) {
	bm.RecordOrderCreated(ctx, source)

	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordOrderAmount(ctx, source, amountCents)
}

// RecordOrderPushed records a purchase order handed to the external platform.
func (bm *BusinessMetrics) RecordOrderPushed(ctx context.Context) {
	bm.orderPushedTotal.Inc(ctx)
}

// SyncType identifies one of the reconciliation loops for metrics labeling.
type SyncType string

const (
	SyncTypeOrders     SyncType = "orders"
	SyncTypeReceptions SyncType = "receptions"
	SyncTypeSuppliers  SyncType = "suppliers"
)

// SyncOutcome says what the reconciler did with an external record.
type SyncOutcome string

const (
	SyncOutcomeCreated   SyncOutcome = "created"
	SyncOutcomeUpdated   SyncOutcome = "updated"
	SyncOutcomeProcessed SyncOutcome = "processed"
	SyncOutcomeSkipped   SyncOutcome = "skipped"
	SyncOutcomeLinked    SyncOutcome = "linked"
)

// RecordSyncRecords adds count reconciled records with the given outcome.
// Zero counts are dropped so empty runs do not create label series.
func (bm *BusinessMetrics) RecordSyncRecords(ctx context.Context, syncType SyncType, outcome SyncOutcome, count int) {
	if count <= 0 {
		return
	}
	bm.syncRecordsTotal.Add(ctx, int64(count),
		AttrSyncType.String(string(syncType)),
		AttrOutcome.String(string(outcome)),
	)
}

// RecordSyncRun records one reconciliation run with its duration and result.
func (bm *BusinessMetrics) RecordSyncRun(ctx context.Context, syncType SyncType, duration time.Duration, failed bool) {
	result := "ok"
	if failed {
		result = "error"
	}
	bm.syncRunsTotal.Inc(ctx,
		AttrSyncType.String(string(syncType)),
		AttrSyncResult.String(result),
	)
	bm.syncRunDuration.RecordDuration(ctx, duration,
		AttrSyncType.String(string(syncType)),
	)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
