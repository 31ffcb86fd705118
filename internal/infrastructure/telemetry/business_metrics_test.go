package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/opsdash/backend/internal/infrastructure/telemetry"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_RecordOrderCreated(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordOrderCreated(ctx, telemetry.OrderSourceLocal)
	bm.RecordOrderCreated(ctx, telemetry.OrderSourcePlatform)
}

func TestBusinessMetrics_RecordOrderWithAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	amount := decimal.NewFromFloat(199.99)

	// Should not panic and record both count and amount
	bm.RecordOrderWithAmount(ctx, telemetry.OrderSourceLocal, amount)
}

func TestBusinessMetrics_RecordOrderPushed(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Should not panic
	bm.RecordOrderPushed(context.Background())
}

func TestBusinessMetrics_RecordSyncRecords(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic, and zero or negative counts are dropped
	bm.RecordSyncRecords(ctx, telemetry.SyncTypeOrders, telemetry.SyncOutcomeCreated, 3)
	bm.RecordSyncRecords(ctx, telemetry.SyncTypeReceptions, telemetry.SyncOutcomeProcessed, 1)
	bm.RecordSyncRecords(ctx, telemetry.SyncTypeSuppliers, telemetry.SyncOutcomeLinked, 0)
	bm.RecordSyncRecords(ctx, telemetry.SyncTypeOrders, telemetry.SyncOutcomeSkipped, -1)
}

func TestBusinessMetrics_RecordSyncRun(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Should not panic
	bm.RecordSyncRun(ctx, telemetry.SyncTypeOrders, 250*time.Millisecond, false)
	bm.RecordSyncRun(ctx, telemetry.SyncTypeReceptions, time.Second, true)
}

func TestSyncType_Values(t *testing.T) {
	assert.Equal(t, telemetry.SyncType("orders"), telemetry.SyncTypeOrders)
	assert.Equal(t, telemetry.SyncType("receptions"), telemetry.SyncTypeReceptions)
	assert.Equal(t, telemetry.SyncType("suppliers"), telemetry.SyncTypeSuppliers)
}

func TestOrderSource_Values(t *testing.T) {
	assert.Equal(t, telemetry.OrderSource("local"), telemetry.OrderSourceLocal)
	assert.Equal(t, telemetry.OrderSource("platform"), telemetry.OrderSourcePlatform)
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
