package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSyncer struct {
	orderRuns     atomic.Int32
	receptionRuns atomic.Int32
	supplierRuns  atomic.Int32
	orderErr      error
	order         []string
}

func (f *fakeSyncer) SyncOrders(ctx context.Context) error {
	f.orderRuns.Add(1)
	f.order = append(f.order, "orders")
	return f.orderErr
}

func (f *fakeSyncer) SyncReceptions(ctx context.Context) error {
	f.receptionRuns.Add(1)
	f.order = append(f.order, "receptions")
	return nil
}

func (f *fakeSyncer) SyncSuppliers(ctx context.Context) error {
	f.supplierRuns.Add(1)
	f.order = append(f.order, "suppliers")
	return nil
}

func newTestTrigger(f *fakeSyncer) *SyncTrigger {
	return NewSyncTrigger(SyncTriggerConfig{
		Interval:         time.Hour,
		SupplierInterval: time.Hour,
	}, f, f, f, zap.NewNop())
}

func TestSyncTrigger_RunOnce_OrdersBeforeReceptions(t *testing.T) {
	f := &fakeSyncer{}
	trigger := newTestTrigger(f)

	trigger.RunOnce(context.Background())

	assert.Equal(t, []string{"suppliers", "orders", "receptions"}, f.order)
}

func TestSyncTrigger_RunOnce_OrderFailureDoesNotSkipReceptions(t *testing.T) {
	f := &fakeSyncer{orderErr: errors.New("platform down")}
	trigger := newTestTrigger(f)

	trigger.RunOnce(context.Background())

	assert.Equal(t, int32(1), f.orderRuns.Load())
	assert.Equal(t, int32(1), f.receptionRuns.Load())
}

func TestSyncTrigger_SupplierSyncRespectsInterval(t *testing.T) {
	f := &fakeSyncer{}
	trigger := newTestTrigger(f)
	ctx := context.Background()

	trigger.RunOnce(ctx)
	trigger.RunOnce(ctx)

	// Second pass is inside the supplier interval, so suppliers run once
	assert.Equal(t, int32(1), f.supplierRuns.Load())
	assert.Equal(t, int32(2), f.orderRuns.Load())
}

func TestSyncTrigger_StartRunsImmediatelyAndStops(t *testing.T) {
	f := &fakeSyncer{}
	trigger := NewSyncTrigger(SyncTriggerConfig{
		Interval:         time.Hour,
		SupplierInterval: time.Hour,
	}, f, f, f, zap.NewNop())

	require.NoError(t, trigger.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return f.orderRuns.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(stopCtx))

	// Stopping twice is a no-op
	require.NoError(t, trigger.Stop(stopCtx))
}

func TestSyncTrigger_StartTwiceIsNoOp(t *testing.T) {
	f := &fakeSyncer{}
	trigger := newTestTrigger(f)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(stopCtx))
}
