package bms

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsdash/backend/internal/domain/purchasing"
)

func TestMapOrderStatus(t *testing.T) {
	tests := []struct {
		name          string
		external      string
		anyReceived   bool
		fullyReceived bool
		want          purchasing.OrderStatus
	}{
		{"draft", StatusDraft, false, false, purchasing.OrderStatusDraft},
		{"confirmed", StatusConfirmed, false, false, purchasing.OrderStatusConfirmed},
		{"shipped", StatusShipped, false, false, purchasing.OrderStatusShipped},
		{"cancelled", StatusCancelled, false, false, purchasing.OrderStatusCancelled},
		{"expected nothing received", StatusExpected, false, false, purchasing.OrderStatusConfirmed},
		{"expected partially received", StatusExpected, true, false, purchasing.OrderStatusPartial},
		{"complete fully received", StatusComplete, true, true, purchasing.OrderStatusReceived},
		{"complete but short", StatusComplete, true, false, purchasing.OrderStatusPartial},
		{"unknown defaults to sent", "archived", false, false, purchasing.OrderStatusSent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapOrderStatus(tt.external, tt.anyReceived, tt.fullyReceived))
		})
	}
}

func TestPurchaseOrder_ReceptionHelpers(t *testing.T) {
	order := PurchaseOrder{Items: []PurchaseOrderItem{
		{SKU: "A", Qty: 5, QtyReceived: 0},
		{SKU: "B", Qty: 3, QtyReceived: 0},
	}}
	assert.False(t, order.AnyReceived())
	assert.False(t, order.FullyReceived())

	order.Items[0].QtyReceived = 2
	assert.True(t, order.AnyReceived())
	assert.False(t, order.FullyReceived())

	order.Items[0].QtyReceived = 5
	order.Items[1].QtyReceived = 3
	assert.True(t, order.FullyReceived())

	empty := PurchaseOrder{}
	assert.False(t, empty.FullyReceived())
}
