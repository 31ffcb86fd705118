package bms

import "github.com/opsdash/backend/internal/domain/purchasing"

// External order statuses as reported by the platform
const (
	StatusDraft     = "draft"
	StatusConfirmed = "confirmed"
	StatusExpected  = "expected"
	StatusShipped   = "shipped"
	StatusComplete  = "complete"
	StatusCancelled = "cancelled"
)

// MapOrderStatus maps an external order status to the local one.
// "expected" and "complete" depend on reception progress, so the caller
// passes what the platform has recorded. Unrecognized statuses default to
// sent: the order exists upstream, so it is at least on its way.
func MapOrderStatus(external string, anyReceived, fullyReceived bool) purchasing.OrderStatus {
	switch external {
	case StatusDraft:
		return purchasing.OrderStatusDraft
	case StatusCancelled:
		return purchasing.OrderStatusCancelled
	case StatusShipped:
		return purchasing.OrderStatusShipped
	case StatusConfirmed:
		return purchasing.OrderStatusConfirmed
	case StatusExpected:
		if anyReceived {
			return purchasing.OrderStatusPartial
		}
		return purchasing.OrderStatusConfirmed
	case StatusComplete:
		if fullyReceived {
			return purchasing.OrderStatusReceived
		}
		return purchasing.OrderStatusPartial
	default:
		return purchasing.OrderStatusSent
	}
}
