// Package bms defines the contract with the external fulfillment platform
// (BMS), the system of record for supplier purchase orders and warehouse
// receptions. Responses are modeled as explicit DTOs converted once at the
// gateway boundary; loosely-typed payloads never reach the reconcilers.
package bms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway errors. Authentication failures are distinct from other upstream
// failures because they signal bad credentials rather than a bad call.
var (
	ErrAuthenticationFailed = errors.New("bms: authentication failed")
)

// UpstreamError reports a non-auth upstream failure with the HTTP status
// and response body the platform returned
type UpstreamError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("bms: upstream error: HTTP %d: %s", e.StatusCode, e.Body)
}

// PurchaseOrderItem is one line of an external purchase order
type PurchaseOrderItem struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Qty         int             `json:"qty"`
	QtyReceived int             `json:"qty_received"`
	Price       decimal.Decimal `json:"price"`
}

// PurchaseOrder is the platform's view of a supplier purchase order
type PurchaseOrder struct {
	ID          string              `json:"id"`
	Reference   string              `json:"reference"`
	Status      string              `json:"status"`
	SupplierID  string              `json:"supplier_id"`
	WarehouseID string              `json:"warehouse_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Items       []PurchaseOrderItem `json:"items"`
}

// AnyReceived reports whether the platform has recorded any reception
// against this order
func (o *PurchaseOrder) AnyReceived() bool {
	for _, item := range o.Items {
		if item.QtyReceived > 0 {
			return true
		}
	}
	return false
}

// FullyReceived reports whether every line is received in full
func (o *PurchaseOrder) FullyReceived() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if item.QtyReceived < item.Qty {
			return false
		}
	}
	return true
}

// ReceptionItem is one line of a goods-receipt event
type ReceptionItem struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

// Reception is an external goods-receipt event reporting quantities
// received against a purchase order, matched by its reference string
type Reception struct {
	ID        string          `json:"id"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []ReceptionItem `json:"items"`
}

// Supplier is the platform's view of a supplier
type Supplier struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreateOrderItem is one line of an order pushed to the platform
type CreateOrderItem struct {
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

// CreateOrderRequest is the payload for pushing a purchase order to the
// platform
type CreateOrderRequest struct {
	Reference   string            `json:"reference"`
	Status      string            `json:"status"`
	SupplierID  string            `json:"supplier_id"`
	WarehouseID string            `json:"warehouse_id"`
	Items       []CreateOrderItem `json:"items"`
}

// CreateOrderResponse carries the identity the platform assigned
type CreateOrderResponse struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
}

// Gateway is the client contract against the external platform
type Gateway interface {
	// ListPurchaseOrders returns the full order list, deduplicated by
	// external id (the platform pads its last page with repeats).
	ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error)
	ListReceptions(ctx context.Context) ([]Reception, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	CreatePurchaseOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error)
}
