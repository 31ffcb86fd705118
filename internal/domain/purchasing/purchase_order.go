package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsdash/backend/internal/domain/shared"
)

// OrderStatus represents the status of a purchase order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusPartial   OrderStatus = "partial"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusSent, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusPartial, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that end the order lifecycle
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusReceived || s == OrderStatusCancelled
}

// CanTransitionTo checks whether an explicit operator transition to target
// is allowed. Derived transitions (partial/received from quantity progress)
// go through DeriveStatus instead.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch target {
	case OrderStatusSent:
		return s == OrderStatusDraft
	case OrderStatusCancelled:
		return !s.IsTerminal()
	case OrderStatusReceived, OrderStatusPartial:
		// Manual override of reception progress is always allowed.
		return true
	}
	return false
}

// DeriveStatus computes the order status implied by reception progress.
// The current status is kept when no quantity has been received: sent,
// confirmed and shipped are never auto-assigned from zero progress.
func DeriveStatus(totalOrdered, totalReceived int, current OrderStatus) OrderStatus {
	if totalOrdered > 0 && totalReceived >= totalOrdered {
		return OrderStatusReceived
	}
	if totalReceived > 0 {
		return OrderStatusPartial
	}
	return current
}

// PurchaseOrderItem represents a line item in a purchase order.
// Items are owned exclusively by their order and are replaced wholesale
// on synchronization updates.
type PurchaseOrderItem struct {
	shared.BaseEntity
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       *uuid.UUID      `gorm:"type:uuid;index"` // nil when the SKU could not be resolved locally
	SupplierSKU     string          `gorm:"type:varchar(100);index"`
	ProductName     string          `gorm:"type:varchar(200)"`
	QtyOrdered      int             `gorm:"not null"`
	QtyReceived     int             `gorm:"not null;default:0"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// NewPurchaseOrderItem creates a new purchase order line
func NewPurchaseOrderItem(orderID uuid.UUID, productID *uuid.UUID, supplierSKU, productName string, qty int, unitPrice decimal.Decimal) (*PurchaseOrderItem, error) {
	if qty <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if supplierSKU == "" && productName == "" {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item needs a supplier SKU or a product name")
	}

	return &PurchaseOrderItem{
		BaseEntity:      shared.NewBaseEntity(),
		PurchaseOrderID: orderID,
		ProductID:       productID,
		SupplierSKU:     supplierSKU,
		ProductName:     productName,
		QtyOrdered:      qty,
		QtyReceived:     0,
		UnitPrice:       unitPrice,
	}, nil
}

// SetReceivedQty stores a received quantity, clamped into [0, QtyOrdered]
func (i *PurchaseOrderItem) SetReceivedQty(qty int) {
	if qty < 0 {
		qty = 0
	}
	if qty > i.QtyOrdered {
		qty = i.QtyOrdered
	}
	i.QtyReceived = qty
	i.UpdatedAt = time.Now()
}

// AddReceivedQty increments the received quantity, clamped at QtyOrdered
func (i *PurchaseOrderItem) AddReceivedQty(qty int) {
	if qty <= 0 {
		return
	}
	i.SetReceivedQty(i.QtyReceived + qty)
}

// IsFullyReceived returns true if all ordered quantity has been received
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.QtyReceived >= i.QtyOrdered
}

// Amount returns the line amount (ordered quantity times unit price)
func (i *PurchaseOrderItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.QtyOrdered)))
}

// PurchaseOrder represents a supplier purchase order aggregate root.
// The cached totals equal the sum over the items at the moment the order
// was last written; they are not recomputed on read.
type PurchaseOrder struct {
	shared.BaseEntity
	OrderNumber       string      `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID        uuid.UUID   `gorm:"type:uuid;not null;index"`
	ExternalID        *string     `gorm:"type:varchar(50);uniqueIndex"`
	ExternalReference string      `gorm:"type:varchar(200);index"` // free-text, not guaranteed unique
	Status            OrderStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	OrderDate         *time.Time
	ExpectedDate      *time.Time
	ReceivedDate      *time.Time
	TotalItems        int             `gorm:"not null;default:0"`
	TotalQty          int             `gorm:"not null;default:0"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Notes             string          `gorm:"type:text"`
	Items             []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order in draft status
func NewPurchaseOrder(orderNumber string, supplierID uuid.UUID) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}

	return &PurchaseOrder{
		BaseEntity:  shared.NewBaseEntity(),
		OrderNumber: orderNumber,
		SupplierID:  supplierID,
		Status:      OrderStatusDraft,
		TotalAmount: decimal.Zero,
		Items:       make([]PurchaseOrderItem, 0),
	}, nil
}

// AddItem adds a new line to the order and updates the cached totals
func (o *PurchaseOrder) AddItem(productID *uuid.UUID, supplierSKU, productName string, qty int, unitPrice decimal.Decimal) (*PurchaseOrderItem, error) {
	item, err := NewPurchaseOrderItem(o.ID, productID, supplierSKU, productName, qty, unitPrice)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.RecalculateTotals()
	o.UpdatedAt = time.Now()
	return item, nil
}

// ReplaceItems swaps the full line set for the given one and updates the
// cached totals. Used by synchronization, which replaces lines wholesale
// instead of merging.
func (o *PurchaseOrder) ReplaceItems(items []PurchaseOrderItem) {
	for idx := range items {
		items[idx].PurchaseOrderID = o.ID
		if items[idx].ID == uuid.Nil {
			items[idx].BaseEntity = shared.NewBaseEntity()
			items[idx].PurchaseOrderID = o.ID
		}
	}
	o.Items = items
	o.RecalculateTotals()
	o.UpdatedAt = time.Now()
}

// RecalculateTotals refreshes the cached aggregates from the current items
func (o *PurchaseOrder) RecalculateTotals() {
	total := decimal.Zero
	qty := 0
	for idx := range o.Items {
		total = total.Add(o.Items[idx].Amount())
		qty += o.Items[idx].QtyOrdered
	}
	o.TotalItems = len(o.Items)
	o.TotalQty = qty
	o.TotalAmount = total
}

// TotalOrderedQty returns the sum of ordered quantities over all items
func (o *PurchaseOrder) TotalOrderedQty() int {
	total := 0
	for idx := range o.Items {
		total += o.Items[idx].QtyOrdered
	}
	return total
}

// TotalReceivedQty returns the sum of received quantities over all items
func (o *PurchaseOrder) TotalReceivedQty() int {
	total := 0
	for idx := range o.Items {
		total += o.Items[idx].QtyReceived
	}
	return total
}

// RefreshStatus re-derives the status from reception progress and stamps
// the received date the first time the order becomes fully received
func (o *PurchaseOrder) RefreshStatus() {
	o.Status = DeriveStatus(o.TotalOrderedQty(), o.TotalReceivedQty(), o.Status)
	if o.Status == OrderStatusReceived && o.ReceivedDate == nil {
		now := time.Now()
		o.ReceivedDate = &now
	}
	o.UpdatedAt = time.Now()
}

// SetReceivedQty sets the received quantity of one line (clamped into
// [0, qty_ordered]) and re-derives the order status
func (o *PurchaseOrder) SetReceivedQty(itemID uuid.UUID, qty int) error {
	item := o.GetItem(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
	}
	item.SetReceivedQty(qty)
	o.RefreshStatus()
	return nil
}

// ReceiveBySKU increments the received quantity of the line matching the
// supplier SKU, clamped at the ordered quantity. Returns false when no
// line carries that SKU.
func (o *PurchaseOrder) ReceiveBySKU(supplierSKU string, qty int) bool {
	for idx := range o.Items {
		if o.Items[idx].SupplierSKU == supplierSKU {
			o.Items[idx].AddReceivedQty(qty)
			return true
		}
	}
	return false
}

// TransitionTo applies an explicit operator transition with its timestamp
// side effects: order_date on sent, received_date (set once) on received
func (o *PurchaseOrder) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}

	now := time.Now()
	switch target {
	case OrderStatusSent:
		if o.OrderDate == nil {
			o.OrderDate = &now
		}
	case OrderStatusReceived:
		if o.ReceivedDate == nil {
			o.ReceivedDate = &now
		}
	}
	o.Status = target
	o.UpdatedAt = now
	return nil
}

// MarkSent records the external push: stores the assigned external id and
// moves the order from draft to sent
func (o *PurchaseOrder) MarkSent(externalID string) error {
	if err := o.TransitionTo(OrderStatusSent); err != nil {
		return err
	}
	o.ExternalID = &externalID
	return nil
}

// GetItem returns an item by its ID
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// IsDraft returns true if the order is in draft status
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// CanDelete returns true when deletion is allowed (draft orders only)
func (o *PurchaseOrder) CanDelete() bool {
	return o.IsDraft()
}
