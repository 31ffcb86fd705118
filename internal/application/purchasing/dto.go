package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opsdash/backend/internal/domain/purchasing"
)

// ==================== Purchase Order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID     uuid.UUID                      `json:"supplier_id" validate:"required"`
	ExpectedDate   *time.Time                     `json:"expected_date"`
	Notes          string                         `json:"notes" validate:"max=2000"`
	PushToPlatform bool                           `json:"push_to_platform"`
	Items          []CreatePurchaseOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// CreatePurchaseOrderItemInput represents an item in the create order request
type CreatePurchaseOrderItemInput struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	SupplierSKU string          `json:"supplier_sku" validate:"required,min=1,max=100"`
	ProductName string          `json:"product_name" validate:"required,min=1,max=200"`
	Qty         int             `json:"qty" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// UpdateStatusRequest represents a manual status transition request
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateReceivedQtyRequest represents a manual reception correction
type UpdateReceivedQtyRequest struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
	Qty    int       `json:"qty" validate:"gte=0"`
}

// OrderListFilter represents filter options for the purchase order list
type OrderListFilter struct {
	Status     *string    `json:"status"`
	SupplierID *uuid.UUID `json:"supplier_id"`
	Page       int        `json:"page" validate:"gte=0"`
	PageSize   int        `json:"page_size" validate:"gte=0,lte=100"`
}

// PurchaseOrderItemResponse is one order line in API responses
type PurchaseOrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	SupplierSKU string          `json:"supplier_sku"`
	ProductName string          `json:"product_name"`
	QtyOrdered  int             `json:"qty_ordered"`
	QtyReceived int             `json:"qty_received"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// PurchaseOrderResponse is the full purchase order view
type PurchaseOrderResponse struct {
	ID                uuid.UUID                   `json:"id"`
	OrderNumber       string                      `json:"order_number"`
	SupplierID        uuid.UUID                   `json:"supplier_id"`
	ExternalID        *string                     `json:"external_id,omitempty"`
	ExternalReference string                      `json:"external_reference,omitempty"`
	Status            string                      `json:"status"`
	OrderDate         *time.Time                  `json:"order_date,omitempty"`
	ExpectedDate      *time.Time                  `json:"expected_date,omitempty"`
	ReceivedDate      *time.Time                  `json:"received_date,omitempty"`
	TotalItems        int                         `json:"total_items"`
	TotalQty          int                         `json:"total_qty"`
	TotalAmount       decimal.Decimal             `json:"total_amount"`
	Notes             string                      `json:"notes,omitempty"`
	Items             []PurchaseOrderItemResponse `json:"items"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// ToPurchaseOrderResponse converts a domain order to its response form
func ToPurchaseOrderResponse(order *purchasing.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseOrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = PurchaseOrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			SupplierSKU: item.SupplierSKU,
			ProductName: item.ProductName,
			QtyOrdered:  item.QtyOrdered,
			QtyReceived: item.QtyReceived,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount(),
		}
	}

	return PurchaseOrderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		SupplierID:        order.SupplierID,
		ExternalID:        order.ExternalID,
		ExternalReference: order.ExternalReference,
		Status:            order.Status.String(),
		OrderDate:         order.OrderDate,
		ExpectedDate:      order.ExpectedDate,
		ReceivedDate:      order.ReceivedDate,
		TotalItems:        order.TotalItems,
		TotalQty:          order.TotalQty,
		TotalAmount:       order.TotalAmount,
		Notes:             order.Notes,
		Items:             items,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}

// ==================== Forecast DTOs ====================

// ForecastResponse is the replenishment suggestion for one product
type ForecastResponse struct {
	ProductID        uuid.UUID  `json:"product_id"`
	SupplierID       uuid.UUID  `json:"supplier_id"`
	SupplierSKU      string     `json:"supplier_sku,omitempty"`
	AnalysisMonths   int        `json:"analysis_months"`
	CoverageMonths   int        `json:"coverage_months"`
	AvgMonthly       float64    `json:"avg_monthly"`
	TrendCoefficient float64    `json:"trend_coefficient"`
	Method           string     `json:"method"`
	RSquared         float64    `json:"r_squared"`
	MaxOrderQty      int        `json:"max_order_qty"`
	TheoreticalNeed  int        `json:"theoretical_need"`
	ProjectedNeed    int        `json:"projected_need"`
	CurrentStock     int        `json:"current_stock"`
	SuggestedQty     int        `json:"suggested_qty"`
	GeneratedAt      time.Time  `json:"generated_at"`
}
