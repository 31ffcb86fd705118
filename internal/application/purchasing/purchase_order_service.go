// Package purchasing contains the application services over the purchasing
// domain: order management and demand forecasting.
package purchasing

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opsdash/backend/internal/domain/bms"
	"github.com/opsdash/backend/internal/domain/purchasing"
	"github.com/opsdash/backend/internal/domain/shared"
	"github.com/opsdash/backend/internal/infrastructure/telemetry"
)

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orders    purchasing.PurchaseOrderRepository
	suppliers purchasing.SupplierRepository
	validate  *validator.Validate
	logger    *zap.Logger

	// Optional platform push. Nil means orders stay local until the
	// reconciler links them.
	gateway     bms.Gateway
	warehouseID string

	businessMetrics *telemetry.BusinessMetrics
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orders purchasing.PurchaseOrderRepository,
	suppliers purchasing.SupplierRepository,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orders:    orders,
		suppliers: suppliers,
		validate:  validator.New(),
		logger:    logger.Named("purchase-orders"),
	}
}

// SetGateway enables pushing created orders to the external platform
func (s *PurchaseOrderService) SetGateway(gateway bms.Gateway, warehouseID string) {
	s.gateway = gateway
	s.warehouseID = warehouseID
}

// SetBusinessMetrics sets the business metrics collector
func (s *PurchaseOrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create creates a new purchase order, optionally pushing it to the
// external platform. A successful push marks the order sent and records
// the identity the platform assigned.
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	supplier, err := s.suppliers.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}

	orderNumber, err := s.orders.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := purchasing.NewPurchaseOrder(orderNumber, supplier.ID)
	if err != nil {
		return nil, err
	}
	order.ExpectedDate = req.ExpectedDate
	order.Notes = req.Notes

	for _, item := range req.Items {
		if _, err := order.AddItem(item.ProductID, item.SupplierSKU, item.ProductName, item.Qty, item.UnitPrice); err != nil {
			return nil, err
		}
	}

	if req.PushToPlatform {
		if err := s.pushToPlatform(ctx, order, supplier); err != nil {
			return nil, err
		}
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderWithAmount(ctx, telemetry.OrderSourceLocal, order.TotalAmount)
		if req.PushToPlatform {
			s.businessMetrics.RecordOrderPushed(ctx)
		}
	}

	s.logger.Info("purchase order created",
		zap.String("order_number", order.OrderNumber),
		zap.Bool("pushed", req.PushToPlatform))

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// pushToPlatform sends the order upstream and links the returned identity.
// The push happens before the local save; if the save then fails the
// platform holds an order we don't, which the next sync run repairs.
func (s *PurchaseOrderService) pushToPlatform(ctx context.Context, order *purchasing.PurchaseOrder, supplier *purchasing.Supplier) error {
	if s.gateway == nil {
		return shared.NewDomainError("PLATFORM_DISABLED", "External platform is not configured")
	}
	if supplier.ExternalID == nil {
		return shared.NewDomainError("SUPPLIER_NOT_LINKED", "Supplier is not linked to the external platform")
	}

	items := make([]bms.CreateOrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = bms.CreateOrderItem{
			SKU:   item.SupplierSKU,
			Name:  item.ProductName,
			Qty:   item.QtyOrdered,
			Price: item.UnitPrice,
		}
	}

	resp, err := s.gateway.CreatePurchaseOrder(ctx, bms.CreateOrderRequest{
		Reference:   order.OrderNumber,
		Status:      bms.StatusDraft,
		SupplierID:  *supplier.ExternalID,
		WarehouseID: s.warehouseID,
		Items:       items,
	})
	if err != nil {
		return err
	}

	if err := order.MarkSent(resp.ID); err != nil {
		return err
	}
	order.ExternalReference = resp.Reference
	return nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, filter OrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := purchasing.OrderFilter{
		SupplierID: filter.SupplierID,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}
	if filter.Status != nil {
		status := purchasing.OrderStatus(*filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+*filter.Status)
		}
		domainFilter.Status = &status
	}

	orders, err := s.orders.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return responses, total, nil
}

// UpdateStatus applies a manual status transition
func (s *PurchaseOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*PurchaseOrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	target := purchasing.OrderStatus(req.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+req.Status)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.TransitionTo(target); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("purchase order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(target)))

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// UpdateReceivedQty corrects the received quantity of a single line. The
// order status is re-derived from the new reception progress.
func (s *PurchaseOrderService) UpdateReceivedQty(ctx context.Context, orderID uuid.UUID, req UpdateReceivedQtyRequest) (*PurchaseOrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.SetReceivedQty(req.ItemID, req.Qty); err != nil {
		return nil, err
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Delete removes a purchase order. Only draft orders can be deleted; sent
// orders exist on the platform and must be cancelled instead.
func (s *PurchaseOrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanDelete() {
		return shared.ErrPreconditionFailed
	}

	return s.orders.Delete(ctx, orderID)
}
