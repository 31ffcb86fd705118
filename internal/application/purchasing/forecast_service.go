package purchasing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opsdash/backend/internal/domain/purchasing"
	"github.com/opsdash/backend/internal/domain/shared"
)

// ForecastService produces replenishment suggestions from sales history
type ForecastService struct {
	products  purchasing.ProductRepository
	suppliers purchasing.SupplierRepository
	links     purchasing.ProductSupplierRepository
	sales     purchasing.SalesHistoryRepository
	logger    *zap.Logger

	// Fallbacks when the supplier carries no override
	defaultAnalysisMonths int
	defaultCoverageMonths int
}

// NewForecastService creates a new ForecastService
func NewForecastService(
	products purchasing.ProductRepository,
	suppliers purchasing.SupplierRepository,
	links purchasing.ProductSupplierRepository,
	sales purchasing.SalesHistoryRepository,
	analysisMonths, coverageMonths int,
	logger *zap.Logger,
) *ForecastService {
	if analysisMonths <= 0 {
		analysisMonths = purchasing.DefaultAnalysisMonths
	}
	if coverageMonths <= 0 {
		coverageMonths = purchasing.DefaultCoverageMonths
	}
	return &ForecastService{
		products:              products,
		suppliers:             suppliers,
		links:                 links,
		sales:                 sales,
		defaultAnalysisMonths: analysisMonths,
		defaultCoverageMonths: coverageMonths,
		logger:                logger.Named("forecast"),
	}
}

// ForecastProduct sizes a replenishment order for one product from one
// supplier. Callers may pin the analysis and coverage windows; a zero
// value falls back to the supplier's override, then to the service
// defaults. The suggested quantity nets current stock off the projected
// need.
func (s *ForecastService) ForecastProduct(ctx context.Context, productID, supplierID uuid.UUID, analysisMonths, coverageMonths int) (*ForecastResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	if analysisMonths <= 0 {
		analysisMonths = s.defaultAnalysisMonths
		if supplier.AnalysisMonths > 0 {
			analysisMonths = supplier.AnalysisMonths
		}
	}
	if coverageMonths <= 0 {
		coverageMonths = s.defaultCoverageMonths
		if supplier.CoverageMonths > 0 {
			coverageMonths = supplier.CoverageMonths
		}
	}

	// Fetch more history than the average needs so the trend fit sees the
	// longer arc of demand.
	lookback := analysisMonths * 2
	if lookback < 12 {
		lookback = 12
	}
	series, err := s.sales.MonthlySales(ctx, productID, lookback)
	if err != nil {
		return nil, err
	}

	result := purchasing.Forecast(series, analysisMonths, coverageMonths)

	suggested := result.ProjectedNeed - product.Stock
	if suggested < 0 {
		suggested = 0
	}

	response := &ForecastResponse{
		ProductID:        product.ID,
		SupplierID:       supplier.ID,
		AnalysisMonths:   analysisMonths,
		CoverageMonths:   coverageMonths,
		AvgMonthly:       result.AvgMonthly,
		TrendCoefficient: result.TrendCoefficient,
		Method:           string(result.Method),
		RSquared:         result.RSquared,
		MaxOrderQty:      result.MaxOrderQty,
		TheoreticalNeed:  result.TheoreticalNeed,
		ProjectedNeed:    result.ProjectedNeed,
		CurrentStock:     product.Stock,
		SuggestedQty:     suggested,
		GeneratedAt:      time.Now(),
	}

	// The supplier SKU is informational; a missing link is not an error
	link, err := s.links.FindByPair(ctx, productID, supplierID)
	switch {
	case err == nil:
		response.SupplierSKU = link.SupplierSKU
	case errors.Is(err, shared.ErrNotFound):
	default:
		return nil, err
	}

	s.logger.Debug("forecast generated",
		zap.String("product_sku", product.SKU),
		zap.String("method", response.Method),
		zap.Int("suggested_qty", response.SuggestedQty))

	return response, nil
}
