package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsdash/backend/internal/domain/purchasing"
)

// GormSalesHistoryRepository aggregates sales order lines into monthly
// demand samples for the replenishment forecast
type GormSalesHistoryRepository struct {
	db *gorm.DB
}

// NewGormSalesHistoryRepository creates a new GormSalesHistoryRepository
func NewGormSalesHistoryRepository(db *gorm.DB) *GormSalesHistoryRepository {
	return &GormSalesHistoryRepository{db: db}
}

type monthlyQtyRow struct {
	Month time.Time
	Qty   int
}

// MonthlySales returns per-month sold quantities for a product over the
// trailing window, oldest month first. Months after the first sale with no
// demand appear as explicit zero samples so gaps count against the trend.
func (r *GormSalesHistoryRepository) MonthlySales(ctx context.Context, productID uuid.UUID, months int) ([]purchasing.DemandSample, error) {
	now := time.Now().UTC()
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	since := currentMonth.AddDate(0, -months, 0)

	var rows []monthlyQtyRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT date_trunc('month', so.order_date) AS month, SUM(soi.qty)::int AS qty
		FROM sales_order_items soi
		JOIN sales_orders so ON so.id = soi.sales_order_id
		WHERE soi.product_id = ?
		  AND so.order_date >= ?
		  AND so.order_date < ?
		  AND so.status <> 'cancelled'
		GROUP BY 1
		ORDER BY 1 ASC`, productID, since, currentMonth).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	byMonth := make(map[time.Time]int, len(rows))
	for _, row := range rows {
		byMonth[row.Month.UTC()] = row.Qty
	}

	var samples []purchasing.DemandSample
	for month := rows[0].Month.UTC(); month.Before(currentMonth); month = month.AddDate(0, 1, 0) {
		samples = append(samples, purchasing.DemandSample{Month: month, Qty: byMonth[month]})
	}
	return samples, nil
}

// Ensure GormSalesHistoryRepository implements SalesHistoryRepository
var _ purchasing.SalesHistoryRepository = (*GormSalesHistoryRepository)(nil)
