package purchasing

import (
	"math"
	"time"
)

// DemandSample is one month of historical sales for a product. Samples are
// computed from order-line aggregates and never persisted.
type DemandSample struct {
	Month time.Time
	Qty   int
}

// ForecastMethod identifies which trend model produced the coefficient
type ForecastMethod string

const (
	ForecastMethodRegression       ForecastMethod = "regression"
	ForecastMethodWeightedAverage  ForecastMethod = "weighted_average"
	ForecastMethodInsufficientData ForecastMethod = "insufficient_data"
)

// Trend coefficient bounds and the minimum fit quality for trusting the
// regression over the weighted-average fallback.
const (
	trendCoefficientMin = 0.1
	trendCoefficientMax = 5.0
	regressionMinR2     = 0.7
)

// ForecastResult carries the replenishment suggestion for one product
type ForecastResult struct {
	AvgMonthly       float64        `json:"avg_monthly"`
	TrendCoefficient float64        `json:"trend_coefficient"`
	Method           ForecastMethod `json:"method"`
	RSquared         float64        `json:"r_squared"`
	MaxOrderQty      int            `json:"max_order_qty"`
	TheoreticalNeed  int            `json:"theoretical_need"`
	ProjectedNeed    int            `json:"projected_need"`
}

// Forecast sizes a replenishment order from a monthly sales series.
// The series must be ordered oldest month first.
//
// The average is taken over the most recent analysisMonths samples. The
// trend coefficient comes from an ordinary least-squares fit over the full
// series when the fit is reliable (R-squared at or above 0.7), otherwise
// from a recency-weighted moving average; it is clamped into [0.1, 5].
// The largest single month in the series acts as a safety floor so a known
// demand spike is never under-ordered.
func Forecast(series []DemandSample, analysisMonths, coverageMonths int) ForecastResult {
	if analysisMonths <= 0 {
		analysisMonths = DefaultAnalysisMonths
	}
	if coverageMonths <= 0 {
		coverageMonths = DefaultCoverageMonths
	}

	result := ForecastResult{
		TrendCoefficient: 1,
		Method:           ForecastMethodInsufficientData,
	}

	result.AvgMonthly = averageRecent(series, analysisMonths)
	result.MaxOrderQty = maxQty(series)

	if len(series) >= 2 {
		coefficient, method, r2 := trendCoefficient(series)
		result.TrendCoefficient = coefficient
		result.Method = method
		result.RSquared = r2
	}

	avg := result.AvgMonthly
	projected := avg * result.TrendCoefficient
	floor := float64(result.MaxOrderQty)

	result.TheoreticalNeed = ceilQty(math.Max(avg*float64(coverageMonths), floor+avg/2))
	result.ProjectedNeed = ceilQty(math.Max(projected*float64(coverageMonths), floor+projected/2))

	return result
}

// averageRecent averages the last n samples of the series. When fewer
// samples exist the divisor shrinks with them, so short histories are not
// diluted toward zero.
func averageRecent(series []DemandSample, n int) float64 {
	if len(series) == 0 {
		return 0
	}
	if n > len(series) {
		n = len(series)
	}
	sum := 0
	for _, s := range series[len(series)-n:] {
		sum += s.Qty
	}
	return float64(sum) / float64(n)
}

func maxQty(series []DemandSample) int {
	most := 0
	for _, s := range series {
		if s.Qty > most {
			most = s.Qty
		}
	}
	return most
}

// trendCoefficient fits qty = a + b*index over the full series and trusts
// the regression projection only when the fit explains enough variance.
func trendCoefficient(series []DemandSample) (float64, ForecastMethod, float64) {
	n := len(series)
	mean := 0.0
	for _, s := range series {
		mean += float64(s.Qty)
	}
	mean /= float64(n)

	slope, intercept := leastSquares(series)
	r2 := rSquared(series, slope, intercept, mean)

	if r2 >= regressionMinR2 {
		projected := intercept + slope*float64(n)
		var coefficient float64
		switch {
		case mean > 0:
			coefficient = projected / mean
		case projected > 0:
			// Flat-zero history with a positive projection: assume demand
			// is starting up rather than dividing by zero.
			coefficient = 2
		default:
			coefficient = 1
		}
		return clampCoefficient(coefficient), ForecastMethodRegression, r2
	}

	weighted := weightedAverage(series)
	var coefficient float64
	switch {
	case mean > 0:
		coefficient = weighted / mean
	case weighted > 0:
		coefficient = 1.5
	default:
		coefficient = 1
	}
	return clampCoefficient(coefficient), ForecastMethodWeightedAverage, r2
}

func leastSquares(series []DemandSample) (slope, intercept float64) {
	n := float64(len(series))
	var sumX, sumY, sumXY, sumXX float64
	for i, s := range series {
		x := float64(i)
		y := float64(s.Qty)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// rSquared measures how much of the series variance the fitted line
// explains. A constant series is a perfect fit by definition.
func rSquared(series []DemandSample, slope, intercept, mean float64) float64 {
	var ssRes, ssTot float64
	for i, s := range series {
		y := float64(s.Qty)
		fit := intercept + slope*float64(i)
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - mean) * (y - mean)
	}
	if ssTot == 0 {
		return 1
	}
	return 1 - ssRes/ssTot
}

// weightedAverage weights month i (oldest first) by i+1, favoring recent
// demand over old demand
func weightedAverage(series []DemandSample) float64 {
	var sum, weights float64
	for i, s := range series {
		w := float64(i + 1)
		sum += w * float64(s.Qty)
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

func clampCoefficient(c float64) float64 {
	if c < trendCoefficientMin {
		return trendCoefficientMin
	}
	if c > trendCoefficientMax {
		return trendCoefficientMax
	}
	return c
}

func ceilQty(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Ceil(v))
}
