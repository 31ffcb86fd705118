package purchasing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleSeries(qtys ...int) []DemandSample {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]DemandSample, len(qtys))
	for i, q := range qtys {
		series[i] = DemandSample{Month: start.AddDate(0, i, 0), Qty: q}
	}
	return series
}

func TestForecast_RegressionOnSteadyGrowth(t *testing.T) {
	// Steady upward trend: the least-squares fit explains most of the
	// variance, so the regression projection drives the coefficient.
	result := Forecast(sampleSeries(10, 12, 11, 13, 14, 15), 6, 2)

	assert.Equal(t, ForecastMethodRegression, result.Method)
	assert.GreaterOrEqual(t, result.RSquared, 0.7)
	assert.InDelta(t, 12.5, result.AvgMonthly, 0.001)
	assert.InDelta(t, 1.264, result.TrendCoefficient, 0.001)
	assert.Equal(t, 15, result.MaxOrderQty)
	// avg * coverage = 25 beats floor + avg/2 = 21.25
	assert.Equal(t, 25, result.TheoreticalNeed)
	// projected = 12.5 * 1.264 = 15.8; 15.8 * 2 = 31.6 -> 32
	assert.Equal(t, 32, result.ProjectedNeed)
}

func TestForecast_WeightedAverageOnNoisySeries(t *testing.T) {
	// Alternating demand defeats the linear fit, so the recency-weighted
	// average takes over.
	result := Forecast(sampleSeries(10, 2, 9, 3, 10, 2), 6, 2)

	assert.Equal(t, ForecastMethodWeightedAverage, result.Method)
	assert.Less(t, result.RSquared, 0.7)
	assert.InDelta(t, 6.0, result.AvgMonthly, 0.001)
	// weighted = (1*10+2*2+3*9+4*3+5*10+6*2)/21 = 115/21
	assert.InDelta(t, 115.0/21.0/6.0, result.TrendCoefficient, 0.001)
}

func TestForecast_InsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		series []DemandSample
	}{
		{"empty series", nil},
		{"single sample", sampleSeries(8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Forecast(tt.series, 6, 2)
			assert.Equal(t, ForecastMethodInsufficientData, result.Method)
			assert.Equal(t, 1.0, result.TrendCoefficient)
		})
	}
}

func TestForecast_SingleSampleNeeds(t *testing.T) {
	result := Forecast(sampleSeries(8), 6, 2)

	assert.InDelta(t, 8.0, result.AvgMonthly, 0.001)
	assert.Equal(t, 8, result.MaxOrderQty)
	// max(8*2, 8+4) = 16
	assert.Equal(t, 16, result.TheoreticalNeed)
	assert.Equal(t, 16, result.ProjectedNeed)
}

func TestForecast_ConstantSeriesIsPerfectFit(t *testing.T) {
	result := Forecast(sampleSeries(5, 5, 5, 5), 6, 2)

	assert.Equal(t, ForecastMethodRegression, result.Method)
	assert.Equal(t, 1.0, result.RSquared)
	assert.Equal(t, 1.0, result.TrendCoefficient)
}

func TestForecast_DecliningSeriesClampsCoefficient(t *testing.T) {
	// Perfectly linear decline projects month 6 at zero; the coefficient
	// bottoms out at the clamp floor instead.
	result := Forecast(sampleSeries(50, 40, 30, 20, 10), 6, 2)

	assert.Equal(t, ForecastMethodRegression, result.Method)
	assert.Equal(t, 1.0, result.RSquared)
	assert.Equal(t, 0.1, result.TrendCoefficient)
}

func TestForecast_ZeroHistory(t *testing.T) {
	result := Forecast(sampleSeries(0, 0, 0, 0), 6, 2)

	assert.Equal(t, 0.0, result.AvgMonthly)
	assert.Equal(t, 1.0, result.TrendCoefficient)
	assert.Equal(t, 0, result.TheoreticalNeed)
	assert.Equal(t, 0, result.ProjectedNeed)
}

func TestForecast_DemandStartingFromZero(t *testing.T) {
	result := Forecast(sampleSeries(0, 1, 2, 3), 6, 2)

	assert.Equal(t, ForecastMethodRegression, result.Method)
	// projected month 4 is 4 against a mean of 1.5
	assert.InDelta(t, 4.0/1.5, result.TrendCoefficient, 0.001)
}

func TestForecast_AverageUsesAnalysisWindow(t *testing.T) {
	// Twelve months of history, but only the last six count toward the
	// average. The spike in month one still sets the safety floor.
	series := sampleSeries(100, 10, 10, 10, 10, 10, 6, 6, 6, 6, 6, 6)
	result := Forecast(series, 6, 2)

	assert.InDelta(t, 6.0, result.AvgMonthly, 0.001)
	assert.Equal(t, 100, result.MaxOrderQty)
}

func TestForecast_SpikeFloorDominatesNeeds(t *testing.T) {
	result := Forecast(sampleSeries(3, 3, 20, 3, 3, 3), 6, 2)

	assert.Equal(t, 20, result.MaxOrderQty)
	// avg = 35/6; floor + avg/2 = 22.9 beats avg * coverage = 11.7
	assert.Equal(t, 23, result.TheoreticalNeed)
}

func TestForecast_DefaultsAppliedForNonPositiveParams(t *testing.T) {
	withDefaults := Forecast(sampleSeries(10, 12, 11, 13, 14, 15), 0, 0)
	explicit := Forecast(sampleSeries(10, 12, 11, 13, 14, 15), DefaultAnalysisMonths, DefaultCoverageMonths)

	assert.Equal(t, explicit, withDefaults)
}
