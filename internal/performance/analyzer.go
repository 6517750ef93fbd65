// Package performance derives risk/return statistics from a simulation's transaction log.
package performance

import (
	"fmt"
	"math"
	"time"

	"BandSentinel/internal/calculator"
	"BandSentinel/internal/model"
)

const (
	// TradingDaysPerYear annualizes volatility and the Sortino ratio.
	TradingDaysPerYear = 252
	daysPerYear        = 365
)

// Analyze computes the performance report for a completed run.
//
// The return series is built from the notional of consecutive trades, buys and sells alike,
// rather than from a mark-to-market equity curve. Volatility uses the population standard
// deviation. Degenerate inputs fail with a named error instead of producing NaN or Inf.
func Analyze(txs []model.Transaction, finalValue, initialCapital float64) (*model.PerformanceReport, error) {
	if math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) || initialCapital <= 0 {
		return nil, fmt.Errorf("%w: initial capital %v", model.ErrValidation, initialCapital)
	}
	if math.IsNaN(finalValue) || math.IsInf(finalValue, 0) || finalValue < 0 {
		return nil, fmt.Errorf("%w: final value %v", model.ErrValidation, finalValue)
	}
	if len(txs) < 2 {
		return nil, fmt.Errorf("%w: %d transactions, need at least 2", model.ErrInsufficientData, len(txs))
	}

	rep := &model.PerformanceReport{
		TotalReturn: (finalValue - initialCapital) / initialCapital,
	}

	years, err := Years(txs)
	if err != nil {
		return nil, err
	}
	rep.AnnualReturn = math.Pow(finalValue/initialCapital, 1/years) - 1

	values := Notionals(txs)
	returns := Returns(values)

	vol := calculator.PopulationStdDev(returns)
	rep.AnnualVolatility = vol * math.Sqrt(TradingDaysPerYear)
	if rep.AnnualVolatility == 0 {
		return nil, fmt.Errorf("sharpe ratio: %w: zero volatility", model.ErrDivisionByZero)
	}
	rep.SharpeRatio = rep.AnnualReturn / rep.AnnualVolatility

	downside := make([]float64, len(returns))
	for i, r := range returns {
		if r < 0 {
			downside[i] = r
		}
	}
	downDev := calculator.PopulationStdDev(downside)
	if downDev == 0 {
		return nil, fmt.Errorf("sortino ratio: %w: zero downside deviation", model.ErrDivisionByZero)
	}
	rep.SortinoRatio = rep.AnnualReturn / downDev * math.Sqrt(TradingDaysPerYear)

	rep.MaxDrawdown, err = MaxDrawdown(values)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// Years returns the span between the first and last transaction in whole calendar days / 365.
func Years(txs []model.Transaction) (float64, error) {
	if len(txs) == 0 {
		return 0, fmt.Errorf("%w: empty transaction log", model.ErrInsufficientData)
	}
	days := wholeDays(txs[0].Time, txs[len(txs)-1].Time)
	if days <= 0 {
		return 0, fmt.Errorf("%w: all transactions within one day", model.ErrDegenerateWindow)
	}
	return float64(days) / daysPerYear, nil
}

// Notionals returns shares*price for every transaction.
func Notionals(txs []model.Transaction) []float64 {
	values := make([]float64, len(txs))
	for i, tx := range txs {
		values[i] = tx.Notional()
	}
	return values
}

// Returns is the relative change between consecutive values; one element shorter than values.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		out[i-1] = (values[i] - values[i-1]) / values[i-1]
	}
	return out
}

// MaxDrawdown is the largest decline from a running peak, as a fraction of that peak.
// The peak starts at zero and only moves on a strictly higher value, so a series whose
// first value is not positive has nothing to measure against and fails.
func MaxDrawdown(values []float64) (float64, error) {
	var peak, maxDD float64
	for i, v := range values {
		if v > peak {
			peak = v
			continue
		}
		if peak == 0 {
			return 0, fmt.Errorf("max drawdown: %w: zero peak at index %d", model.ErrDivisionByZero, i)
		}
		if dd := (peak - v) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD, nil
}

// wholeDays truncates toward zero like a calendar-day difference.
func wholeDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
