// Package backtest replays a signalled price series against a long/flat portfolio.
package backtest

import (
	"fmt"
	"math"

	"BandSentinel/internal/model"
	"BandSentinel/internal/portfolio"
)

// Result is the output of one simulation run.
type Result struct {
	FinalValue   float64
	Transactions []model.Transaction
}

// Simulate walks series once, buying on Buy signals when cash covers one share and
// liquidating on Sell signals when long. The series must be strictly increasing in time
// with finite positive prices; violations fail with model.ErrValidation before any trade.
func Simulate(series []model.BandedPoint, initialCapital float64) (*Result, error) {
	if math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) || initialCapital < 0 {
		return nil, fmt.Errorf("%w: initial capital %v", model.ErrValidation, initialCapital)
	}
	if err := Validate(series); err != nil {
		return nil, err
	}

	pf := portfolio.New(initialCapital)
	res := &Result{FinalValue: initialCapital}

	for _, p := range series {
		price := p.AdjClose
		switch p.Signal {
		case model.SignalBuy:
			if n := pf.Buy(price); n > 0 {
				res.Transactions = append(res.Transactions, model.Transaction{
					Side: model.SideBuy, Time: p.Time, Price: price, Shares: n,
				})
			}
		case model.SignalSell:
			if n := pf.Sell(price); n > 0 {
				res.Transactions = append(res.Transactions, model.Transaction{
					Side: model.SideSell, Time: p.Time, Price: price, Shares: n,
				})
			}
		}
	}

	if len(series) > 0 {
		res.FinalValue = pf.Value(series[len(series)-1].AdjClose)
	}
	return res, nil
}

// Validate checks the ordering and finiteness preconditions of a series.
func Validate(series []model.BandedPoint) error {
	for i, p := range series {
		if math.IsNaN(p.AdjClose) || math.IsInf(p.AdjClose, 0) {
			return fmt.Errorf("%w: non-finite price at %s", model.ErrValidation, p.Time.Format("2006-01-02"))
		}
		if p.AdjClose <= 0 {
			return fmt.Errorf("%w: non-positive price %v at %s", model.ErrValidation, p.AdjClose, p.Time.Format("2006-01-02"))
		}
		if i > 0 && !p.Time.After(series[i-1].Time) {
			return fmt.Errorf("%w: timestamp %s not after %s", model.ErrValidation,
				p.Time.Format("2006-01-02"), series[i-1].Time.Format("2006-01-02"))
		}
	}
	return nil
}
