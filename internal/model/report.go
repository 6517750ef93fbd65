package model

import "time"

// PerformanceReport holds the risk/return statistics of one completed simulation.
type PerformanceReport struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualReturn     float64 `json:"annualReturn"`
	AnnualVolatility float64 `json:"annualVolatility"`
	SharpeRatio      float64 `json:"sharpeRatio"`
	SortinoRatio     float64 `json:"sortinoRatio"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
}

// TickerResult is the outcome of the pipeline for a single ticker.
// Err is set when no simulation could run (fetch or validation failure);
// MetricsErr is set when the simulation ran but the analyzer could not produce a report.
type TickerResult struct {
	Ticker       string             `json:"ticker"`
	FinalValue   float64            `json:"finalValue"`
	Transactions []Transaction      `json:"transactions"`
	Metrics      *PerformanceReport `json:"metrics"`
	Error        string             `json:"error,omitempty"`
	MetricsError string             `json:"metricsError,omitempty"`

	Err        error `json:"-"`
	MetricsErr error `json:"-"`
}

// OK reports whether the ticker produced a full set of metrics.
func (r *TickerResult) OK() bool {
	return r.Err == nil && r.MetricsErr == nil && r.Metrics != nil
}

// RunSummary groups the results of one pass over all configured tickers.
type RunSummary struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Provider       string
	Start          time.Time
	End            time.Time
	Window         int
	BandK          float64
	InitialCapital float64
	Results        []TickerResult
}

// Status classifies the result as "ok", "no_metrics" or "failed".
func (r *TickerResult) Status() string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.OK():
		return "ok"
	default:
		return "no_metrics"
	}
}
