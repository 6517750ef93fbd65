package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"BandSentinel/internal/model"
)

// Run collects the metrics of one backtest pass on a private registry, so
// scheduled runs never accumulate state from earlier passes.
type Run struct {
	Registry *prometheus.Registry

	TickersTotal      *prometheus.CounterVec
	TransactionsTotal *prometheus.CounterVec
	FinalValue        *prometheus.GaugeVec
	RunDuration       prometheus.Gauge
}

// NewRun creates a fresh registry with all run metrics registered.
func NewRun() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Run{
		Registry: reg,
		TickersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bandsentinel_tickers_total",
				Help: "Tickers processed in the run, by outcome",
			},
			[]string{"status"},
		),
		TransactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bandsentinel_transactions_total",
				Help: "Simulated transactions, by side",
			},
			[]string{"side"},
		),
		FinalValue: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bandsentinel_final_value",
				Help: "Final portfolio value per ticker",
			},
			[]string{"ticker"},
		),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bandsentinel_run_duration_seconds",
			Help: "Wall-clock duration of the last run",
		}),
	}
}

// ObserveResult records one ticker outcome.
func (r *Run) ObserveResult(res *model.TickerResult) {
	r.TickersTotal.WithLabelValues(res.Status()).Inc()
	if res.Err != nil {
		return
	}
	r.FinalValue.WithLabelValues(res.Ticker).Set(res.FinalValue)
	for _, t := range res.Transactions {
		r.TransactionsTotal.WithLabelValues(string(t.Side)).Inc()
	}
}

// ObserveDuration records how long the run took.
func (r *Run) ObserveDuration(d time.Duration) {
	r.RunDuration.Set(d.Seconds())
}

// WriteTextfile writes the registry in the node-exporter textfile format.
// An empty path is a no-op.
func (r *Run) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.Registry)
}
