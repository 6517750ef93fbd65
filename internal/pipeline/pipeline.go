// Package pipeline runs the fetch, band, simulate and analyze stages for each ticker.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"BandSentinel/internal/backtest"
	"BandSentinel/internal/collector"
	"BandSentinel/internal/logger"
	"BandSentinel/internal/model"
	"BandSentinel/internal/performance"
	"BandSentinel/internal/strategy"
)

// Pipeline holds everything needed to backtest a list of tickers over one date range.
type Pipeline struct {
	Collector      *collector.Collector
	Strategy       *strategy.DoubleBollinger
	InitialCapital float64
	Start          time.Time
	End            time.Time
}

// New creates a Pipeline.
func New(col *collector.Collector, strat *strategy.DoubleBollinger, initialCapital float64, start, end time.Time) *Pipeline {
	return &Pipeline{
		Collector:      col,
		Strategy:       strat,
		InitialCapital: initialCapital,
		Start:          start,
		End:            end,
	}
}

// RunTicker backtests a single ticker. Failures never escape: a fetch or validation
// failure sets Err, an analyzer failure sets MetricsErr and keeps the simulation output.
func (p *Pipeline) RunTicker(ctx context.Context, ticker string) model.TickerResult {
	res := model.TickerResult{Ticker: ticker}

	points, err := p.Collector.Collect(ctx, ticker, p.Start, p.End)
	if err != nil {
		return failed(res, err)
	}

	series := p.Strategy.Evaluate(points)
	sim, err := backtest.Simulate(series, p.InitialCapital)
	if err != nil {
		return failed(res, err)
	}
	res.FinalValue = sim.FinalValue
	res.Transactions = sim.Transactions

	report, err := performance.Analyze(sim.Transactions, sim.FinalValue, p.InitialCapital)
	if err != nil {
		res.MetricsErr = err
		res.MetricsError = model.ErrorKind(err)
		logger.Warn().Err(err).Str("ticker", ticker).Int("transactions", len(sim.Transactions)).Msg("metrics unavailable")
		return res
	}
	res.Metrics = report

	logger.Info().Str("ticker", ticker).Float64("final_value", sim.FinalValue).
		Int("transactions", len(sim.Transactions)).Float64("total_return", report.TotalReturn).Msg("backtest done")
	return res
}

func failed(res model.TickerResult, err error) model.TickerResult {
	res.Err = err
	res.Error = model.ErrorKind(err)
	logger.Error().Err(err).Str("ticker", res.Ticker).Str("kind", res.Error).Msg("backtest failed")
	return res
}

// Run backtests tickers one after another. It stops early only when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, tickers []string) *model.RunSummary {
	run := &model.RunSummary{
		ID:             uuid.NewString(),
		StartedAt:      time.Now(),
		Provider:       p.Collector.Fetcher.Name(),
		Start:          p.Start,
		End:            p.End,
		Window:         p.Strategy.Window,
		BandK:          p.Strategy.K,
		InitialCapital: p.InitialCapital,
	}
	logger.Info().Str("run_id", run.ID).Strs("tickers", tickers).Str("provider", run.Provider).Msg("run started")

	for _, ticker := range tickers {
		if ctx.Err() != nil {
			logger.Warn().Str("run_id", run.ID).Msg("run cancelled")
			break
		}
		run.Results = append(run.Results, p.RunTicker(ctx, ticker))
	}

	run.FinishedAt = time.Now()
	logger.Info().Str("run_id", run.ID).Int("tickers", len(run.Results)).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).Msg("run finished")
	return run
}
