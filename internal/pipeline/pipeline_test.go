package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"BandSentinel/internal/collector"
	"BandSentinel/internal/model"
	"BandSentinel/internal/strategy"
)

var day0 = time.Date(2014, 1, 6, 0, 0, 0, 0, time.UTC)

// series builds points from (day offset, price) pairs.
func series(pairs ...[2]float64) []model.PricePoint {
	out := make([]model.PricePoint, len(pairs))
	for i, p := range pairs {
		out[i] = model.PricePoint{Time: day0.AddDate(0, 0, int(p[0])), AdjClose: p[1]}
	}
	return out
}

// Two round trips with window 3 and k 1: buy 2000@5, sell @20, buy 4444@9, sell @15.
var roundTrips = series(
	[2]float64{0, 10}, [2]float64{1, 10}, [2]float64{2, 10}, [2]float64{3, 5},
	[2]float64{400, 5}, [2]float64{401, 5}, [2]float64{402, 20},
	[2]float64{403, 20}, [2]float64{404, 20}, [2]float64{405, 9},
	[2]float64{406, 9}, [2]float64{407, 9}, [2]float64{408, 15},
)

func newPipeline(fetcher collector.Fetcher) *Pipeline {
	return New(collector.NewCollector(fetcher, 0), strategy.NewDoubleBollinger(3, 1), 10000,
		day0, day0.AddDate(3, 0, 0))
}

func TestRunTicker_RoundTrips(t *testing.T) {
	p := newPipeline(&collector.MockFetcher{Series: map[string][]model.PricePoint{"AAA": roundTrips}})
	res := p.RunTicker(context.Background(), "AAA")

	if res.Status() != "ok" {
		t.Fatalf("status = %s (err=%v metricsErr=%v)", res.Status(), res.Err, res.MetricsErr)
	}
	want := []model.Transaction{
		{Side: model.SideBuy, Time: day0.AddDate(0, 0, 3), Price: 5, Shares: 2000},
		{Side: model.SideSell, Time: day0.AddDate(0, 0, 402), Price: 20, Shares: 2000},
		{Side: model.SideBuy, Time: day0.AddDate(0, 0, 405), Price: 9, Shares: 4444},
		{Side: model.SideSell, Time: day0.AddDate(0, 0, 408), Price: 15, Shares: 4444},
	}
	if len(res.Transactions) != len(want) {
		t.Fatalf("got %d transactions, want %d: %+v", len(res.Transactions), len(want), res.Transactions)
	}
	for i := range want {
		got := res.Transactions[i]
		if got.Side != want[i].Side || !got.Time.Equal(want[i].Time) || got.Price != want[i].Price || got.Shares != want[i].Shares {
			t.Errorf("transaction %d = %+v, want %+v", i, got, want[i])
		}
	}
	if math.Abs(res.FinalValue-66664) > 1e-9 {
		t.Errorf("final value = %v, want 66664", res.FinalValue)
	}
	if math.Abs(res.Metrics.TotalReturn-5.6664) > 1e-9 {
		t.Errorf("total return = %v", res.Metrics.TotalReturn)
	}
	if math.Abs(res.Metrics.MaxDrawdown-0.0001) > 1e-9 {
		t.Errorf("max drawdown = %v, want 0.0001", res.Metrics.MaxDrawdown)
	}
}

func TestRunTicker_NoTradesKeepsResults(t *testing.T) {
	flat := series([2]float64{0, 10}, [2]float64{1, 10}, [2]float64{2, 10}, [2]float64{3, 10})
	p := newPipeline(&collector.MockFetcher{Series: map[string][]model.PricePoint{"FLAT": flat}})
	res := p.RunTicker(context.Background(), "FLAT")

	if res.Err != nil {
		t.Fatalf("unexpected fetch/simulation error: %v", res.Err)
	}
	if res.FinalValue != 10000 || len(res.Transactions) != 0 {
		t.Errorf("final=%v txs=%d, want untouched capital", res.FinalValue, len(res.Transactions))
	}
	if !errors.Is(res.MetricsErr, model.ErrInsufficientData) || res.MetricsError != "insufficient_data" {
		t.Errorf("metrics err = %v (%q)", res.MetricsErr, res.MetricsError)
	}
	if res.Metrics != nil {
		t.Error("metrics should be nil when the analyzer fails")
	}
}

func TestRunTicker_Failures(t *testing.T) {
	bad := series([2]float64{0, 10}, [2]float64{1, 0}, [2]float64{2, 10})
	p := newPipeline(&collector.MockFetcher{
		Series: map[string][]model.PricePoint{"BAD": bad},
		Errors: map[string]error{"NET": model.ErrNetwork},
	})
	tests := []struct {
		ticker string
		want   error
		kind   string
	}{
		{"MISSING", model.ErrNotFound, "not_found"},
		{"NET", model.ErrNetwork, "network"},
		{"BAD", model.ErrValidation, "validation"},
	}
	for _, tt := range tests {
		res := p.RunTicker(context.Background(), tt.ticker)
		if !errors.Is(res.Err, tt.want) || res.Error != tt.kind {
			t.Errorf("%s: err=%v kind=%q, want %v", tt.ticker, res.Err, res.Error, tt.want)
		}
		if res.Status() != "failed" {
			t.Errorf("%s: status = %s", tt.ticker, res.Status())
		}
	}
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	p := newPipeline(&collector.MockFetcher{Series: map[string][]model.PricePoint{"AAA": roundTrips}})
	run := p.Run(context.Background(), []string{"MISSING", "AAA"})

	if run.ID == "" || run.Provider != "mock" || run.Window != 3 || run.BandK != 1 {
		t.Errorf("run header = %+v", run)
	}
	if len(run.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(run.Results))
	}
	if run.Results[0].Ticker != "MISSING" || run.Results[0].Status() != "failed" {
		t.Errorf("result 0 = %+v", run.Results[0])
	}
	if run.Results[1].Ticker != "AAA" || run.Results[1].Status() != "ok" {
		t.Errorf("result 1 = %+v", run.Results[1])
	}
	if run.FinishedAt.Before(run.StartedAt) {
		t.Error("finished before started")
	}
}

func TestRun_UniqueIDs(t *testing.T) {
	p := newPipeline(&collector.MockFetcher{Price: 100})
	a := p.Run(context.Background(), []string{"X"})
	b := p.Run(context.Background(), []string{"X"})
	if a.ID == b.ID {
		t.Errorf("run ids collide: %s", a.ID)
	}
}

func TestRun_Cancelled(t *testing.T) {
	p := newPipeline(&collector.MockFetcher{Price: 100})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	run := p.Run(ctx, []string{"A", "B"})
	if len(run.Results) != 0 {
		t.Errorf("cancelled run produced %d results", len(run.Results))
	}
}
