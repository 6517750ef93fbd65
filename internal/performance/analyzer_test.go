package performance

import (
	"errors"
	"math"
	"testing"
	"time"

	"BandSentinel/internal/model"
)

var t0 = time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC)

func tx(side model.Side, day int, price float64, shares int64) model.Transaction {
	return model.Transaction{Side: side, Time: t0.AddDate(0, 0, day), Price: price, Shares: shares}
}

func sampleLog() []model.Transaction {
	return []model.Transaction{
		tx(model.SideBuy, 0, 50, 200),    // 10000
		tx(model.SideSell, 100, 60, 200), // 12000
		tx(model.SideBuy, 200, 55, 218),  // 11990
		tx(model.SideSell, 365, 45, 218), // 9810
	}
}

func TestAnalyze_Values(t *testing.T) {
	txs := sampleLog()
	final := 9820.0
	rep, err := Analyze(txs, final, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := (final - 10000) / 10000; rep.TotalReturn != want {
		t.Errorf("total return = %v, want %v", rep.TotalReturn, want)
	}
	// exactly one year between first and last transaction
	if want := final/10000 - 1; math.Abs(rep.AnnualReturn-want) > 1e-12 {
		t.Errorf("annual return = %v, want %v", rep.AnnualReturn, want)
	}

	r := []float64{2000.0 / 10000, -10.0 / 12000, -2180.0 / 11990}
	mean := (r[0] + r[1] + r[2]) / 3
	var ss float64
	for _, x := range r {
		ss += (x - mean) * (x - mean)
	}
	wantVol := math.Sqrt(ss/3) * math.Sqrt(252)
	if math.Abs(rep.AnnualVolatility-wantVol) > 1e-12 {
		t.Errorf("volatility = %v, want %v", rep.AnnualVolatility, wantVol)
	}
	if math.Abs(rep.SharpeRatio-rep.AnnualReturn/wantVol) > 1e-12 {
		t.Errorf("sharpe = %v", rep.SharpeRatio)
	}

	down := []float64{0, r[1], r[2]}
	dm := (down[1] + down[2]) / 3
	var dss float64
	for _, x := range down {
		dss += (x - dm) * (x - dm)
	}
	wantSortino := rep.AnnualReturn / math.Sqrt(dss/3) * math.Sqrt(252)
	if math.Abs(rep.SortinoRatio-wantSortino) > 1e-9 {
		t.Errorf("sortino = %v, want %v", rep.SortinoRatio, wantSortino)
	}

	if want := (12000.0 - 9810) / 12000; math.Abs(rep.MaxDrawdown-want) > 1e-12 {
		t.Errorf("max drawdown = %v, want %v", rep.MaxDrawdown, want)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	txs := sampleLog()
	a, err := Analyze(txs, 11000, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Analyze(txs, 11000, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *a != *b {
		t.Errorf("reports differ: %+v vs %+v", a, b)
	}
}

func TestAnalyze_SingleTransaction(t *testing.T) {
	_, err := Analyze([]model.Transaction{tx(model.SideBuy, 0, 70, 142)}, 10000, 10000)
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyze_EmptyLog(t *testing.T) {
	_, err := Analyze(nil, 10000, 10000)
	if !errors.Is(err, model.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyze_SameDay(t *testing.T) {
	txs := []model.Transaction{
		tx(model.SideBuy, 0, 50, 200),
		{Side: model.SideSell, Time: t0.Add(6 * time.Hour), Price: 60, Shares: 200},
	}
	_, err := Analyze(txs, 12000, 10000)
	if !errors.Is(err, model.ErrDegenerateWindow) {
		t.Errorf("expected ErrDegenerateWindow, got %v", err)
	}
}

func TestAnalyze_ZeroVolatility(t *testing.T) {
	// constant notional gives all-zero returns
	txs := []model.Transaction{
		tx(model.SideBuy, 0, 50, 200),
		tx(model.SideSell, 30, 100, 100),
		tx(model.SideBuy, 60, 25, 400),
	}
	_, err := Analyze(txs, 10000, 10000)
	if !errors.Is(err, model.ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestAnalyze_NoDownside(t *testing.T) {
	txs := []model.Transaction{
		tx(model.SideBuy, 0, 50, 200),
		tx(model.SideSell, 30, 60, 200),
		tx(model.SideBuy, 60, 60, 250),
	}
	_, err := Analyze(txs, 15000, 10000)
	if !errors.Is(err, model.ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero for zero downside deviation, got %v", err)
	}
}

func TestAnalyze_BadCapital(t *testing.T) {
	for _, c := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		if _, err := Analyze(sampleLog(), 100, c); !errors.Is(err, model.ErrValidation) {
			t.Errorf("capital %v: expected ErrValidation, got %v", c, err)
		}
	}
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{nil, 0},
		{[]float64{100}, 0},
		{[]float64{100, 120, 130}, 0},
		{[]float64{100, 80, 120, 60, 110}, 0.5},
		{[]float64{100, 100}, 0},
	}
	for _, tt := range tests {
		got, err := MaxDrawdown(tt.values)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", tt.values, err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("MaxDrawdown(%v) = %v, want %v", tt.values, got, tt.want)
		}
	}
}

func TestMaxDrawdown_ZeroPeak(t *testing.T) {
	if _, err := MaxDrawdown([]float64{0, 10}); !errors.Is(err, model.ErrDivisionByZero) {
		t.Errorf("expected ErrDivisionByZero, got %v", err)
	}
}

func TestMaxDrawdown_MonotoneUnderAppend(t *testing.T) {
	values := []float64{100, 90, 130, 70, 140, 120, 50, 200, 180}
	prev := 0.0
	for n := 1; n <= len(values); n++ {
		dd, err := MaxDrawdown(values[:n])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dd < prev {
			t.Fatalf("drawdown decreased from %v to %v at n=%d", prev, dd, n)
		}
		prev = dd
	}
}

func TestReturns(t *testing.T) {
	got := Returns([]float64{100, 110, 99})
	want := []float64{0.1, -0.1}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("returns[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if Returns([]float64{1}) != nil {
		t.Error("expected nil for a single value")
	}
}
