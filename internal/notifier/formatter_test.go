package notifier

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"BandSentinel/internal/model"
)

func day(m time.Month, d int) time.Time { return time.Date(2013, m, d, 0, 0, 0, 0, time.UTC) }

func fullResult() model.TickerResult {
	return model.TickerResult{
		Ticker:     "MSFT",
		FinalValue: 12345.678,
		Transactions: []model.Transaction{
			{Side: model.SideBuy, Time: day(2, 1), Price: 27.12344, Shares: 368},
			{Side: model.SideSell, Time: day(3, 15), Price: 28.5, Shares: 368},
		},
		Metrics: &model.PerformanceReport{
			TotalReturn:      0.23456,
			AnnualReturn:     0.0213,
			AnnualVolatility: 0.15,
			SharpeRatio:      1.23456,
			SortinoRatio:     2.5,
			MaxDrawdown:      0.1,
		},
	}
}

func TestFormatTickerReport(t *testing.T) {
	res := fullResult()
	want := `Backtesting results for MSFT:
Final Portfolio Value: $12345.68
Transactions:
(BUY, 2013-02-01, 27.1234, 368)
(SELL, 2013-03-15, 28.5000, 368)
Performance metrics for MSFT:
Total Return: 0.2346
Annual Return: 0.0213
Annual Volatility: 0.1500
Sharpe Ratio: 1.2346
Sortino Ratio: 2.5000
Maximum Drawdown: 0.1000
`
	if got := FormatTickerReport(&res); got != want {
		t.Errorf("report mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatTickerReport_Failures(t *testing.T) {
	noMetrics := model.TickerResult{
		Ticker:       "KO",
		FinalValue:   10000,
		Transactions: []model.Transaction{{Side: model.SideBuy, Time: day(1, 2), Price: 35, Shares: 285}},
		MetricsErr:   model.ErrInsufficientData,
	}
	got := FormatTickerReport(&noMetrics)
	if !strings.Contains(got, "(BUY, 2013-01-02, 35.0000, 285)") {
		t.Errorf("transactions missing from partial report:\n%s", got)
	}
	if !strings.HasSuffix(got, "Performance metrics for KO:\nmetrics unavailable: insufficient_data\n") {
		t.Errorf("unexpected partial report:\n%s", got)
	}

	failed := model.TickerResult{Ticker: "ZZZZ", Err: model.ErrNotFound}
	if got := FormatTickerReport(&failed); got != "Backtesting results for ZZZZ:\nresults unavailable: not_found\n" {
		t.Errorf("unexpected failed report:\n%s", got)
	}
}

func TestWriteText_SeparatesBlocks(t *testing.T) {
	var buf bytes.Buffer
	results := []model.TickerResult{fullResult(), {Ticker: "ZZZZ", Err: model.ErrNetwork}}
	if err := WriteText(&buf, results); err != nil {
		t.Fatalf("WriteText() returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "Maximum Drawdown: 0.1000\n\nBacktesting results for ZZZZ:\nresults unavailable: network\n") {
		t.Errorf("blocks not separated as expected:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	results := []model.TickerResult{
		fullResult(),
		{Ticker: "KO", FinalValue: 10000, MetricsErr: model.ErrDegenerateWindow},
		{Ticker: "ZZZZ", Err: model.ErrNotFound},
	}
	if err := WriteJSON(&buf, results); err != nil {
		t.Fatalf("WriteJSON() returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0: %v", err)
	}
	if first["ticker"] != "MSFT" || first["finalValue"] != 12345.678 {
		t.Errorf("line 0 = %v", first)
	}
	txs := first["transactions"].([]any)
	tx0 := txs[0].(map[string]any)
	if tx0["side"] != "BUY" || tx0["shareCount"] != float64(368) || tx0["timestamp"] != "2013-02-01T00:00:00Z" {
		t.Errorf("transaction = %v", tx0)
	}
	if _, ok := first["error"]; ok {
		t.Error("successful result should omit error")
	}

	var second map[string]any
	json.Unmarshal([]byte(lines[1]), &second)
	if second["metrics"] != nil || second["metricsError"] != "degenerate_window" {
		t.Errorf("line 1 = %v", second)
	}
	if txs, ok := second["transactions"].([]any); !ok || len(txs) != 0 {
		t.Errorf("empty log should encode as [], got %v", second["transactions"])
	}

	var third map[string]any
	json.Unmarshal([]byte(lines[2]), &third)
	if third["error"] != "not_found" {
		t.Errorf("line 2 = %v", third)
	}
}

func TestFormatRunSummary(t *testing.T) {
	run := &model.RunSummary{
		FinishedAt:     time.Date(2024, 1, 2, 22, 30, 0, 0, time.UTC),
		Start:          day(1, 1),
		End:            time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		Window:         20,
		BandK:          2,
		InitialCapital: 10000,
		Results: []model.TickerResult{
			fullResult(),
			{Ticker: "KO", FinalValue: 10000, MetricsErr: model.ErrInsufficientData},
			{Ticker: "A<B", Err: model.ErrNotFound},
		},
	}
	msg := FormatRunSummary(run)
	for _, want := range []string{
		"2013-01-01 → 2023-12-31, window 20",
		"<b>MSFT</b>: $12345.68 (+23.5%, Sharpe 1.23, MDD 10.0%)",
		"<b>KO</b>: $10000.00, 0 trades (metrics: insufficient_data)",
		"<b>A&lt;B</b>: ⚠️ not_found",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("summary missing %q:\n%s", want, msg)
		}
	}
}
