package notifier

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"BandSentinel/internal/model"
)

// FormatTickerReport renders one ticker's backtest block in the plain-text report format.
func FormatTickerReport(res *model.TickerResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Backtesting results for %s:\n", res.Ticker))
	if res.Err != nil {
		b.WriteString(fmt.Sprintf("results unavailable: %s\n", model.ErrorKind(res.Err)))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Final Portfolio Value: $%.2f\n", res.FinalValue))
	b.WriteString("Transactions:\n")
	for _, t := range res.Transactions {
		b.WriteString(fmt.Sprintf("(%s, %s, %.4f, %d)\n", t.Side, t.Time.Format("2006-01-02"), t.Price, t.Shares))
	}

	b.WriteString(fmt.Sprintf("Performance metrics for %s:\n", res.Ticker))
	if res.MetricsErr != nil || res.Metrics == nil {
		b.WriteString(fmt.Sprintf("metrics unavailable: %s\n", kind(res.MetricsErr)))
		return b.String()
	}
	m := res.Metrics
	b.WriteString(fmt.Sprintf("Total Return: %.4f\n", m.TotalReturn))
	b.WriteString(fmt.Sprintf("Annual Return: %.4f\n", m.AnnualReturn))
	b.WriteString(fmt.Sprintf("Annual Volatility: %.4f\n", m.AnnualVolatility))
	b.WriteString(fmt.Sprintf("Sharpe Ratio: %.4f\n", m.SharpeRatio))
	b.WriteString(fmt.Sprintf("Sortino Ratio: %.4f\n", m.SortinoRatio))
	b.WriteString(fmt.Sprintf("Maximum Drawdown: %.4f\n", m.MaxDrawdown))
	return b.String()
}

// WriteText writes the text report of every result, separated by blank lines.
func WriteText(w io.Writer, results []model.TickerResult) error {
	for i := range results {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, FormatTickerReport(&results[i])); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes one JSON object per result per line.
func WriteJSON(w io.Writer, results []model.TickerResult) error {
	enc := json.NewEncoder(w)
	for i := range results {
		res := results[i]
		if res.Err != nil && res.Error == "" {
			res.Error = model.ErrorKind(res.Err)
		}
		if res.MetricsErr != nil && res.MetricsError == "" {
			res.MetricsError = model.ErrorKind(res.MetricsErr)
		}
		if res.Transactions == nil {
			res.Transactions = []model.Transaction{}
		}
		if err := enc.Encode(&res); err != nil {
			return fmt.Errorf("encode %s: %w", res.Ticker, err)
		}
	}
	return nil
}

// FormatRunSummary formats a compact HTML summary of a run for Telegram.
func FormatRunSummary(run *model.RunSummary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>BandSentinel backtest</b> | %s\n", run.FinishedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("%s → %s, window %d, k %.1f, capital $%.0f\n\n",
		run.Start.Format("2006-01-02"), run.End.Format("2006-01-02"), run.Window, run.BandK, run.InitialCapital))

	for i := range run.Results {
		res := &run.Results[i]
		ticker := html.EscapeString(res.Ticker)
		switch res.Status() {
		case "ok":
			b.WriteString(fmt.Sprintf("<b>%s</b>: $%.2f (%+.1f%%, Sharpe %.2f, MDD %.1f%%)\n",
				ticker, res.FinalValue, res.Metrics.TotalReturn*100, res.Metrics.SharpeRatio, res.Metrics.MaxDrawdown*100))
		case "no_metrics":
			b.WriteString(fmt.Sprintf("<b>%s</b>: $%.2f, %d trades (metrics: %s)\n",
				ticker, res.FinalValue, len(res.Transactions), kind(res.MetricsErr)))
		default:
			b.WriteString(fmt.Sprintf("<b>%s</b>: ⚠️ %s\n", ticker, model.ErrorKind(res.Err)))
		}
	}
	return b.String()
}

func kind(err error) string {
	if err == nil {
		return "unknown"
	}
	return model.ErrorKind(err)
}
