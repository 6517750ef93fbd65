package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"BandSentinel/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, timeout time.Duration) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL, timeout),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily downloads the daily series for ticker. Null rows (holidays, halted days) are
// skipped and a repeated trading date keeps its last row.
func (f *YahooFetcher) FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("period1", fmt.Sprint(start.Unix()))
	q.Set("period2", fmt.Sprint(end.Unix()))
	q.Set("interval", "1d")
	q.Set("events", "div,splits")
	q.Set("includeAdjustedClose", "true")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(f.yahooSymbol(ticker)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("yahoo fetch %s: %w: %v", ticker, model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w: %v", model.ErrNetwork, err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("yahoo: %w: ticker %s", model.ErrNotFound, ticker)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("yahoo: %w: status %d", model.ErrNetwork, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		if decodeErr == nil && chart.Chart.Error != nil && isNotFoundCode(chart.Chart.Error.Code) {
			return nil, fmt.Errorf("yahoo: %w: ticker %s: %s", model.ErrNotFound, ticker, chart.Chart.Error.Description)
		}
		return nil, fmt.Errorf("yahoo: %w: status %d, body: %s", model.ErrNetwork, resp.StatusCode, truncate(body, 200))
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo decode: %w: %v", model.ErrNetwork, decodeErr)
	}
	if chart.Chart.Error != nil {
		if isNotFoundCode(chart.Chart.Error.Code) {
			return nil, fmt.Errorf("yahoo: %w: ticker %s: %s", model.ErrNotFound, ticker, chart.Chart.Error.Description)
		}
		return nil, fmt.Errorf("yahoo api error: %w: %s", model.ErrNetwork, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: %w: no data for %s in range", model.ErrNotFound, ticker)
	}

	// One price column for the whole series: adjclose when Yahoo sent it, close otherwise.
	result := chart.Chart.Result[0]
	var prices []*float64
	switch {
	case len(result.Indicators.AdjClose) > 0:
		prices = result.Indicators.AdjClose[0].AdjClose
	case len(result.Indicators.Quote) > 0:
		prices = result.Indicators.Quote[0].Close
	}

	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		price := valueAt(prices, i)
		if price == nil {
			continue // skip null bars (holidays etc.)
		}
		points = append(points, model.PricePoint{
			Time:     tradingDate(time.Unix(ts+result.Meta.GMTOffset, 0).UTC()),
			AdjClose: *price,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("yahoo: %w: only null rows for %s", model.ErrNotFound, ticker)
	}
	return dedupeByDate(points), nil
}

func valueAt(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func isNotFoundCode(code string) bool {
	return strings.EqualFold(code, "Not Found")
}

// dedupeByDate sorts points by time and keeps the last point of each date.
func dedupeByDate(points []model.PricePoint) []model.PricePoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
