package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"BandSentinel/internal/model"
)

// RESTFetcher implements Fetcher against a generic daily-bars REST endpoint:
// GET {BaseURL}/api/v1/bars/daily?symbol=&start=&end= returning a JSON array of restBar.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the REST API. AdjClose is optional.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Close     float64  `json:"close"`
	AdjClose  *float64 `json:"adj_close"`
}

func (f *RESTFetcher) FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch bars: %w: %v", model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetch bars: %w: ticker %s", model.ErrNotFound, ticker)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: %w: status %d, body: %s", model.ErrNetwork, resp.StatusCode, truncate(body, 200))
	}

	var bars []restBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w: %v", model.ErrNetwork, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("fetch bars: %w: no data for %s in range", model.ErrNotFound, ticker)
	}

	points := make([]model.PricePoint, len(bars))
	for i, b := range bars {
		price := b.Close
		if b.AdjClose != nil {
			price = *b.AdjClose
		}
		points[i] = model.PricePoint{
			Time:     tradingDate(time.Unix(b.Timestamp, 0).UTC()),
			AdjClose: price,
		}
	}
	return dedupeByDate(points), nil
}
