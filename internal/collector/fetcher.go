package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"BandSentinel/internal/model"
)

// Fetcher supplies daily adjusted-close series over [start, end).
// Failures are reported as model.ErrNotFound (unknown ticker or no data in range)
// or model.ErrNetwork (transport or server-side failure).
type Fetcher interface {
	FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error)
	Name() string
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// tradingDate drops the time of day, keeping the calendar date in UTC.
func tradingDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
