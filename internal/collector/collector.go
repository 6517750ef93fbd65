package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BandSentinel/internal/logger"
	"BandSentinel/internal/model"
)

// headRows is how many leading rows of each fetched series are debug-logged.
const headRows = 5

// Collector wraps a Fetcher with retries on network failures.
type Collector struct {
	Fetcher Fetcher
	Retries int
	Backoff time.Duration
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, retries int) *Collector {
	if retries < 0 {
		retries = 0
	}
	return &Collector{Fetcher: fetcher, Retries: retries, Backoff: time.Second}
}

// Collect fetches the daily series for ticker over [start, end). Only model.ErrNetwork
// failures are retried, with exponential backoff between attempts.
func (c *Collector) Collect(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error) {
	var (
		points []model.PricePoint
		err    error
	)
	delay := c.Backoff
	for attempt := 0; attempt <= c.Retries; attempt++ {
		points, err = c.Fetcher.FetchDaily(ctx, ticker, start, end)
		if err == nil {
			break
		}
		if !errors.Is(err, model.ErrNetwork) || attempt == c.Retries {
			return nil, fmt.Errorf("collect %s from %s: %w", ticker, c.Fetcher.Name(), err)
		}
		logger.Warn().Err(err).Str("ticker", ticker).Int("attempt", attempt+1).Dur("backoff", delay).Msg("fetch failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	logger.Info().Str("ticker", ticker).Str("provider", c.Fetcher.Name()).Int("rows", len(points)).Msg("series fetched")
	for i := 0; i < len(points) && i < headRows; i++ {
		logger.Debug().Str("ticker", ticker).Str("date", points[i].Time.Format("2006-01-02")).
			Float64("adj_close", points[i].AdjClose).Msg("head")
	}
	return points, nil
}

// Options selects and configures a price provider.
type Options struct {
	Provider  string
	BaseURL   string
	APIKey    string
	APISecret string
	Proxy     string
	Timeout   time.Duration
}

// NewFetcher builds the Fetcher named by opts.Provider.
func NewFetcher(opts Options) (Fetcher, error) {
	switch opts.Provider {
	case "", "yahoo":
		f := NewYahooFetcher(opts.Proxy, opts.Timeout)
		if opts.BaseURL != "" {
			f.BaseURL = opts.BaseURL
		}
		return f, nil
	case "alpaca":
		return NewAlpacaFetcher(opts.APIKey, opts.APISecret, opts.BaseURL, ""), nil
	case "rest":
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("rest provider requires a base url")
		}
		return NewRESTFetcher(opts.BaseURL, opts.APIKey, opts.Proxy, opts.Timeout), nil
	case "mock":
		return &MockFetcher{Price: 100}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
}
