package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"BandSentinel/internal/model"
)

// AlpacaFetcher implements Fetcher using the Alpaca market-data API.
// Bars are requested fully adjusted for splits and dividends.
type AlpacaFetcher struct {
	client *marketdata.Client
	feed   string
}

// NewAlpacaFetcher creates a fetcher with the given credentials. An empty
// dataURL uses the SDK default endpoint.
func NewAlpacaFetcher(apiKey, apiSecret, dataURL, feed string) *AlpacaFetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if feed == "" {
		feed = "iex"
	}
	return &AlpacaFetcher{
		client: marketdata.NewClient(opts),
		feed:   feed,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bars, err := f.client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      start,
		End:        end,
		Feed:       f.feed,
	})
	if err != nil {
		return nil, classifyAlpacaError(ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("alpaca: %w: no bars for %s in range", model.ErrNotFound, ticker)
	}

	points := make([]model.PricePoint, len(bars))
	for i, b := range bars {
		points[i] = model.PricePoint{
			Time:     tradingDate(b.Timestamp.UTC()),
			AdjClose: b.Close,
		}
	}
	return dedupeByDate(points), nil
}

// classifyAlpacaError maps SDK failures onto the provider error kinds. Rejected symbols
// are not found, rate limits, server errors and transport failures are network errors,
// and other API errors (bad credentials, bad requests) are returned without a kind so
// they are not retried.
func classifyAlpacaError(ticker string, err error) error {
	var apiErr *alpaca.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("alpaca GetBars %s: %w: %v", ticker, model.ErrNetwork, err)
	}
	switch {
	case apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("alpaca: %w: ticker %s: %v", model.ErrNotFound, ticker, err)
	case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500:
		return fmt.Errorf("alpaca GetBars %s: %w: %v", ticker, model.ErrNetwork, err)
	default:
		return fmt.Errorf("alpaca GetBars %s: %w", ticker, err)
	}
}
