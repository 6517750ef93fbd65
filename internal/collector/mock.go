package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"BandSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// With Series set, the matching ticker's points are filtered to [start, end);
// otherwise a deterministic oscillating series is generated on weekdays.
type MockFetcher struct {
	Price  float64
	Series map[string][]model.PricePoint
	Errors map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[ticker]; ok {
		return nil, err
	}
	if m.Series != nil {
		series, ok := m.Series[ticker]
		if !ok {
			return nil, fmt.Errorf("mock: %w: ticker %s", model.ErrNotFound, ticker)
		}
		var out []model.PricePoint
		for _, p := range series {
			if !p.Time.Before(start) && p.Time.Before(end) {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("mock: %w: no data for %s in range", model.ErrNotFound, ticker)
		}
		return out, nil
	}
	return generateMockSeries(m.Price, start, end), nil
}

func generateMockSeries(basePrice float64, start, end time.Time) []model.PricePoint {
	if basePrice <= 0 {
		basePrice = 100
	}
	var points []model.PricePoint
	i := 0
	for d := tradingDate(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		// slow drift plus a 40-day swing so the bands get crossed both ways
		p := basePrice * (1 + 0.0005*float64(i) + 0.08*math.Sin(float64(i)*2*math.Pi/40))
		points = append(points, model.PricePoint{Time: d, AdjClose: p})
		i++
	}
	return points
}
