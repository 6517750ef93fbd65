package strategy

import (
	"BandSentinel/internal/calculator"
	"BandSentinel/internal/model"
)

// DoubleBollinger is the band-breakout rule: buy below the lower band, sell above the upper band.
type DoubleBollinger struct {
	Window int
	K      float64
}

// NewDoubleBollinger creates the strategy, falling back to the default window and width
// for non-positive arguments.
func NewDoubleBollinger(window int, k float64) *DoubleBollinger {
	if window <= 0 {
		window = calculator.DefaultWindow
	}
	if k <= 0 {
		k = calculator.DefaultBandK
	}
	return &DoubleBollinger{Window: window, K: k}
}

// Evaluate computes bands for the series and attaches a signal to every point.
func (s *DoubleBollinger) Evaluate(points []model.PricePoint) []model.BandedPoint {
	return Generate(calculator.Bollinger(points, s.Window, s.K))
}

// Classify maps one point to a signal. Touching a band is not a breakout.
func Classify(p model.BandedPoint) model.Signal {
	if !p.HasBands {
		return model.SignalHold
	}
	switch {
	case p.AdjClose < p.Lower:
		return model.SignalBuy
	case p.AdjClose > p.Upper:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

// Generate returns a copy of points with Signal set from the existing bands.
func Generate(points []model.BandedPoint) []model.BandedPoint {
	out := make([]model.BandedPoint, len(points))
	for i, p := range points {
		p.Signal = Classify(p)
		out[i] = p
	}
	return out
}
