package calculator

import "BandSentinel/internal/model"

// Default Double Bollinger Band parameters.
const (
	DefaultWindow = 20
	DefaultBandK  = 2.0
)

// Bollinger computes rolling bands over the adjusted close of points.
// For i >= window-1 the mid band is the mean of the trailing window, the width is k sample
// standard deviations of the same window. Earlier points, and every point when window < 2,
// are returned without bands. The input slice is not modified.
func Bollinger(points []model.PricePoint, window int, k float64) []model.BandedPoint {
	out := make([]model.BandedPoint, len(points))
	for i, p := range points {
		out[i] = model.BandedPoint{PricePoint: p}
	}
	if window < 2 || len(points) < window {
		return out
	}

	closes := extractCloses(points)
	for i := window - 1; i < len(closes); i++ {
		mid, err := CalculateSMA(closes[:i+1], window)
		if err != nil {
			break
		}
		std := SampleStdDev(closes[i-window+1 : i+1])
		bp := &out[i]
		bp.Mid = mid
		bp.StdDev = std
		bp.Upper = mid + k*std
		bp.Lower = mid - k*std
		bp.HasBands = true
	}
	return out
}
