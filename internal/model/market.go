package model

import "time"

// PricePoint is one trading day of a ticker's adjusted close.
type PricePoint struct {
	Time     time.Time
	AdjClose float64
}

// BandedPoint is a PricePoint with its Bollinger bands and the signal derived from them.
// HasBands is false for the first window-1 points of a series.
type BandedPoint struct {
	PricePoint
	Mid      float64
	StdDev   float64
	Upper    float64
	Lower    float64
	HasBands bool
	Signal   Signal
}
