package model

import "time"

// Transaction is an immutable entry of a simulation's transaction log.
type Transaction struct {
	Side   Side      `json:"side"`
	Time   time.Time `json:"timestamp"`
	Price  float64   `json:"price"`
	Shares int64     `json:"shareCount"`
}

// Notional returns the monetary size of the trade.
func (t Transaction) Notional() float64 {
	return float64(t.Shares) * t.Price
}
