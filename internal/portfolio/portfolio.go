// Package portfolio holds the cash and share position of a single simulation run.
package portfolio

import "math"

// Portfolio is a long-only, cash-only position. It never borrows and never shorts.
type Portfolio struct {
	cash   float64
	shares int64
}

// New creates a flat portfolio holding initialCapital in cash.
func New(initialCapital float64) *Portfolio {
	return &Portfolio{cash: initialCapital}
}

// Cash returns the uninvested cash.
func (p *Portfolio) Cash() float64 { return p.cash }

// Shares returns the number of shares held.
func (p *Portfolio) Shares() int64 { return p.shares }

// Long reports whether any shares are held.
func (p *Portfolio) Long() bool { return p.shares > 0 }

// Buy spends cash on as many whole shares as it covers at price and returns the count bought.
// Adding to an existing long position is allowed. Nothing happens when cash < price.
func (p *Portfolio) Buy(price float64) int64 {
	if price <= 0 || p.cash < price {
		return 0
	}
	n := int64(math.Floor(p.cash / price))
	// cash/price can round up to the next integer
	for n > 0 && float64(n)*price > p.cash {
		n--
	}
	if n == 0 {
		return 0
	}
	p.cash -= float64(n) * price
	p.shares += n
	return n
}

// Sell liquidates the whole position at price and returns the count sold, 0 when flat.
func (p *Portfolio) Sell(price float64) int64 {
	if p.shares == 0 {
		return 0
	}
	n := p.shares
	p.cash += float64(n) * price
	p.shares = 0
	return n
}

// Value marks the portfolio to market at price.
func (p *Portfolio) Value(price float64) float64 {
	return p.cash + float64(p.shares)*price
}
