package model

// Signal is the trading decision attached to a BandedPoint.
type Signal int

const (
	SignalHold Signal = iota
	SignalBuy
	SignalSell
)

func (s Signal) String() string {
	switch s {
	case SignalBuy:
		return "BUY"
	case SignalSell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Side is the direction of an executed transaction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)
