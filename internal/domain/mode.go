package domain

import (
	"fmt"
	"strings"
)

// TradeMode represents whether a side of a trade executes instantly against
// the opposing book or is queued as a bid/ask.
type TradeMode int

const (
	// Instant executes against an existing opposing offer.
	Instant TradeMode = iota
	// Bid queues an order at a chosen price.
	Bid
)

// AllTradeModes lists both modes, Instant first.
func AllTradeModes() []TradeMode {
	return []TradeMode{Instant, Bid}
}

// String serializes as the capitalized word used in digest keys and
// configuration: "Instant" or "Bid".
func (m TradeMode) String() string {
	switch m {
	case Instant:
		return "Instant"
	case Bid:
		return "Bid"
	default:
		return fmt.Sprintf("TradeMode(%d)", int(m))
	}
}

// ParseTradeMode parses a mode name case-insensitively.
func ParseTradeMode(name string) (TradeMode, error) {
	switch strings.ToLower(name) {
	case "instant":
		return Instant, nil
	case "bid":
		return Bid, nil
	default:
		return 0, fmt.Errorf("%w: trade mode %q", ErrUnknownType, name)
	}
}
