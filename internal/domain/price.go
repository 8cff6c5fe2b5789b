package domain

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Price is either a limit price or the Market marker.
// The zero value is a limit price of 0; use MarketPrice for market orders.
type Price struct {
	value  decimal.Decimal
	market bool
}

// LimitPrice returns a price constraint at v.
func LimitPrice(v decimal.Decimal) Price {
	return Price{value: v}
}

// MarketPrice returns the "no price constraint" marker.
func MarketPrice() Price {
	return Price{market: true}
}

// IsMarket reports whether p carries no price constraint.
func (p Price) IsMarket() bool {
	return p.market
}

// Value returns the limit price. ok is false for market prices, so callers
// cannot do arithmetic on the marker by accident.
func (p Price) Value() (v decimal.Decimal, ok bool) {
	if p.market {
		return decimal.Zero, false
	}
	return p.value, true
}

// Equal reports whether both prices are market, or both are equal limits.
func (p Price) Equal(o Price) bool {
	if p.market || o.market {
		return p.market == o.market
	}
	return p.value.Equal(o.value)
}

// String renders "M" for market and two fractional digits otherwise.
func (p Price) String() string {
	if p.market {
		return "M"
	}
	return FormatPrice(p.value)
}

// MarshalJSON encodes the price as its display string ("M" or "101.00").
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// FormatPrice renders a price with exactly two fractional digits.
func FormatPrice(v decimal.Decimal) string {
	return v.StringFixed(2)
}
