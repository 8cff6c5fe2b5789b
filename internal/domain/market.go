package domain

import "github.com/shopspring/decimal"

// RestingOrder is a read-only copy of an order sitting in a pool.
type RestingOrder struct {
	ID       string `json:"id"`
	Price    Price  `json:"price"`
	Quantity int64  `json:"qty"`
	Sequence uint64 `json:"seq"`
}

// BookSnapshot is a point-in-time view of both pools, best first.
// It shares nothing with the live book.
type BookSnapshot struct {
	LastTradePrice decimal.Decimal `json:"last_trade_price"`
	Bids           []RestingOrder  `json:"bids"`
	Asks           []RestingOrder  `json:"asks"`
}

// Depth returns the number of rows a two-column rendering needs.
func (s BookSnapshot) Depth() int {
	return max(len(s.Bids), len(s.Asks))
}
