package domain

import "github.com/shopspring/decimal"

// TradeEvent reports one side of an executed trade.
type TradeEvent struct {
	OrderID  string          `json:"order_id"`
	Side     Side            `json:"side"`
	Quantity int64           `json:"qty"`
	Price    decimal.Decimal `json:"price"`
	Sequence uint64          `json:"seq"` // Sequence of the admission that triggered the trade
}

// UnexecutedEvent reports quantity still resting when the session ends.
type UnexecutedEvent struct {
	OrderID  string `json:"order_id"`
	Side     Side   `json:"side"`
	Quantity int64  `json:"qty"`
}
