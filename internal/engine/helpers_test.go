package engine

import (
	"github.com/shopspring/decimal"

	"order_matching/internal/domain"
)

// order builds a test order; an empty price means Market.
func order(id string, side domain.Side, qty int64, price string, seq uint64) *domain.Order {
	p := domain.MarketPrice()
	if price != "" {
		p = domain.LimitPrice(decimal.RequireFromString(price))
	}
	return domain.NewOrder(id, side, p, qty, seq)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// trade is a compact expectation for a TradeEvent.
type trade struct {
	id    string
	side  domain.Side
	qty   int64
	price string
}

func flatten(events []domain.TradeEvent) []trade {
	out := make([]trade, 0, len(events))
	for _, ev := range events {
		out = append(out, trade{id: ev.OrderID, side: ev.Side, qty: ev.Quantity, price: domain.FormatPrice(ev.Price)})
	}
	return out
}
