package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"order_matching/internal/domain"
	"order_matching/pkg/safe"
)

// OrderBook holds the bid and ask pools of a single instrument and the
// running last-trade price. It is not safe for concurrent use; the
// Sequencer is its only writer.
type OrderBook struct {
	bids *Pool
	asks *Pool

	lastTradePrice decimal.Decimal
}

// NewOrderBook creates an empty book seeded with the session reference price.
func NewOrderBook(referencePrice decimal.Decimal) *OrderBook {
	return &OrderBook{
		bids:           NewPool(domain.SideBuy),
		asks:           NewPool(domain.SideSell),
		lastTradePrice: referencePrice,
	}
}

func (b *OrderBook) pool(side domain.Side) *Pool {
	if side == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

// Admit rests o in its side's pool. Input is assumed validated; a
// non-positive quantity halts.
func (b *OrderBook) Admit(o *domain.Order) {
	if o.Quantity() <= 0 {
		panic(fmt.Sprintf("BOOK_ADMIT_NON_POSITIVE: %s", o))
	}
	b.pool(o.Side).Insert(o)
}

// Match pairs the best bid with the best ask while they cross and returns
// two events per trade, buy side first. Calling it on an uncrossed book is
// a no-op.
func (b *OrderBook) Match() []domain.TradeEvent {
	var events []domain.TradeEvent

	for {
		bid, ok := b.bids.Best()
		if !ok {
			break
		}
		ask, ok := b.asks.Best()
		if !ok {
			break
		}
		if !crosses(bid, ask) {
			break
		}

		qty := safe.Min(bid.Quantity(), ask.Quantity())
		price := b.tradePrice(bid, ask)
		// The incoming order carries the larger sequence.
		seq := max(bid.Sequence, ask.Sequence)

		bid.Reduce(qty)
		ask.Reduce(qty)
		b.lastTradePrice = price

		events = append(events,
			domain.TradeEvent{OrderID: bid.ID, Side: domain.SideBuy, Quantity: qty, Price: price, Sequence: seq},
			domain.TradeEvent{OrderID: ask.ID, Side: domain.SideSell, Quantity: qty, Price: price, Sequence: seq},
		)

		if bid.IsFilled() {
			b.bids.PopBest()
		}
		if ask.IsFilled() {
			b.asks.PopBest()
		}
	}

	return events
}

// crosses reports whether bid and ask can trade.
func crosses(bid, ask *domain.Order) bool {
	bp, bidLimit := bid.Price.Value()
	ap, askLimit := ask.Price.Value()
	if !bidLimit || !askLimit {
		return true
	}
	return bp.GreaterThanOrEqual(ap)
}

// tradePrice picks the execution price for a crossing pair.
func (b *OrderBook) tradePrice(bid, ask *domain.Order) decimal.Decimal {
	bp, bidLimit := bid.Price.Value()
	ap, askLimit := ask.Price.Value()

	switch {
	case !bidLimit && !askLimit:
		return b.lastTradePrice
	case !bidLimit:
		return ap
	case !askLimit:
		return bp
	case bid.Sequence < ask.Sequence:
		// Both limit: the order already in the book sets the price.
		return bp
	default:
		return ap
	}
}

// Liquidate drains both pools, bids then asks, best-first, and reports every
// remaining order as unexecuted. The book is empty afterwards.
func (b *OrderBook) Liquidate() []domain.UnexecutedEvent {
	events := make([]domain.UnexecutedEvent, 0, b.bids.Len()+b.asks.Len())
	for _, p := range []*Pool{b.bids, b.asks} {
		for {
			o, ok := p.PopBest()
			if !ok {
				break
			}
			events = append(events, domain.UnexecutedEvent{
				OrderID:  o.ID,
				Side:     o.Side,
				Quantity: o.Quantity(),
			})
		}
	}
	return events
}

// LastTradePrice returns the price of the most recent trade, or the
// reference price if nothing has traded yet.
func (b *OrderBook) LastTradePrice() decimal.Decimal {
	return b.lastTradePrice
}

// Resting returns the total quantity resting on side.
func (b *OrderBook) Resting(side domain.Side) int64 {
	return b.pool(side).Quantity()
}

// Len returns the number of orders resting on side.
func (b *OrderBook) Len(side domain.Side) int {
	return b.pool(side).Len()
}

// Snapshot copies both pools best-first. The book is not modified.
func (b *OrderBook) Snapshot() domain.BookSnapshot {
	return domain.BookSnapshot{
		LastTradePrice: b.lastTradePrice,
		Bids:           restingOrders(b.bids),
		Asks:           restingOrders(b.asks),
	}
}

func restingOrders(p *Pool) []domain.RestingOrder {
	out := make([]domain.RestingOrder, 0, p.Len())
	p.Ascend(func(o *domain.Order) bool {
		out = append(out, domain.RestingOrder{
			ID:       o.ID,
			Price:    o.Price,
			Quantity: o.Quantity(),
			Sequence: o.Sequence,
		})
		return true
	})
	return out
}
