package domain

import "fmt"

// Side is the two-variant order side.
type Side uint8

const (
	SideBuy Side = iota + 1
	SideSell
)

// ParseSide maps the session-file side character to a Side.
func ParseSide(c byte) (Side, error) {
	switch c {
	case 'B':
		return SideBuy, nil
	case 'S':
		return SideSell, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidSide, c)
	}
}

// String returns the string representation of Side
func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the side by name, so dumps and logs stay readable.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Opposite returns the side an order of this side trades against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Order is a single resting or incoming order.
// Identity, side, price and sequence never change after construction;
// only the order book reduces the remaining quantity through Reduce.
type Order struct {
	ID       string
	Side     Side
	Price    Price
	Sequence uint64 // Arrival index assigned by the driver. Sole source of time priority.

	quantity int64
}

// NewOrder creates an order. The caller is responsible for a positive quantity;
// the book halts on admission otherwise.
func NewOrder(id string, side Side, price Price, quantity int64, sequence uint64) *Order {
	return &Order{
		ID:       id,
		Side:     side,
		Price:    price,
		Sequence: sequence,
		quantity: quantity,
	}
}

// Quantity returns the remaining quantity.
func (o *Order) Quantity() int64 {
	return o.quantity
}

// IsFilled checks if nothing remains to execute.
func (o *Order) IsFilled() bool {
	return o.quantity == 0
}

// Reduce removes executed quantity. Panics if qty is not in (0, Quantity()].
func (o *Order) Reduce(qty int64) {
	if qty <= 0 || qty > o.quantity {
		panic(fmt.Sprintf("ORDER_REDUCE_OUT_OF_RANGE: %s reduce %d, remaining %d",
			o.ID, qty, o.quantity))
	}
	o.quantity -= qty
}

// String is used by the state dump and debug logs.
func (o *Order) String() string {
	return fmt.Sprintf("%s %s %s %d #%d", o.ID, o.Side, o.Price, o.quantity, o.Sequence)
}
