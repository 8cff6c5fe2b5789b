package event

import "order_matching/internal/domain"

// Type identifies an inbound sequencer event.
type Type string

const (
	TypeOrder        Type = "ORDER"
	TypeEndOfSession Type = "END_OF_SESSION"
)

// Event is anything the sequencer consumes. Seq must be strictly consecutive.
type Event interface {
	GetSeq() uint64
	GetType() Type
}

// BaseEvent carries the sequence number and the wall-clock receive time (unix micros).
type BaseEvent struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"`
}

func (e *BaseEvent) GetSeq() uint64 { return e.Seq }

// OrderEvent admits one parsed order record.
// Seq doubles as the order's arrival sequence.
type OrderEvent struct {
	BaseEvent
	OrderID  string       `json:"order_id"`
	Side     domain.Side  `json:"side"`
	Price    domain.Price `json:"price"`
	Quantity int64        `json:"qty"`
	Line     int          `json:"line"` // Source line, for diagnostics
}

func (e *OrderEvent) GetType() Type { return TypeOrder }

// EndOfSessionEvent marks input exhaustion; the sequencer liquidates and stops.
type EndOfSessionEvent struct {
	BaseEvent
}

func (e *EndOfSessionEvent) GetType() Type { return TypeEndOfSession }
