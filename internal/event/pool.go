package event

import (
	"sync"
)

// orderEventPool provides sync.Pool for high-frequency event allocation.
// Use this to reduce GC pressure in the hotpath.
//
// Usage:
//
//	ev := AcquireOrderEvent()
//	ev.OrderID = "A1"
//	// ... send to the sequencer ...
//	ReleaseOrderEvent(ev)  // The sequencer releases after processing
var orderEventPool = sync.Pool{
	New: func() interface{} {
		return &OrderEvent{}
	},
}

// AcquireOrderEvent gets an OrderEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireOrderEvent() *OrderEvent {
	return orderEventPool.Get().(*OrderEvent)
}

// ReleaseOrderEvent returns an OrderEvent to the pool.
// The event is reset to zero values before being pooled.
func ReleaseOrderEvent(ev *OrderEvent) {
	if ev == nil {
		return
	}
	*ev = OrderEvent{}
	orderEventPool.Put(ev)
}

// Warmup pre-allocates event objects to reduce GC pressure at startup.
func Warmup(batchSize int) {
	evs := make([]*OrderEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		evs = append(evs, AcquireOrderEvent())
	}
	for _, ev := range evs {
		ReleaseOrderEvent(ev)
	}
}
