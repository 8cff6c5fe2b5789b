package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ordersAdmitted   atomic.Uint64
	tradesExecuted   atomic.Uint64
	sharesTraded     atomic.Int64
	sharesUnexecuted atomic.Int64
	recordsRejected  atomic.Uint64

	// Latency tracking (admit + match)
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordAdmission records one admitted order with its admit+match latency.
func (m *Metrics) RecordAdmission(latencyNs int64) {
	m.ordersAdmitted.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordTrade records one executed trade of qty shares.
func (m *Metrics) RecordTrade(qty int64) {
	m.tradesExecuted.Add(1)
	m.sharesTraded.Add(qty)
}

// RecordUnexecuted records quantity reported at liquidation.
func (m *Metrics) RecordUnexecuted(qty int64) {
	m.sharesUnexecuted.Add(qty)
}

// RecordRejected records a malformed input record.
func (m *Metrics) RecordRejected() {
	m.recordsRejected.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersAdmitted   uint64    `json:"orders_admitted"`
	TradesExecuted   uint64    `json:"trades_executed"`
	SharesTraded     int64     `json:"shares_traded"`
	SharesUnexecuted int64     `json:"shares_unexecuted"`
	RecordsRejected  uint64    `json:"records_rejected"`
	AvgLatencyNs     int64     `json:"avg_latency_ns"`
	Timestamp        time.Time `json:"timestamp"`
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		OrdersAdmitted:   m.ordersAdmitted.Load(),
		TradesExecuted:   m.tradesExecuted.Load(),
		SharesTraded:     m.sharesTraded.Load(),
		SharesUnexecuted: m.sharesUnexecuted.Load(),
		RecordsRejected:  m.recordsRejected.Load(),
		AvgLatencyNs:     avgLatency,
		Timestamp:        time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ordersAdmitted.Store(0)
	m.tradesExecuted.Store(0)
	m.sharesTraded.Store(0)
	m.sharesUnexecuted.Store(0)
	m.recordsRejected.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
}
