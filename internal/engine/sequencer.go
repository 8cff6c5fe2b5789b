package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"order_matching/internal/domain"
	"order_matching/internal/event"
	"order_matching/internal/infra"
)

const defaultDumpFile = "panic_dump.json"

// Sequencer is the core single-threaded event processor.
// It is the only writer of the book: every admission goes through Inbox.
type Sequencer struct {
	inbox   chan event.Event
	done    chan struct{}
	book    *OrderBook
	ledger  *domain.Ledger
	nextSeq uint64
	ended   bool

	metrics  *infra.Metrics
	sinks    []domain.ExecutionSink
	observer domain.SnapshotObserver

	dumpFile string
}

// NewSequencer creates a new sequencer that owns book.
// metrics may be nil; observer may be nil.
func NewSequencer(inboxSize int, book *OrderBook, metrics *infra.Metrics, observer domain.SnapshotObserver, sinks ...domain.ExecutionSink) *Sequencer {
	return &Sequencer{
		inbox:    make(chan event.Event, inboxSize),
		done:     make(chan struct{}),
		book:     book,
		ledger:   domain.NewLedger(),
		nextSeq:  1,
		metrics:  metrics,
		sinks:    sinks,
		observer: observer,
		dumpFile: defaultDumpFile,
	}
}

// SetDumpFile overrides where the post-mortem state dump is written.
func (s *Sequencer) SetDumpFile(path string) {
	s.dumpFile = path
}

// Inbox returns the event channel. The session driver sends events here.
func (s *Sequencer) Inbox() chan<- event.Event {
	return s.inbox
}

// Done is closed when Run returns.
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

// Run starts the main event loop. This MUST be run in a single goroutine.
// It returns after the end-of-session event or when ctx is cancelled.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("Sequencer started", slog.Uint64("next_seq", s.nextSeq))

	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			s.DumpState(s.dumpFile)
			// Halt after dump.
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sequencer stopping...", slog.Any("reason", ctx.Err()))
			return
		case ev := <-s.inbox:
			ended := s.Apply(ev)
			if oe, ok := ev.(*event.OrderEvent); ok {
				event.ReleaseOrderEvent(oe)
			}
			if ended {
				slog.Info("Sequencer finished session", slog.Uint64("last_seq", s.nextSeq-1))
				return
			}
		}
	}
}

// Apply processes one event synchronously and reports whether the session
// has ended. Callers must not use Apply concurrently with Run.
func (s *Sequencer) Apply(ev event.Event) bool {
	if s.ended {
		panic(fmt.Sprintf("EVENT_AFTER_END_OF_SESSION: seq %d", ev.GetSeq()))
	}

	// Sequence Gap Check (Halt Policy)
	if ev.GetSeq() != s.nextSeq {
		panic(fmt.Sprintf("SEQUENCE_GAP_DETECTED: expected %d, got %d", s.nextSeq, ev.GetSeq()))
	}

	switch e := ev.(type) {
	case *event.OrderEvent:
		s.handleOrder(e)
	case *event.EndOfSessionEvent:
		s.handleEndOfSession()
	default:
		panic(fmt.Sprintf("UNKNOWN_EVENT_TYPE: %s", ev.GetType()))
	}

	s.nextSeq++
	return s.ended
}

func (s *Sequencer) handleOrder(e *event.OrderEvent) {
	start := time.Now()

	o := domain.NewOrder(e.OrderID, e.Side, e.Price, e.Quantity, e.Seq)
	s.ledger.Get(o.Side).Admit(o.Quantity(), e.Seq)
	s.book.Admit(o)
	s.publish(domain.StageAdmitted)

	trades := s.book.Match()
	for _, tr := range trades {
		s.ledger.RecordTrade(tr)
		for _, sink := range s.sinks {
			sink.OnTrade(tr)
		}
	}
	s.publish(domain.StageMatched)

	if s.metrics != nil {
		s.metrics.RecordAdmission(time.Since(start).Nanoseconds())
		// Two events per trade, one per side.
		for i := 0; i < len(trades); i += 2 {
			s.metrics.RecordTrade(trades[i].Quantity)
		}
	}

	if len(trades) > 0 {
		slog.Debug("Order matched",
			slog.String("order_id", o.ID),
			slog.Uint64("seq", o.Sequence),
			slog.Int("trades", len(trades)/2),
			slog.String("last_trade_price", domain.FormatPrice(s.book.LastTradePrice())))
	}
}

func (s *Sequencer) handleEndOfSession() {
	for _, ev := range s.book.Liquidate() {
		s.ledger.RecordUnexecuted(ev)
		for _, sink := range s.sinks {
			sink.OnUnexecuted(ev)
		}
		if s.metrics != nil {
			s.metrics.RecordUnexecuted(ev.Quantity)
		}
	}

	s.ledger.VerifyAll(s.book.Resting(domain.SideBuy), s.book.Resting(domain.SideSell))
	s.ended = true
}

func (s *Sequencer) publish(stage domain.SnapshotStage) {
	if s.observer != nil {
		s.observer(stage, s.book.Snapshot())
	}
}

// Ledger returns a copy of the quantity ledger.
// Only call it after Done is closed, or from the goroutine that calls Apply.
func (s *Sequencer) Ledger() domain.Ledger {
	return s.ledger.Snapshot()
}

// Book returns the owned book. The same single-writer rule as Ledger applies.
func (s *Sequencer) Book() *OrderBook {
	return s.book
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (s *Sequencer) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		NextSeq uint64              `json:"next_seq"`
		Ended   bool                `json:"ended"`
		Book    domain.BookSnapshot `json:"book"`
		Ledger  domain.Ledger       `json:"ledger"`
	}{
		NextSeq: s.nextSeq,
		Ended:   s.ended,
		Book:    s.book.Snapshot(),
		Ledger:  s.ledger.Snapshot(),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	err = os.WriteFile(filename, b, 0644)
	if err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
