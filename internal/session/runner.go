package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"order_matching/internal/domain"
	"order_matching/internal/engine"
	"order_matching/internal/event"
	"order_matching/internal/infra"
	"order_matching/internal/report"
)

// Options controls one session run.
type Options struct {
	Input     string // Session file path
	Output    string // Trade log path
	Strict    bool   // Abort on the first malformed record
	InboxSize int
	Snapshots bool   // Render the book before and after every match
	DumpFile  string // Post-mortem state dump path; empty keeps the sequencer default
}

// Archive receives a session's executions and stores them with the
// finished session row.
type Archive interface {
	domain.ExecutionSink
	Commit(rec domain.SessionRecord) error
}

// ArchiveFunc opens an archive for a new session id.
type ArchiveFunc func(sessionID string) Archive

// Summary reports the outcome of a session.
type Summary struct {
	SessionID        string
	Orders           int
	Rejected         int
	Trades           int
	TradedShares     int64
	UnexecutedShares int64
	LastTradePrice   decimal.Decimal
}

// Runner is the session driver: it parses the input, feeds the sequencer
// and writes the trade log.
type Runner struct {
	opts    Options
	stdout  io.Writer
	metrics *infra.Metrics
	archive ArchiveFunc
}

// NewRunner creates a runner. stdout receives book snapshots and the final
// trade log; metrics may be nil.
func NewRunner(opts Options, stdout io.Writer, metrics *infra.Metrics) *Runner {
	if opts.InboxSize <= 0 {
		opts.InboxSize = 1024
	}
	return &Runner{opts: opts, stdout: stdout, metrics: metrics}
}

// SetArchive enables archiving of every run.
func (r *Runner) SetArchive(fn ArchiveFunc) {
	r.archive = fn
}

// Run processes the whole session. The returned Summary is partially filled
// when an error aborts the run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{SessionID: uuid.NewString()}
	started := time.Now()

	f, err := os.Open(r.opts.Input)
	if err != nil {
		return summary, fmt.Errorf("%w %s: %v", domain.ErrSessionNotFound, r.opts.Input, err)
	}
	defer f.Close()

	reader, err := NewReader(f)
	if err != nil {
		return summary, fmt.Errorf("failed to read session header: %w", err)
	}
	summary.LastTradePrice = reader.ReferencePrice()

	slog.Info("Session started",
		slog.String("session_id", summary.SessionID),
		slog.String("input", r.opts.Input),
		slog.String("reference_price", domain.FormatPrice(reader.ReferencePrice())))

	tradeLog := report.NewTradeLog()
	sinks := []domain.ExecutionSink{tradeLog}
	var archive Archive
	if r.archive != nil {
		archive = r.archive(summary.SessionID)
		sinks = append(sinks, archive)
	}

	var observer domain.SnapshotObserver
	if r.opts.Snapshots {
		observer = report.NewDisplay(r.stdout).Observe
	}

	book := engine.NewOrderBook(reader.ReferencePrice())
	seq := engine.NewSequencer(r.opts.InboxSize, book, r.metrics, observer, sinks...)
	if r.opts.DumpFile != "" {
		seq.SetDumpFile(r.opts.DumpFile)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go seq.Run(runCtx)

	abort := func(err error) (Summary, error) {
		cancel()
		<-seq.Done()
		return summary, err
	}

	nextSeq := uint64(1)
	seen := make(map[string]int)
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err == nil {
			if first, dup := seen[rec.ID]; dup {
				err = &domain.RecordError{
					Line:  rec.Line,
					Field: "id",
					Err:   fmt.Errorf("%w: %q first seen on line %d", domain.ErrDuplicateOrderID, rec.ID, first),
				}
			}
		}
		if err != nil {
			if isFatal(err) {
				return abort(err)
			}
			summary.Rejected++
			if r.metrics != nil {
				r.metrics.RecordRejected()
			}
			if r.opts.Strict {
				return abort(err)
			}
			slog.Warn("Skipping malformed record", slog.Any("error", err))
			continue
		}
		seen[rec.ID] = rec.Line

		ev := event.AcquireOrderEvent()
		ev.Seq = nextSeq
		ev.Ts = time.Now().UnixMicro()
		ev.OrderID = rec.ID
		ev.Side = rec.Side
		ev.Price = rec.Price
		ev.Quantity = rec.Quantity
		ev.Line = rec.Line

		select {
		case seq.Inbox() <- ev:
		case <-ctx.Done():
			event.ReleaseOrderEvent(ev)
			return abort(ctx.Err())
		}
		nextSeq++
		summary.Orders++
	}

	select {
	case seq.Inbox() <- &event.EndOfSessionEvent{BaseEvent: event.BaseEvent{Seq: nextSeq, Ts: time.Now().UnixMicro()}}:
	case <-ctx.Done():
		return abort(ctx.Err())
	}
	<-seq.Done()
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	ledger := seq.Ledger()
	summary.Trades = tradeLog.Trades()
	summary.TradedShares = ledger.Buy.TradedQty
	summary.UnexecutedShares = ledger.Buy.UnexecutedQty + ledger.Sell.UnexecutedQty
	summary.LastTradePrice = book.LastTradePrice()

	if err := tradeLog.Save(r.opts.Output); err != nil {
		return summary, err
	}
	if _, err := tradeLog.WriteTo(r.stdout); err != nil {
		return summary, fmt.Errorf("failed to echo trade log: %w", err)
	}

	if archive != nil {
		err := archive.Commit(domain.SessionRecord{
			ID:             summary.SessionID,
			Input:          r.opts.Input,
			ReferencePrice: reader.ReferencePrice(),
			LastTradePrice: summary.LastTradePrice,
			Orders:         int64(summary.Orders),
			Trades:         int64(summary.Trades),
			Unexecuted:     summary.UnexecutedShares,
			StartedAt:      started,
			FinishedAt:     time.Now(),
		})
		if err != nil {
			return summary, fmt.Errorf("failed to archive session: %w", err)
		}
	}

	slog.Info("Session finished",
		slog.String("session_id", summary.SessionID),
		slog.Int("orders", summary.Orders),
		slog.Int("rejected", summary.Rejected),
		slog.Int("trades", summary.Trades),
		slog.Int64("traded_shares", summary.TradedShares),
		slog.Int64("unexecuted_shares", summary.UnexecutedShares),
		slog.String("last_trade_price", domain.FormatPrice(summary.LastTradePrice)),
		slog.String("output", r.opts.Output))

	return summary, nil
}
