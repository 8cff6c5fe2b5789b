package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"order_matching/internal/infra"
	"order_matching/internal/infra/storage"
	"order_matching/internal/session"
)

// Option adjusts the loaded configuration before validation (CLI flags).
type Option func(cfg *infra.Config)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Journal *storage.Journal
	Runner  *session.Runner
	Metrics *infra.Metrics
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{Metrics: infra.GlobalMetrics}
}

// Initialize performs core system initialization (config, logger, journal, runner).
func (b *Bootstrap) Initialize(configPath string, opts ...Option) error {
	slog.Info("🚀 Bootstrapping order matcher...", slog.String("config", configPath))

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if len(opts) > 0 {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Journal (DB)
	if cfg.Journal.Enabled {
		journal, err := storage.NewJournal(cfg.Journal.Path)
		if err != nil {
			return err
		}
		b.Journal = journal
		slog.Info("✅ Journal initialized", slog.String("path", cfg.Journal.Path))
	}

	// 4. Session Runner
	b.Runner = session.NewRunner(session.Options{
		Input:     cfg.Session.Input,
		Output:    cfg.Session.Output,
		Strict:    cfg.Session.Strict,
		InboxSize: cfg.Session.InboxSize,
		Snapshots: cfg.Display.Snapshots,
		DumpFile:  cfg.Session.DumpFile,
	}, os.Stdout, b.Metrics)
	if b.Journal != nil {
		journal := b.Journal
		b.Runner.SetArchive(func(sessionID string) session.Archive {
			return journal.Begin(sessionID)
		})
	}
	slog.Info("✅ Session runner ready",
		slog.String("input", cfg.Session.Input),
		slog.String("output", cfg.Session.Output),
		slog.Bool("strict", cfg.Session.Strict))

	return nil
}

// Run executes the configured session and logs the metrics snapshot.
func (b *Bootstrap) Run(ctx context.Context) (session.Summary, error) {
	summary, err := b.Runner.Run(ctx)
	snap := b.Metrics.Snapshot()
	slog.Info("📊 Metrics",
		slog.Uint64("orders_admitted", snap.OrdersAdmitted),
		slog.Uint64("trades_executed", snap.TradesExecuted),
		slog.Int64("shares_traded", snap.SharesTraded),
		slog.Int64("shares_unexecuted", snap.SharesUnexecuted),
		slog.Uint64("records_rejected", snap.RecordsRejected),
		slog.Int64("avg_match_latency_ns", snap.AvgLatencyNs))
	return summary, err
}

// Close releases the journal, if any.
func (b *Bootstrap) Close() error {
	if b.Journal == nil {
		return nil
	}
	return b.Journal.Close()
}

// WithInput overrides session.input.
func WithInput(path string) Option {
	return func(cfg *infra.Config) { cfg.Session.Input = path }
}

// WithOutput overrides session.output.
func WithOutput(path string) Option {
	return func(cfg *infra.Config) { cfg.Session.Output = path }
}

// WithStrict overrides session.strict.
func WithStrict(strict bool) Option {
	return func(cfg *infra.Config) { cfg.Session.Strict = strict }
}

// WithSnapshots overrides display.snapshots.
func WithSnapshots(on bool) Option {
	return func(cfg *infra.Config) { cfg.Display.Snapshots = on }
}
