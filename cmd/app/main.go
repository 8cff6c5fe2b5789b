package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"order_matching/internal/app"
	"order_matching/internal/infra"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("matcher", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", infra.ConfigPath(), "config file (env MATCHER_CONFIG)")
	input := flags.StringP("input", "i", "", "session input file (overrides session.input)")
	output := flags.StringP("output", "o", "", "trade log output file (overrides session.output)")
	strict := flags.Bool("strict", false, "abort on the first malformed record")
	snapshots := flags.Bool("snapshots", false, "print the book before and after every match")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: matcher [flags] [input [output]]\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	// Positional arguments win over the config file, flags over both.
	var opts []app.Option
	if flags.NArg() > 0 {
		opts = append(opts, app.WithInput(flags.Arg(0)))
	}
	if flags.NArg() > 1 {
		opts = append(opts, app.WithOutput(flags.Arg(1)))
	}
	if *input != "" {
		opts = append(opts, app.WithInput(*input))
	}
	if *output != "" {
		opts = append(opts, app.WithOutput(*output))
	}
	if flags.Changed("strict") {
		opts = append(opts, app.WithStrict(*strict))
	}
	if flags.Changed("snapshots") {
		opts = append(opts, app.WithSnapshots(*snapshots))
	}

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath, opts...); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := bootstrap.Close(); err != nil {
			slog.Error("Failed to close journal", slog.Any("error", err))
		}
	}()

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Run the session
	summary, err := bootstrap.Run(ctx)
	if err != nil {
		slog.Error("❌ Session failed", slog.String("session_id", summary.SessionID), slog.Any("error", err))
		return 1
	}

	slog.InfoContext(ctx, "👋 Done", slog.String("session_id", summary.SessionID))
	return 0
}
