package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/oddscope/oddscope/internal/server"
	"github.com/oddscope/oddscope/internal/server/handler"
	"github.com/oddscope/oddscope/internal/snapshot"
)

// QueryMode aggregates odds and sentiment for a single topic and prints the
// resulting signal record as indented JSON on stdout.
func (a *App) QueryMode(ctx context.Context, deps *Dependencies) error {
	topic := a.opts.Topic
	if topic == "" {
		return fmt.Errorf("query mode: no topic given (use -topic)")
	}

	sig, err := deps.Aggregator.Aggregate(ctx, topic)
	if err != nil {
		return fmt.Errorf("query mode: %w", err)
	}

	return printJSON(sig)
}

// ScanMode runs one arbitrage sweep over the configured watchlist and prints
// the opportunities found.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	topics := a.cfg.Watchlist.Topics
	a.logger.InfoContext(ctx, "starting watchlist scan", slog.Int("topics", len(topics)))

	opportunities, err := deps.Scanner.Scan(ctx, topics)
	if err != nil {
		return fmt.Errorf("scan mode: %w", err)
	}

	a.logger.InfoContext(ctx, "scan complete", slog.Int("opportunities", len(opportunities)))
	return printJSON(map[string]any{
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"topics":        topics,
		"opportunities": opportunities,
	})
}

// WatchMode repeatedly sweeps the watchlist on the configured interval and
// pushes every opportunity to the notification channels. It blocks until the
// context is cancelled.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	interval := a.cfg.Watchlist.Interval.Duration
	a.logger.InfoContext(ctx, "starting watch mode",
		slog.Int("topics", len(a.cfg.Watchlist.Topics)),
		slog.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		opportunities, err := deps.Scanner.Scan(ctx, a.cfg.Watchlist.Topics)
		if err != nil {
			return fmt.Errorf("watch mode: %w", err)
		}

		for _, opp := range opportunities {
			if !deps.Notifier.Enabled() {
				a.logger.InfoContext(ctx, "arbitrage opportunity (no notifier configured)",
					slog.String("topic", opp.Topic),
					slog.Float64("spread", opp.Spread),
				)
				continue
			}
			if err := deps.Notifier.ArbAlert(ctx, opp); err != nil {
				a.logger.WarnContext(ctx, "alert delivery failed", slog.String("error", err.Error()))
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SnapshotMode sweeps active markets across every platform, writes the report
// to the configured output file, and prints it.
func (a *App) SnapshotMode(ctx context.Context, deps *Dependencies) error {
	opts := snapshot.Options{
		MinLiquidity: a.cfg.Snapshot.MinLiquidity,
		PerSource:    a.cfg.Snapshot.PerSource,
		TopN:         a.cfg.Snapshot.TopN,
	}

	report, err := deps.Snapshot.Build(ctx, opts)
	if err != nil {
		return fmt.Errorf("snapshot mode: %w", err)
	}

	outFile := a.cfg.Snapshot.OutFile
	if a.opts.OutFile != "" {
		outFile = a.opts.OutFile
	}
	if outFile != "" {
		if err := snapshot.WriteFile(report, outFile); err != nil {
			return fmt.Errorf("snapshot mode: %w", err)
		}
		a.logger.InfoContext(ctx, "snapshot written",
			slog.String("path", outFile),
			slog.Int("markets", report.Count),
		)
	}

	return printJSON(report)
}

// ServeMode starts the read-only HTTP API and blocks until the context is
// cancelled, then shuts the server down gracefully.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	logger := slog.Default()

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		server.Handlers{
			Health: handler.NewHealthHandler(logger),
			Signal: handler.NewSignalHandler(deps.Aggregator, logger),
			Arb:    handler.NewArbHandler(deps.Scanner, a.cfg.Watchlist.Topics, logger),
			Markets: handler.NewMarketsHandler(deps.Snapshot, snapshot.Options{
				MinLiquidity: a.cfg.Snapshot.MinLiquidity,
				PerSource:    a.cfg.Snapshot.PerSource,
				TopN:         a.cfg.Snapshot.TopN,
			}, logger),
		},
		logger,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
