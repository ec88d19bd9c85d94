// Command queue-depth periodically reports the number of Build rows
// that have not yet reached the Done status. It is an observability
// tool only; it never mutates job state.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/kyledewey/gradr/internal/config"
	"github.com/kyledewey/gradr/internal/logger"
	"github.com/kyledewey/gradr/internal/migrations"
	"github.com/kyledewey/gradr/internal/store"
)

const version = "1.0.0"

func main() {
	app := &urfavecli.Command{
		Name:    "queue-depth",
		Usage:   "polls the job store and logs the count of non-Done builds",
		Version: version,
		Action:  run,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{Name: "connection", Aliases: []string{"c"}, Usage: "PostgreSQL connection string"},
			&urfavecli.IntFlag{Name: "interval", Usage: "poll interval in seconds"},
			&urfavecli.BoolFlag{Name: "migrate", Usage: "bootstrap the schema before polling"},
			&urfavecli.BoolFlag{Name: "verbose", Usage: "enable debug output"},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *urfavecli.Command) error {
	cfg := config.LoadConfig()
	pollInterval := time.Duration(cmd.Int("interval")) * time.Second
	config.ApplyFlagsToConfig(cfg, "", 0, "", "", "", "", "", pollInterval, cmd.Bool("verbose"))
	logger.SetVerbose(cfg.Verbose)

	connString := cmd.String("connection")
	if connString == "" {
		connString = cfg.ConnectionString()
	}

	s, err := store.NewPostgresStore(ctx, connString)
	if err != nil {
		return fmt.Errorf("queue-depth: failed to connect to store: %w", err)
	}
	defer s.Close()

	if cmd.Bool("migrate") {
		if err := migrations.Bootstrap(ctx, s.Pool()); err != nil {
			return fmt.Errorf("queue-depth: %w", err)
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	logger.Infof("queue-depth: polling every %s", cfg.PollInterval)
	for {
		depth, err := s.QueueDepth(ctx)
		if err != nil {
			logger.Errorf("queue-depth: query failed: %v", err)
		} else {
			logger.Infof("queue-depth: %d build(s) not yet done", depth)
		}

		select {
		case <-ctx.Done():
			logger.Infof("queue-depth: shutting down")
			return nil
		case <-ticker.C:
		}
	}
}
