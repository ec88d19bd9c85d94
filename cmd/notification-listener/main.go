// Command notification-listener accepts push-notification webhooks and
// enqueues them into the job store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	urfavecli "github.com/urfave/cli/v3"

	"github.com/kyledewey/gradr/internal/config"
	"github.com/kyledewey/gradr/internal/logger"
	"github.com/kyledewey/gradr/internal/notification"
	"github.com/kyledewey/gradr/internal/store"
)

const version = "1.0.0"

func main() {
	app := &urfavecli.Command{
		Name:    "notification-listener",
		Usage:   "accepts push-notification webhooks and enqueues them as build jobs",
		Version: version,
		Action:  run,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{Name: "listen-addr", Usage: "bind address:port for the webhook server"},
			&urfavecli.StringFlag{Name: "connection", Aliases: []string{"c"}, Usage: "PostgreSQL connection string"},
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
	config.ApplyFlagsToConfig(cfg, "", 0, "", "", "", cmd.String("listen-addr"), "",
		0, cmd.Bool("verbose"))
	logger.SetVerbose(cfg.Verbose)

	connString := cmd.String("connection")
	if connString == "" {
		connString = cfg.ConnectionString()
	}

	s, err := store.NewPostgresStore(ctx, connString)
	if err != nil {
		return fmt.Errorf("notification-listener: failed to connect to store: %w", err)
	}
	defer s.Close()

	src := notification.NewHTTPSource(cfg.ListenAddr, 128)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Infof("notification-listener: serving on %s", cfg.ListenAddr)
		if err := src.ListenAndServe(); err != nil {
			logger.Errorf("notification-listener: server exited: %v", err)
		}
	}()

	for {
		processed, err := src.Step(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				logger.Infof("notification-listener: shutting down")
				return src.Close(context.Background())
			}
			logger.Errorf("notification-listener: step failed: %v", err)
			continue
		}
		if !processed {
			logger.Infof("notification-listener: source exhausted, shutting down")
			return src.Close(context.Background())
		}
	}
}
