// Command worker runs the claim-build-record loop against a shared
// job store. Any number of worker processes may run concurrently
// against the same database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	urfavecli "github.com/urfave/cli/v3"

	"github.com/kyledewey/gradr/internal/config"
	"github.com/kyledewey/gradr/internal/logger"
	"github.com/kyledewey/gradr/internal/pipeline"
	"github.com/kyledewey/gradr/internal/store"
	"github.com/kyledewey/gradr/internal/worker"
)

const version = "1.0.0"

func main() {
	app := &urfavecli.Command{
		Name:    "worker",
		Usage:   "claims pending builds, runs their pipeline, and records results",
		Version: version,
		Action:  run,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{Name: "connection", Aliases: []string{"c"}, Usage: "PostgreSQL connection string"},
			&urfavecli.StringFlag{Name: "build-root", Usage: "directory worker pipelines clone projects into"},
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
	config.ApplyFlagsToConfig(cfg, "", 0, "", "", "", "", cmd.String("build-root"),
		0, cmd.Bool("verbose"))
	logger.SetVerbose(cfg.Verbose)

	connString := cmd.String("connection")
	if connString == "" {
		connString = cfg.ConnectionString()
	}

	s, err := store.NewPostgresStore(ctx, connString)
	if err != nil {
		return fmt.Errorf("worker: failed to connect to store: %w", err)
	}
	defer s.Close()

	if err := os.MkdirAll(cfg.BuildRoot, 0o755); err != nil {
		return fmt.Errorf("worker: failed to create build root %q: %w", cfg.BuildRoot, err)
	}

	loop := worker.NewLoop(s, func(pb *store.PendingBuild) worker.Buildable {
		return &pipeline.GitCheckoutPipeline{
			CloneURL:     pb.CloneURL,
			Branch:       pb.Branch,
			BuildRoot:    cfg.BuildRoot,
			MakefilePath: os.Getenv("GRADR_MAKEFILE"),
		}
	})

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		logger.Infof("worker: shutting down after the current step")
		loop.Stop()
	}()

	logger.Infof("worker: starting with run id %s", uuid.NewString())
	loop.Run(ctx)
	return nil
}
