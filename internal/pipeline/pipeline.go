// Package pipeline sequences a build through setup, build, and test
// phases, producing a tagged-union BuildResult that distinguishes
// which phase, if any, failed.
package pipeline

import (
	"context"
	"time"

	"github.com/kyledewey/gradr/internal/procrunner"
	"github.com/kyledewey/gradr/internal/testoutput"
)

// WholeBuildable is anything that can describe its three build phases
// as command sequences plus timeouts. WholeBuild drives any
// implementation through the same setup → build → test sequence.
type WholeBuildable interface {
	EnvTimeout() time.Duration
	EnvCommands() []procrunner.Cmd

	BuildTimeout() time.Duration
	BuildCommands() []procrunner.Cmd

	TestTimeout() time.Duration
	TestCommand() procrunner.Cmd
}

// WholeBuild runs a WholeBuildable's three phases in order, stopping
// at the first failure. It never retries.
func WholeBuild(ctx context.Context, b WholeBuildable) BuildResult {
	if err := procrunner.RunSequence(ctx, b.EnvCommands(), b.EnvTimeout()); err != nil {
		return SetupEnvFailure(err)
	}

	if err := procrunner.RunSequence(ctx, b.BuildCommands(), b.BuildTimeout()); err != nil {
		return BuildFailure(err)
	}

	handle, err := procrunner.SpawnStreaming(ctx, b.TestCommand(), b.TestTimeout())
	if err != nil {
		return TestFailure(err)
	}

	var lines []string
	for line := range handle.Lines {
		lines = append(lines, line)
	}
	if err := handle.Err(); err != nil {
		return TestFailure(err)
	}

	tests, err := testoutput.Aggregate(lines)
	if err != nil {
		return TestFailure(err)
	}

	return TestSuccess(tests)
}
