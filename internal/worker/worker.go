// Package worker drives the claim → build → record-result cycle
// against a job store. The same Loop can be driven by one worker
// process (production) or by many goroutines sharing one store (tests).
package worker

import (
	"context"
	"sync/atomic"
	"time"

	graderrors "github.com/kyledewey/gradr/internal/errors"
	"github.com/kyledewey/gradr/internal/logger"
	"github.com/kyledewey/gradr/internal/pipeline"
	"github.com/kyledewey/gradr/internal/store"
)

// backoff is how long Step sleeps after finding no Pending build.
const backoff = time.Second

// Closer is implemented by the pipelines a PipelineFactory produces,
// so the loop can release a job's working directory once the build
// finishes, win or lose.
type Closer interface {
	Close() error
}

// Buildable is the minimum a worker needs from a pipeline: something
// WholeBuild can drive, and something the loop can later close.
type Buildable interface {
	pipeline.WholeBuildable
	Closer
}

// PipelineFactory builds the pipeline for a claimed job. Production
// wires this to construct a GitCheckoutPipeline; tests wire it to a
// LocalMakefilePipeline over a fixture directory.
type PipelineFactory func(pb *store.PendingBuild) Buildable

// Loop wraps a Store and a PipelineFactory, executing one
// claim-build-record cycle per Step call.
type Loop struct {
	Store        store.Store
	NewPipeline  PipelineFactory
	shuttingDown atomic.Bool
}

// NewLoop builds a worker Loop over the given store and pipeline
// factory.
func NewLoop(s store.Store, factory PipelineFactory) *Loop {
	return &Loop{Store: s, NewPipeline: factory}
}

// Stop requests that Run return after its current or next Step.
func (l *Loop) Stop() { l.shuttingDown.Store(true) }

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool { return l.shuttingDown.Load() }

// Step runs one iteration: claim a Pending build, run its pipeline,
// record the result, and release the pipeline's working directory. If
// no Pending build is available, it sleeps for the fixed backoff. Step
// never returns a build-phase error — those are captured in the
// recorded BuildResult — but it does return store errors, which the
// caller should log and continue past.
func (l *Loop) Step(ctx context.Context) error {
	pb, err := l.Store.ClaimPending(ctx)
	if err != nil {
		return graderrors.NewDatabaseError("worker.Step: claim", err)
	}
	if pb == nil {
		time.Sleep(backoff)
		return nil
	}

	p := l.NewPipeline(pb)
	defer func() {
		if err := p.Close(); err != nil {
			logger.Errorf("worker.Step: failed to release working directory for build %d: %v", pb.BuildID, err)
		}
	}()

	result := pipeline.WholeBuild(ctx, p)

	if err := l.Store.RecordResult(ctx, pb, result); err != nil {
		return graderrors.NewDatabaseError("worker.Step: record_result", err)
	}
	logger.Infof("worker.Step: recorded result for build %d", pb.BuildID)
	return nil
}

// Run calls Step in a loop, logging and continuing past any returned
// error, until Stop is called or ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	for !l.Stopped() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := l.Step(ctx); err != nil {
			logger.Errorf("worker.Run: %v", err)
		}
	}
}
