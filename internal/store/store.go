// Package store persists the job-lifecycle state machine (Pending →
// InProgress → Done) and enforces exactly-once claim under concurrent
// workers. Two implementations share the Store contract: PostgresStore
// for production and MemoryStore for unit tests.
package store

import (
	"context"

	"github.com/kyledewey/gradr/internal/cloneurl"
	"github.com/kyledewey/gradr/internal/notification"
	"github.com/kyledewey/gradr/internal/pipeline"
)

// Status is a Build row's position in its lifecycle. Values match the
// integer encoding persisted in the builds.status column.
type Status int

const (
	Pending Status = iota
	InProgress
	Done
)

// PendingBuild is the in-memory projection of a claimed Build row
// joined with the Commit it belongs to, carrying everything a worker
// needs to construct a pipeline.
type PendingBuild struct {
	BuildID  int64
	CloneURL *cloneurl.CloneUrl
	Branch   string
}

// Store is the job store's public contract, agnostic to backing
// engine.
type Store interface {
	// Enqueue atomically inserts a Submission, Commit, and Pending
	// Build for the notification. If the notification's username or
	// project name does not resolve against the roster, it is
	// silently dropped: no rows are created and no error is returned.
	Enqueue(ctx context.Context, n *notification.PushNotification) error

	// ClaimPending atomically transitions one Pending Build to
	// InProgress and returns it. It returns (nil, nil) if no Pending
	// row is currently visible.
	ClaimPending(ctx context.Context) (*PendingBuild, error)

	// RecordResult transitions the identified Build to Done, storing
	// the JSON-serialized result. Exactly one row must be affected.
	RecordResult(ctx context.Context, pb *PendingBuild, result pipeline.BuildResult) error

	// QueueDepth counts rows whose status is not Done.
	QueueDepth(ctx context.Context) (int64, error)
}
