// Package notification abstracts the production of push notifications
// that drive ingestion, independent of the transport that delivers
// them (an HTTP webhook in production, a Go channel in tests).
package notification

import (
	"context"

	"github.com/kyledewey/gradr/internal/cloneurl"
)

// PushNotification is the immutable record a notification source
// produces and ingestion consumes.
type PushNotification struct {
	CloneURL *cloneurl.CloneUrl
	Branch   string
}

// Enqueuer is the slice of the job store's contract that a
// notification source needs. It is declared here, rather than taking
// a dependency on the store package, so the store package is free to
// depend on this one for the PushNotification type.
type Enqueuer interface {
	Enqueue(ctx context.Context, n *PushNotification) error
}

// Source is a polymorphic producer of push notifications.
type Source interface {
	// Next blocks until a notification is available. It returns
	// (nil, nil) to signal an orderly shutdown.
	Next(ctx context.Context) (*PushNotification, error)

	// Step pulls one notification via Next and, if present, enqueues
	// it. It returns true if a notification was processed, false on
	// orderly shutdown.
	Step(ctx context.Context, store Enqueuer) (bool, error)
}

// BaseStep implements the default Step behavior in terms of Next; both
// Source implementations delegate their Step method to it.
func BaseStep(ctx context.Context, src Source, store Enqueuer) (bool, error) {
	n, err := src.Next(ctx)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}
	if err := store.Enqueue(ctx, n); err != nil {
		return false, err
	}
	return true, nil
}
