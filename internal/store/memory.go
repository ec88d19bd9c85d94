package store

import (
	"context"
	"encoding/json"
	"sync"

	graderrors "github.com/kyledewey/gradr/internal/errors"
	"github.com/kyledewey/gradr/internal/logger"
	"github.com/kyledewey/gradr/internal/notification"
	"github.com/kyledewey/gradr/internal/pipeline"
	"github.com/kyledewey/gradr/internal/roster"
)

type memoryBuild struct {
	status   Status
	cloneURL *notification.PushNotification
	results  string
}

// MemoryStore is an in-process Store guarded by a mutex, with a
// buffered channel standing in for the Pending queue. It backs unit
// tests and in-process worker-loop concurrency tests that would
// otherwise need a real Postgres instance.
type MemoryStore struct {
	roster *roster.MemoryRoster

	mu     sync.Mutex
	builds map[int64]*memoryBuild
	nextID int64

	pending chan int64
}

// NewMemoryStore builds an empty MemoryStore backed by the given
// roster (user/assignment lookups for ingestion).
func NewMemoryStore(r *roster.MemoryRoster) *MemoryStore {
	return &MemoryStore{
		roster:  r,
		builds:  make(map[int64]*memoryBuild),
		pending: make(chan int64, 4096),
	}
}

func (s *MemoryStore) Enqueue(ctx context.Context, n *notification.PushNotification) error {
	if _, ok, err := s.roster.UserIDByUsername(ctx, n.CloneURL.Username()); err != nil {
		return graderrors.NewDatabaseError("enqueue: lookup user", err)
	} else if !ok {
		logger.Debugf("enqueue: dropping notification: %v", &graderrors.IngestionLookupMissError{Field: "username", Value: n.CloneURL.Username()})
		return nil // silent drop, per ingestion contract
	}

	if _, _, ok, err := s.roster.AssignmentByProjectName(ctx, n.CloneURL.ProjectName()); err != nil {
		return graderrors.NewDatabaseError("enqueue: lookup assignment", err)
	} else if !ok {
		logger.Debugf("enqueue: dropping notification: %v", &graderrors.IngestionLookupMissError{Field: "project_name", Value: n.CloneURL.ProjectName()})
		return nil // silent drop
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.builds[id] = &memoryBuild{status: Pending, cloneURL: n}
	s.mu.Unlock()

	s.pending <- id
	return nil
}

func (s *MemoryStore) ClaimPending(ctx context.Context) (*PendingBuild, error) {
	select {
	case id := <-s.pending:
		s.mu.Lock()
		b, ok := s.builds[id]
		if !ok || b.status != Pending {
			s.mu.Unlock()
			return nil, nil
		}
		b.status = InProgress
		s.mu.Unlock()

		return &PendingBuild{BuildID: id, CloneURL: b.cloneURL.CloneURL, Branch: b.cloneURL.Branch}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, nil
	}
}

func (s *MemoryStore) RecordResult(_ context.Context, pb *PendingBuild, result pipeline.BuildResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return graderrors.NewDatabaseError("record_result: marshal", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.builds[pb.BuildID]
	if !ok {
		return graderrors.NewDatabaseError("record_result", errBuildNotFound(pb.BuildID))
	}
	b.status = Done
	b.results = string(data)
	return nil
}

func (s *MemoryStore) QueueDepth(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, b := range s.builds {
		if b.status != Done {
			n++
		}
	}
	return n, nil
}

type errBuildNotFound int64

func (e errBuildNotFound) Error() string { return "build not found" }
