package roster

import (
	"context"
	"sync"
)

type memoryAssignment struct {
	id       int64
	courseID int64
}

// MemoryRoster is an in-process Roster backed by plain maps, guarded
// by a mutex. It is used by store.MemoryStore and by tests that do
// not need a real database.
type MemoryRoster struct {
	mu          sync.RWMutex
	users       map[string]int64
	assignments map[string]memoryAssignment
}

// NewMemoryRoster builds an empty MemoryRoster. Use AddUser and
// AddAssignment to populate it.
func NewMemoryRoster() *MemoryRoster {
	return &MemoryRoster{
		users:       make(map[string]int64),
		assignments: make(map[string]memoryAssignment),
	}
}

// AddUser registers a username with an id, overwriting any existing
// entry for that username.
func (r *MemoryRoster) AddUser(username string, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[username] = id
}

// AddAssignment registers a project name with an assignment id and
// course id, overwriting any existing entry for that project name.
func (r *MemoryRoster) AddAssignment(projectName string, assignmentID, courseID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[projectName] = memoryAssignment{id: assignmentID, courseID: courseID}
}

func (r *MemoryRoster) UserIDByUsername(_ context.Context, username string) (int64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.users[username]
	return id, ok, nil
}

func (r *MemoryRoster) AssignmentByProjectName(_ context.Context, projectName string) (int64, int64, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assignments[projectName]
	return a.id, a.courseID, ok, nil
}
