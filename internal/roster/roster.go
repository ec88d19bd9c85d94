// Package roster resolves the username/project-name pairs carried by a
// push notification against the grading platform's users and
// assignments. It backs the ingestion lookups in internal/store.
package roster

import "context"

// Roster looks up the two identities ingestion needs to accept a
// notification: the user who pushed and the assignment it targets.
type Roster interface {
	// UserIDByUsername returns the user id matching the given source-
	// control username, or (0, false) if none exists.
	UserIDByUsername(ctx context.Context, username string) (userID int64, ok bool, err error)

	// AssignmentByProjectName returns the assignment id and its course
	// id matching the given project name, or (0, 0, false) if none
	// exists.
	AssignmentByProjectName(ctx context.Context, projectName string) (assignmentID, courseID int64, ok bool, err error)
}
