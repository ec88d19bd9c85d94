// Package errors defines the typed error kinds that flow out of the
// process runner, the test-output parser, and the job store. Each kind
// carries the structured detail a caller needs to render a useful
// message or to pick a BuildResult variant.
package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// SpawnError represents failure to start a subprocess at all.
type SpawnError struct {
	Program string
	Cause   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn %s: %v", e.Program, e.Cause)
}

func (e *SpawnError) Unwrap() error { return e.Cause }

// NonZeroExitError represents a subprocess that exited with a non-zero
// numeric status.
type NonZeroExitError struct {
	Program  string
	ExitCode int
}

func (e *NonZeroExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Program, e.ExitCode)
}

// SignalTerminationError represents a subprocess killed by a signal.
type SignalTerminationError struct {
	Program string
	Signal  int
}

func (e *SignalTerminationError) Error() string {
	return fmt.Sprintf("%s terminated by signal %d", e.Program, e.Signal)
}

// TimeoutError represents a subprocess that did not finish before its
// configured timeout expired.
type TimeoutError struct {
	Program string
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not finish within %s", e.Program, e.Timeout)
}

// MalformedTestLineError represents a line of test output that does not
// match the "<name>:<PASS|FAIL>" grammar.
type MalformedTestLineError struct {
	Line string
}

func (e *MalformedTestLineError) Error() string {
	return fmt.Sprintf("malformed test output line: %q", e.Line)
}

// IngestionLookupMissError represents a push notification whose username
// or project name did not resolve to a known User or Assignment.
type IngestionLookupMissError struct {
	Field string // "username" or "project_name"
	Value string
}

func (e *IngestionLookupMissError) Error() string {
	return fmt.Sprintf("no match for %s %q", e.Field, e.Value)
}

// DatabaseError wraps a failure from the backing store. It is fatal for
// the step that raised it but never crashes the worker loop.
type DatabaseError struct {
	Op       string
	Cause    error
	SQLError *pgconn.PgError // PostgreSQL error details, when the cause carries them
}

func (e *DatabaseError) Error() string {
	if e.SQLError != nil {
		return fmt.Sprintf("database error during %s: [%s] %s", e.Op, e.SQLError.Code, e.SQLError.Message)
	}
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Cause)
}

func (e *DatabaseError) Unwrap() error { return e.Cause }

// NewDatabaseError creates a new DatabaseError, extracting the
// PostgreSQL error details (constraint name, SQLSTATE code) from the
// cause chain when present.
func NewDatabaseError(op string, cause error) *DatabaseError {
	e := &DatabaseError{Op: op, Cause: cause}
	var pgErr *pgconn.PgError
	if errors.As(cause, &pgErr) {
		e.SQLError = pgErr
	}
	return e
}
