package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kyledewey/gradr/internal/cloneurl"
	graderrors "github.com/kyledewey/gradr/internal/errors"
	"github.com/kyledewey/gradr/internal/logger"
	"github.com/kyledewey/gradr/internal/notification"
	"github.com/kyledewey/gradr/internal/pipeline"
	"github.com/kyledewey/gradr/internal/roster"
)

const applicationName = "gradr"

// PostgresStore is the production Store, backed by a pgxpool and the
// parameterized CAS claim described in the job store's contract.
type PostgresStore struct {
	pool   *pgxpool.Pool
	roster *roster.PostgresRoster
}

// NewPostgresStore opens a connection pool to connString and verifies
// the server is new enough to support the schema this store assumes.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	poolConfig.MaxConns = 8

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	var versionStr string
	if err := pool.QueryRow(ctx, "SHOW server_version_num").Scan(&versionStr); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to query postgres version: %w", err)
	}
	version, err := strconv.Atoi(versionStr)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to parse postgres version %q: %w", versionStr, err)
	}
	if version < 130000 {
		pool.Close()
		return nil, fmt.Errorf("postgresql version %d is not supported (need 13+)", version/10000)
	}

	return &PostgresStore{pool: pool, roster: roster.NewPostgresRoster(pool)}, nil
}

// Pool exposes the underlying connection pool, e.g. for the
// migrations package to bootstrap the schema before first use.
func (s *PostgresStore) Pool() *pgxpool.Pool { return s.pool }

// Roster exposes the read-only user/assignment lookup layer sharing
// this store's pool, for callers (e.g. admin tooling) that need to
// check roster membership outside of an ingestion transaction.
func (s *PostgresStore) Roster() *roster.PostgresRoster { return s.roster }

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) Enqueue(ctx context.Context, n *notification.PushNotification) error {
	userID, ok, err := s.roster.UserIDByUsername(ctx, n.CloneURL.Username())
	if err != nil {
		return graderrors.NewDatabaseError("enqueue: lookup user", err)
	}
	if !ok {
		logger.Debugf("enqueue: dropping notification: %v", &graderrors.IngestionLookupMissError{Field: "username", Value: n.CloneURL.Username()})
		return nil // silent drop: no matching user
	}

	assignmentID, courseID, ok, err := s.roster.AssignmentByProjectName(ctx, n.CloneURL.ProjectName())
	if err != nil {
		return graderrors.NewDatabaseError("enqueue: lookup assignment", err)
	}
	if !ok {
		logger.Debugf("enqueue: dropping notification: %v", &graderrors.IngestionLookupMissError{Field: "project_name", Value: n.CloneURL.ProjectName()})
		return nil // silent drop: no matching assignment
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return graderrors.NewDatabaseError("enqueue: begin", err)
	}
	defer tx.Rollback(ctx)

	var submissionID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO submissions (user_id, assignment_id, created_at, updated_at)
		 VALUES ($1, $2, now(), now()) RETURNING id`,
		userID, assignmentID,
	).Scan(&submissionID)
	if err != nil {
		return graderrors.NewDatabaseError("enqueue: insert submission", err)
	}

	var commitID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO commits (submission_id, user_id, assignment_id, branch_name, clone_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now(), now()) RETURNING id`,
		submissionID, userID, assignmentID, n.Branch, n.CloneURL.String(),
	).Scan(&commitID)
	if err != nil {
		return graderrors.NewDatabaseError("enqueue: insert commit", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO builds (commit_id, user_id, assignment_id, course_id, status, results, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, '', now(), now())`,
		commitID, userID, assignmentID, courseID, Pending,
	)
	if err != nil {
		return graderrors.NewDatabaseError("enqueue: insert build", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return graderrors.NewDatabaseError("enqueue: commit", err)
	}
	return nil
}

func (s *PostgresStore) ClaimPending(ctx context.Context) (*PendingBuild, error) {
	for {
		var buildID int64
		err := s.pool.QueryRow(ctx,
			`SELECT id FROM builds WHERE status = $1 LIMIT 1`, Pending,
		).Scan(&buildID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, graderrors.NewDatabaseError("claim_pending: select", err)
		}

		tag, err := s.pool.Exec(ctx,
			`UPDATE builds SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
			InProgress, buildID, Pending,
		)
		if err != nil {
			return nil, graderrors.NewDatabaseError("claim_pending: cas update", err)
		}
		if tag.RowsAffected() == 0 {
			// Lost the race to another worker; pick another candidate.
			continue
		}

		var branch, cloneURLStr string
		err = s.pool.QueryRow(ctx,
			`SELECT c.branch_name, c.clone_url
			 FROM builds b JOIN commits c ON c.id = b.commit_id
			 WHERE b.id = $1`, buildID,
		).Scan(&branch, &cloneURLStr)
		if err != nil {
			return nil, graderrors.NewDatabaseError("claim_pending: fetch commit", err)
		}

		cu, err := parseStoredCloneURL(cloneURLStr)
		if err != nil {
			return nil, graderrors.NewDatabaseError("claim_pending: parse clone url", err)
		}

		return &PendingBuild{BuildID: buildID, CloneURL: cu, Branch: branch}, nil
	}
}

func (s *PostgresStore) RecordResult(ctx context.Context, pb *PendingBuild, result pipeline.BuildResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return graderrors.NewDatabaseError("record_result: marshal", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE builds SET status = $1, results = $2, updated_at = now() WHERE id = $3 AND status = $4`,
		Done, string(data), pb.BuildID, InProgress,
	)
	if err != nil {
		return graderrors.NewDatabaseError("record_result: update", err)
	}
	if tag.RowsAffected() != 1 {
		return graderrors.NewDatabaseError("record_result",
			fmt.Errorf("expected to update exactly one row, affected %d", tag.RowsAffected()))
	}
	return nil
}

func (s *PostgresStore) QueueDepth(ctx context.Context) (int64, error) {
	var depth int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM builds WHERE status != $1`, Done).Scan(&depth)
	if err != nil {
		return 0, graderrors.NewDatabaseError("queue_depth", err)
	}
	return depth, nil
}

func parseStoredCloneURL(raw string) (*cloneurl.CloneUrl, error) {
	return cloneurl.Parse(raw)
}
