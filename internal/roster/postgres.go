package roster

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRoster reads the users/assignments tables through a shared
// connection pool, using parameterized queries throughout.
type PostgresRoster struct {
	pool *pgxpool.Pool
}

// NewPostgresRoster builds a PostgresRoster over an existing pool. The
// pool is owned by the caller (typically store.PostgresStore, which
// shares it across both its own queries and roster lookups).
func NewPostgresRoster(pool *pgxpool.Pool) *PostgresRoster {
	return &PostgresRoster{pool: pool}
}

func (r *PostgresRoster) UserIDByUsername(ctx context.Context, username string) (int64, bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM users WHERE github_username = $1`, username).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (r *PostgresRoster) AssignmentByProjectName(ctx context.Context, projectName string) (int64, int64, bool, error) {
	var assignmentID, courseID int64
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id FROM assignments WHERE git_project_name = $1`, projectName,
	).Scan(&assignmentID, &courseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return assignmentID, courseID, true, nil
}
