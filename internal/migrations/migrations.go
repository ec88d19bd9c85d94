// Package migrations ships the idempotent schema bootstrap for the
// five tables the grading backend needs: users, assignments,
// submissions, commits, and builds.
package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const bootstrapSQL = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	github_username TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS assignments (
	id BIGSERIAL PRIMARY KEY,
	git_project_name TEXT NOT NULL UNIQUE,
	course_id BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS submissions (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	assignment_id BIGINT NOT NULL REFERENCES assignments(id),
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS commits (
	id BIGSERIAL PRIMARY KEY,
	submission_id BIGINT NOT NULL REFERENCES submissions(id),
	user_id BIGINT NOT NULL REFERENCES users(id),
	assignment_id BIGINT NOT NULL REFERENCES assignments(id),
	branch_name TEXT NOT NULL,
	clone_url TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS builds (
	id BIGSERIAL PRIMARY KEY,
	commit_id BIGINT NOT NULL REFERENCES commits(id),
	user_id BIGINT NOT NULL REFERENCES users(id),
	assignment_id BIGINT NOT NULL REFERENCES assignments(id),
	course_id BIGINT NOT NULL,
	status SMALLINT NOT NULL,
	results TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// Bootstrap creates every table this implementation needs, if absent.
// It is safe to call repeatedly against an already-migrated database.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, bootstrapSQL); err != nil {
		return fmt.Errorf("migrations: bootstrap failed: %w", err)
	}
	return nil
}
