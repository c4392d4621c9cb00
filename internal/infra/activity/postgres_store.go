package activity

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/breatheeasy/internal/domain/action"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS action_activity (
		id          UUID PRIMARY KEY,
		action      TEXT NOT NULL,
		subject     TEXT NOT NULL DEFAULT '',
		success     BOOLEAN NOT NULL,
		error       TEXT NOT NULL DEFAULT '',
		duration_ms BIGINT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS action_activity_created_at_idx ON action_activity (created_at DESC);
`

// PostgresStore implements action.ActivityLog using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the activity table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schemaDDL)
	return err
}

// Append implements action.ActivityLog.
func (s *PostgresStore) Append(ctx context.Context, entry action.Activity) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO action_activity (id, action, subject, success, error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.Action, entry.Subject, entry.Success, entry.Error, entry.DurationMS, entry.CreatedAt)
	return err
}

// Recent implements action.ActivityLog.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]action.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, action, subject, success, error, duration_ms, created_at
		FROM action_activity
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]action.Activity, 0, limit)
	for rows.Next() {
		entry, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (action.Activity, error) {
	var entry action.Activity
	if err := row.Scan(&entry.ID, &entry.Action, &entry.Subject, &entry.Success, &entry.Error, &entry.DurationMS, &entry.CreatedAt); err != nil {
		return action.Activity{}, err
	}
	return entry, nil
}

var _ action.ActivityLog = (*PostgresStore)(nil)
