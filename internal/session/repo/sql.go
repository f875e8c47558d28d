package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-blog-go/pkg/database"
)

// SQLRepo stores sessions in the sessions table.
type SQLRepo struct {
	db *sqlx.DB
}

func NewSQLRepo(db *sqlx.DB) *SQLRepo {
	return &SQLRepo{db: db}
}

// EnsureTable creates the sessions table if not exists (idempotent).
func (r *SQLRepo) EnsureTable(ctx context.Context) error {
	ts := "TIMESTAMPTZ"
	if r.db.DriverName() == database.DriverSQLite {
		ts = "TIMESTAMP"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
  token TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  expires_at ` + ts + ` NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at)`,
	}
	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("ensure sessions table: %w", err)
		}
	}
	return nil
}

func (r *SQLRepo) Save(ctx context.Context, s *Session) error {
	row := *s
	row.ExpiresAt = row.ExpiresAt.UTC()
	q := `INSERT INTO sessions (token, user_id, expires_at) VALUES (:token, :user_id, :expires_at)`
	if _, err := r.db.NamedExecContext(ctx, q, row); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *SQLRepo) Get(ctx context.Context, token string) (*Session, error) {
	var s Session
	q := r.db.Rebind(`SELECT token, user_id, expires_at FROM sessions WHERE token = ?`)
	if err := r.db.GetContext(ctx, &s, q, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	s.ExpiresAt = s.ExpiresAt.UTC()
	return &s, nil
}

func (r *SQLRepo) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE token = ?`), token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every session expired at now and returns the count.
func (r *SQLRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
