package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"riskreward.app/web/internal/model"
)

type postgresSessionStore struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionStore reads and writes the sessions table. The pool is
// owned by the caller; Close does not close it.
func NewPostgresSessionStore(pool *pgxpool.Pool) SessionStore {
	return &postgresSessionStore{pool: pool}
}

const getValidSession = `
SELECT token, id, request_token, request_secret, access_token, access_secret, return_to, created_at, expires_at
FROM sessions
WHERE token = $1 AND expires_at > now()`

const upsertSession = `
INSERT INTO sessions (token, id, request_token, request_secret, access_token, access_secret, return_to, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (token) DO UPDATE SET
    request_token  = EXCLUDED.request_token,
    request_secret = EXCLUDED.request_secret,
    access_token   = EXCLUDED.access_token,
    access_secret  = EXCLUDED.access_secret,
    return_to      = EXCLUDED.return_to,
    expires_at     = EXCLUDED.expires_at`

func (s *postgresSessionStore) Get(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	err := s.pool.QueryRow(ctx, getValidSession, token).Scan(
		&session.Token,
		&session.ID,
		&session.RequestToken,
		&session.RequestSecret,
		&session.AccessToken,
		&session.AccessSecret,
		&session.ReturnTo,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &session, nil
}

func (s *postgresSessionStore) Save(ctx context.Context, session *model.Session) error {
	_, err := s.pool.Exec(ctx, upsertSession,
		session.Token,
		session.ID,
		session.RequestToken,
		session.RequestSecret,
		session.AccessToken,
		session.AccessSecret,
		session.ReturnTo,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

func (s *postgresSessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes rows past their expiry and returns how many
// were removed.
func DeleteExpiredSessions(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	tag, err := pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *postgresSessionStore) Close() error {
	return nil
}
