package store

import (
	"context"
	"errors"

	"riskreward.app/web/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist or has
// expired.
var ErrNotFound = errors.New("not found")

// SessionStore defines the contract for browser session access.
// Sessions are keyed by their random Token.
type SessionStore interface {
	Get(ctx context.Context, token string) (*model.Session, error) // ErrNotFound when missing or expired
	Save(ctx context.Context, session *model.Session) error         // insert or replace
	Delete(ctx context.Context, token string) error
	Close() error
}
