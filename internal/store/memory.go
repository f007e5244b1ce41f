package store

import (
	"context"
	"sync"
	"time"

	"riskreward.app/web/internal/model"
)

// sweepInterval bounds how often Save walks the map for expired sessions.
const sweepInterval = time.Minute

type memorySessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]model.Session
	now       func() time.Time
	lastSweep time.Time
}

// NewMemorySessionStore keeps sessions in process memory. Sessions are lost
// on restart and are not shared between replicas.
func NewMemorySessionStore() SessionStore {
	return newMemorySessionStore(time.Now)
}

func newMemorySessionStore(now func() time.Time) *memorySessionStore {
	return &memorySessionStore{
		sessions:  make(map[string]model.Session),
		now:       now,
		lastSweep: now(),
	}
}

func (s *memorySessionStore) Get(_ context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if session.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	return &session, nil
}

func (s *memorySessionStore) Save(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Token] = *session

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.lastSweep = now
		for token, stored := range s.sessions {
			if stored.Expired(now) {
				delete(s.sessions, token)
			}
		}
	}
	return nil
}

func (s *memorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *memorySessionStore) Close() error {
	return nil
}
