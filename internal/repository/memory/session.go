// Package memory implements the session store on an in-process locked map.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raecer/intake-api/internal/domain"
)

// Store is an in-process domain.SessionStore. A single RWMutex guards the
// map; each operation performs a complete read-modify-write under the lock,
// so per-session mutations are atomic.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.Session
}

// NewStore creates an empty in-memory session store
func NewStore() *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*domain.Session),
	}
}

// Create allocates a fresh active session
func (s *Store) Create(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession()

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session.Clone(), nil
}

// Get returns a copy of the session
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// AppendMessage appends one message to the session's history
func (s *Store) AppendMessage(ctx context.Context, id uuid.UUID, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}

	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = time.Now().UTC()
	return nil
}

// Update applies a tagged partial update
func (s *Store) Update(ctx context.Context, id uuid.UUID, update domain.SessionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}

	return session.Apply(update)
}

// Delete removes a session; true if one existed
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok, nil
}

// List returns summaries of all sessions
func (s *Store) List(ctx context.Context) ([]domain.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.SessionSummary, 0, len(s.sessions))
	for _, session := range s.sessions {
		summaries = append(summaries, session.Summary())
	}
	return summaries, nil
}

// Cleanup removes sessions not updated within maxAge
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
