package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/raecer/intake-api/internal/domain"
)

const (
	sessionKeyPrefix = "intake:session:"

	// casRetries bounds optimistic retry loops under WATCH contention.
	casRetries = 5
)

// SessionStore implements domain.SessionStore on Redis. Sessions live under
// intake:session:<id> with a native TTL, so expiry happens server-side and
// Cleanup is only a best-effort manual sweep on top of it. Read-modify-write
// mutations go through WATCH so per-key updates are atomic; distinct session
// ids never contend.
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed session store with the given TTL
func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (s *SessionStore) save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.client.rdb.Set(ctx, sessionKey(session.ID), data, s.ttl).Err()
}

func (s *SessionStore) load(ctx context.Context, data []byte) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Create allocates a fresh active session
func (s *SessionStore) Create(ctx context.Context) (*domain.Session, error) {
	session := domain.NewSession()
	if err := s.save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Get returns the session, or domain.ErrSessionNotFound
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	data, err := s.client.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s.load(ctx, data)
}

// mutate runs an optimistic read-modify-write on one session key.
func (s *SessionStore) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.Session) error) error {
	key := sessionKey(id)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		session, err := s.load(ctx, data)
		if err != nil {
			return err
		}

		if err := fn(session); err != nil {
			return err
		}

		updated, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < casRetries; i++ {
		err := s.client.rdb.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("session %s: too much contention, giving up", id)
}

// AppendMessage appends one message to the session's history
func (s *SessionStore) AppendMessage(ctx context.Context, id uuid.UUID, msg domain.Message) error {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		session.Messages = append(session.Messages, msg)
		session.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// Update applies a tagged partial update
func (s *SessionStore) Update(ctx context.Context, id uuid.UUID, update domain.SessionUpdate) error {
	return s.mutate(ctx, id, func(session *domain.Session) error {
		return session.Apply(update)
	})
}

// Delete removes a session; true if one existed
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.client.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return deleted > 0, nil
}

// List returns summaries of all sessions currently in Redis
func (s *SessionStore) List(ctx context.Context) ([]domain.SessionSummary, error) {
	summaries := []domain.SessionSummary{}

	var cursor uint64
	for {
		keys, nextCursor, err := s.client.rdb.Scan(ctx, cursor, sessionKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan sessions: %w", err)
		}

		for _, key := range keys {
			data, err := s.client.rdb.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				continue // expired between scan and get
			}
			if err != nil {
				return nil, fmt.Errorf("failed to get session: %w", err)
			}
			session, err := s.load(ctx, data)
			if err != nil {
				return nil, err
			}
			summaries = append(summaries, session.Summary())
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return summaries, nil
}

// Cleanup sweeps sessions whose updated_at precedes now-maxAge. The native
// TTL remains the primary expiry mechanism; this removes sessions sooner.
func (s *SessionStore) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	removed := 0

	var cursor uint64
	for {
		keys, nextCursor, err := s.client.rdb.Scan(ctx, cursor, sessionKeyPrefix+"*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan sessions: %w", err)
		}

		for _, key := range keys {
			data, err := s.client.rdb.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return removed, fmt.Errorf("failed to get session: %w", err)
			}
			session, err := s.load(ctx, data)
			if err != nil {
				return removed, err
			}
			if session.UpdatedAt.Before(cutoff) {
				if err := s.client.rdb.Del(ctx, key).Err(); err != nil {
					return removed, fmt.Errorf("failed to delete session: %w", err)
				}
				removed++
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return removed, nil
}
