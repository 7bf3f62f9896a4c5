package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raecer/intake-api/internal/proctcae"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one conversation turn; immutable once appended, and ordering is
// significant (conversation order is model input order).
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// SessionStatus is the lifecycle state of a conversation session
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusError     SessionStatus = "error"
)

// Terminal reports whether no transition may leave this status.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Session is one patient conversation and its derived artifacts. PatientData
// and ProCtcaeData stay nil until the session completes, ErrorMessage is set
// only on the error transition. The store owns session instances; callers
// always receive copies.
type Session struct {
	ID           uuid.UUID                 `json:"session_id"`
	Messages     []Message                 `json:"messages"`
	Status       SessionStatus             `json:"status"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
	PatientData  *proctcae.PatientSummary  `json:"patient_data"`
	ProCtcaeData *proctcae.Record          `json:"pro_ctcae_data"`
	ErrorMessage string                    `json:"error_message,omitempty"`
}

// NewSession allocates a fresh active session with no messages.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy, so store internals never leak mutable handles.
func (s *Session) Clone() *Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	if s.PatientData != nil {
		pd := *s.PatientData
		pd.ReportedSymptoms = append([]string(nil), s.PatientData.ReportedSymptoms...)
		out.PatientData = &pd
	}
	if s.ProCtcaeData != nil {
		rec := *s.ProCtcaeData
		rec.Entries = append([]proctcae.RecordEntry(nil), s.ProCtcaeData.Entries...)
		out.ProCtcaeData = &rec
	}
	return &out
}

// Summary returns the bounded listing view: identity, lifecycle and counts,
// never message content or clinical data.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: len(s.Messages),
	}
}

// SessionSummary is the listing view of a session
type SessionSummary struct {
	ID           uuid.UUID     `json:"session_id"`
	Status       SessionStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	MessageCount int           `json:"message_count"`
}

// SessionUpdate is a tagged partial update. Only the non-nil fields are
// applied; arbitrary attribute writes are not possible.
type SessionUpdate struct {
	Status       *SessionStatus
	PatientData  *proctcae.PatientSummary
	ProCtcaeData *proctcae.Record
	ErrorMessage *string
}

// Apply validates the update against the state machine and applies it.
// Terminal sessions are immutable: completed and error absorb.
func (s *Session) Apply(update SessionUpdate) error {
	if s.Status.Terminal() {
		return fmt.Errorf("%w: session is %s", ErrInvalidState, s.Status)
	}
	if update.Status != nil {
		s.Status = *update.Status
	}
	if update.PatientData != nil {
		s.PatientData = update.PatientData
	}
	if update.ProCtcaeData != nil {
		s.ProCtcaeData = update.ProCtcaeData
	}
	if update.ErrorMessage != nil {
		s.ErrorMessage = *update.ErrorMessage
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// SessionStore defines the interface for session persistence. Implementations
// must make every mutation of a single session id appear atomic to concurrent
// callers; unrelated session ids never contend.
type SessionStore interface {
	// Create allocates a fresh active session and returns a copy of it.
	Create(ctx context.Context) (*Session, error)

	// Get returns a copy of the session, or ErrSessionNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Session, error)

	// AppendMessage appends one message and bumps updated_at. The store does
	// not gate on status; that policy belongs to the orchestrating service.
	AppendMessage(ctx context.Context, id uuid.UUID, msg Message) error

	// Update applies a tagged partial update and bumps updated_at.
	Update(ctx context.Context, id uuid.UUID, update SessionUpdate) error

	// Delete removes a session; true if one existed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// List returns summaries of all known sessions.
	List(ctx context.Context) ([]SessionSummary, error)

	// Cleanup removes sessions whose updated_at precedes now-maxAge and
	// returns the count removed.
	Cleanup(ctx context.Context, maxAge time.Duration) (int, error)
}
