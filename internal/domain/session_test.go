package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raecer/intake-api/internal/proctcae"
)

func TestNewSession(t *testing.T) {
	s := NewSession()

	assert.Equal(t, StatusActive, s.Status)
	assert.Empty(t, s.Messages)
	assert.Nil(t, s.PatientData)
	assert.Nil(t, s.ProCtcaeData)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)
}

func TestSession_Apply_Completion(t *testing.T) {
	s := NewSession()

	completed := StatusCompleted
	err := s.Apply(SessionUpdate{
		Status:       &completed,
		PatientData:  &proctcae.PatientSummary{FullSummary: "ok"},
		ProCtcaeData: &proctcae.Record{Version: "1.0"},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, s.Status)
	require.NotNil(t, s.PatientData)
	require.NotNil(t, s.ProCtcaeData)
	assert.True(t, s.UpdatedAt.After(s.CreatedAt) || s.UpdatedAt.Equal(s.CreatedAt))
}

func TestSession_Apply_TerminalStatesAreImmutable(t *testing.T) {
	for _, terminal := range []SessionStatus{StatusCompleted, StatusError} {
		s := NewSession()
		s.Status = terminal

		active := StatusActive
		err := s.Apply(SessionUpdate{Status: &active})
		assert.ErrorIs(t, err, ErrInvalidState)

		err = s.Apply(SessionUpdate{PatientData: &proctcae.PatientSummary{}})
		assert.ErrorIs(t, err, ErrInvalidState, "completed clinical data must stay immutable")
	}
}

func TestSession_Apply_ErrorTransition(t *testing.T) {
	s := NewSession()

	errStatus := StatusError
	msg := "model call failed"
	err := s.Apply(SessionUpdate{Status: &errStatus, ErrorMessage: &msg})
	require.NoError(t, err)

	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, msg, s.ErrorMessage)
}

func TestSession_Clone_Isolation(t *testing.T) {
	s := NewSession()
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Content: "hello"})
	s.PatientData = &proctcae.PatientSummary{ReportedSymptoms: []string{"hives"}}

	clone := s.Clone()
	clone.Messages[0].Content = "changed"
	clone.Messages = append(clone.Messages, Message{Role: RoleUser, Content: "hi"})
	clone.PatientData.ReportedSymptoms[0] = "rash"

	assert.Equal(t, "hello", s.Messages[0].Content)
	assert.Len(t, s.Messages, 1)
	assert.Equal(t, "hives", s.PatientData.ReportedSymptoms[0])
}

func TestSession_Summary(t *testing.T) {
	s := NewSession()
	s.Messages = append(s.Messages,
		Message{Role: RoleUser, Content: "hello"},
		Message{Role: RoleAssistant, Content: "hi"},
	)

	summary := s.Summary()
	assert.Equal(t, s.ID, summary.ID)
	assert.Equal(t, StatusActive, summary.Status)
	assert.Equal(t, 2, summary.MessageCount)
}

func TestSessionStatus_Terminal(t *testing.T) {
	assert.False(t, StatusActive.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusError.Terminal())
}
