package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/raecer/intake-api/internal/domain"
	"github.com/raecer/intake-api/internal/llm"
	"github.com/raecer/intake-api/internal/ner"
	"github.com/raecer/intake-api/internal/proctcae"
	"github.com/raecer/intake-api/internal/repository/sqlite"
)

// Archiver persists completed assessments outside the session store. It is
// optional; a nil Archiver disables archiving.
type Archiver interface {
	SaveAssessment(ctx context.Context, assessment sqlite.ArchivedAssessment) error
}

// MessageResult is the outcome of one conversational turn
type MessageResult struct {
	SessionID uuid.UUID           `json:"session_id"`
	Reply     string              `json:"reply"`
	Ended     bool                `json:"conversation_ended"`
	Entities  map[string][]string `json:"entities,omitempty"`
	Model     string              `json:"model,omitempty"`
}

// EndResult is the structured outcome of closing a conversation
type EndResult struct {
	SessionID       uuid.UUID                `json:"session_id"`
	Status          domain.SessionStatus     `json:"status"`
	PatientData     *proctcae.PatientSummary `json:"patient_data"`
	ProCtcaeData    *proctcae.Record         `json:"pro_ctcae_data"`
	ClinicalSummary string                   `json:"clinical_summary"`
}

// ConversationService orchestrates intake conversations: session lifecycle,
// model turns, entity extraction, and the final structured assessment.
type ConversationService struct {
	store     domain.SessionStore
	llmRouter *llm.Router
	extractor ner.Extractor
	mapper    *proctcae.Mapper
	archive   Archiver
	maxTokens int
}

// NewConversationService creates a new conversation service. extractor and
// archive may be nil.
func NewConversationService(
	store domain.SessionStore,
	llmRouter *llm.Router,
	extractor ner.Extractor,
	mapper *proctcae.Mapper,
	archive Archiver,
	maxTokens int,
) *ConversationService {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &ConversationService{
		store:     store,
		llmRouter: llmRouter,
		extractor: extractor,
		mapper:    mapper,
		archive:   archive,
		maxTokens: maxTokens,
	}
}

// Start creates a new session seeded with the assistant greeting
func (s *ConversationService) Start(ctx context.Context) (*domain.Session, error) {
	session, err := s.store.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	greeting := domain.Message{Role: domain.RoleAssistant, Content: llm.Greeting}
	if err := s.store.AppendMessage(ctx, session.ID, greeting); err != nil {
		return nil, fmt.Errorf("failed to record greeting: %w", err)
	}

	log.Info().Str("session_id", session.ID.String()).Msg("Conversation started")

	session.Messages = append(session.Messages, greeting)
	return session, nil
}

// SendMessage records a patient message, generates the assistant reply, and
// reports whether the assistant concluded the conversation.
func (s *ConversationService) SendMessage(ctx context.Context, sessionID uuid.UUID, content, providerName string) (*MessageResult, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, fmt.Errorf("%w: session is %s", domain.ErrInvalidState, session.Status)
	}

	// Entity extraction is advisory; a collaborator outage must not block
	// the conversation.
	var entities map[string][]string
	if s.extractor != nil {
		entities, err = s.extractor.Extract(ctx, content)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Entity extraction failed")
			entities = nil
		}
	}

	userMsg := domain.Message{Role: domain.RoleUser, Content: content}
	if err := s.store.AppendMessage(ctx, sessionID, userMsg); err != nil {
		return nil, err
	}
	session.Messages = append(session.Messages, userMsg)

	resp, err := s.generate(ctx, session.Messages, providerName)
	if err != nil {
		s.markError(ctx, sessionID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	assistantMsg := domain.Message{Role: domain.RoleAssistant, Content: resp.Text}
	if err := s.store.AppendMessage(ctx, sessionID, assistantMsg); err != nil {
		return nil, err
	}

	log.Debug().
		Str("session_id", sessionID.String()).
		Str("model", resp.Model).
		Int("tokens_used", resp.TokensUsed).
		Int64("latency_ms", resp.LatencyMs).
		Msg("Assistant turn generated")

	return &MessageResult{
		SessionID: sessionID,
		Reply:     resp.Text,
		Ended:     llm.IsConversationEnd(resp.Text),
		Entities:  entities,
		Model:     resp.Model,
	}, nil
}

// End closes a conversation: it extracts the structured patient summary from
// the transcript, maps it to PRO-CTCAE entries, and marks the session
// completed. Ending an already completed session returns the stored
// assessment without another model call.
func (s *ConversationService) End(ctx context.Context, sessionID uuid.UUID, providerName string) (*EndResult, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case domain.StatusCompleted:
		return &EndResult{
			SessionID:       session.ID,
			Status:          session.Status,
			PatientData:     session.PatientData,
			ProCtcaeData:    session.ProCtcaeData,
			ClinicalSummary: clinicalSummary(session.ProCtcaeData),
		}, nil
	case domain.StatusError:
		return nil, fmt.Errorf("%w: session is %s", domain.ErrInvalidState, session.Status)
	}

	messages := append(append([]domain.Message{}, session.Messages...),
		domain.Message{Role: domain.RoleUser, Content: llm.ExtractionPrompt})

	resp, err := s.generate(ctx, messages, providerName)
	if err != nil {
		s.markError(ctx, sessionID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	cleaned := llm.CleanJSONReply(resp.Text)
	var summary proctcae.PatientSummary
	if err := json.Unmarshal([]byte(cleaned), &summary); err != nil {
		log.Error().
			Err(err).
			Str("session_id", sessionID.String()).
			Str("raw_reply", resp.Text).
			Msg("Extraction reply is not valid JSON")
		s.markError(ctx, sessionID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedSummary, err)
	}

	entries := s.mapper.Map(summary)
	record := s.mapper.FormatForRecord(entries)
	record.SourceReference = sessionID.String()
	record.AssessmentTimestamp = time.Now().UTC().Format(time.RFC3339)
	record.ClinicalSummary = s.mapper.Summarize(entries)

	completed := domain.StatusCompleted
	update := domain.SessionUpdate{
		Status:       &completed,
		PatientData:  &summary,
		ProCtcaeData: record,
	}
	if err := s.store.Update(ctx, sessionID, update); err != nil {
		return nil, err
	}

	if s.archive != nil {
		assessment := sqlite.ArchivedAssessment{
			SessionID:       sessionID.String(),
			AssessedAt:      time.Now().UTC(),
			PatientSummary:  &summary,
			Record:          record,
			ClinicalSummary: record.ClinicalSummary,
		}
		if err := s.archive.SaveAssessment(ctx, assessment); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to archive assessment")
		}
	}

	log.Info().
		Str("session_id", sessionID.String()).
		Int("symptom_count", len(entries)).
		Msg("Conversation completed")

	return &EndResult{
		SessionID:       sessionID,
		Status:          domain.StatusCompleted,
		PatientData:     &summary,
		ProCtcaeData:    record,
		ClinicalSummary: record.ClinicalSummary,
	}, nil
}

// Status returns a lightweight view of the session
func (s *ConversationService) Status(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// History returns the patient-visible transcript (system messages excluded)
func (s *ConversationService) History(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	history := make([]domain.Message, 0, len(session.Messages))
	for _, msg := range session.Messages {
		if msg.Role == domain.RoleSystem {
			continue
		}
		history = append(history, msg)
	}
	return history, nil
}

// Delete removes a session. Returns ErrSessionNotFound if it does not exist.
func (s *ConversationService) Delete(ctx context.Context, sessionID uuid.UUID) error {
	found, err := s.store.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrSessionNotFound
	}
	log.Info().Str("session_id", sessionID.String()).Msg("Session deleted")
	return nil
}

// List returns summaries of all live sessions
func (s *ConversationService) List(ctx context.Context) ([]domain.SessionSummary, error) {
	return s.store.List(ctx)
}

// Cleanup removes sessions not updated within maxAge and returns the count
func (s *ConversationService) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	removed, err := s.store.Cleanup(ctx, maxAge)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Dur("max_age", maxAge).Msg("Stale sessions cleaned up")
	}
	return removed, nil
}

// Providers lists registered model providers and the configured default
func (s *ConversationService) Providers() (names []string, defaultName string) {
	return s.llmRouter.ListProviders(), s.llmRouter.DefaultProvider()
}

func (s *ConversationService) generate(ctx context.Context, messages []domain.Message, providerName string) (*llm.Response, error) {
	provider, err := s.llmRouter.GetProvider(providerName)
	if err != nil {
		return nil, err
	}

	req := llm.Request{
		Messages:  messages,
		System:    llm.SystemPrompt,
		MaxTokens: s.maxTokens,
	}
	return provider.Generate(ctx, req, "")
}

// markError moves the session to the error state. Best effort: the original
// failure matters more than a secondary store error.
func (s *ConversationService) markError(ctx context.Context, sessionID uuid.UUID, cause error) {
	status := domain.StatusError
	msg := cause.Error()
	update := domain.SessionUpdate{Status: &status, ErrorMessage: &msg}
	if err := s.store.Update(ctx, sessionID, update); err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("Failed to record session error state")
	}
}

func clinicalSummary(record *proctcae.Record) string {
	if record == nil {
		return ""
	}
	return record.ClinicalSummary
}
