package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/raecer/intake-api/internal/api/response"
	"github.com/raecer/intake-api/internal/domain"
	"github.com/raecer/intake-api/internal/service"
)

var validate = validator.New()

// ConversationHandler handles intake conversation requests
type ConversationHandler struct {
	conversationService *service.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

type messageRequest struct {
	Message  string `json:"message" validate:"required,min=1,max=10000"`
	Provider string `json:"provider,omitempty"`
}

type endRequest struct {
	Provider string `json:"provider,omitempty"`
}

type cleanupRequest struct {
	MaxAgeHours int `json:"max_age_hours" validate:"omitempty,min=0"`
}

// Start creates a new conversation session
func (h *ConversationHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.conversationService.Start(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Created(w, map[string]any{
		"session_id": session.ID,
		"status":     session.Status,
		"greeting":   session.Messages[0].Content,
	})
}

// Message handles one patient turn
func (h *ConversationHandler) Message(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.conversationService.SendMessage(r.Context(), sessionID, req.Message, req.Provider)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.OK(w, result)
}

// End closes the conversation and returns the structured assessment
func (h *ConversationHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var req endRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
	}

	result, err := h.conversationService.End(r.Context(), sessionID, req.Provider)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.OK(w, result)
}

// Status returns the session's lifecycle state and assessment data if present
func (h *ConversationHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	session, err := h.conversationService.Status(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"session_id":    session.ID,
		"status":        session.Status,
		"created_at":    session.CreatedAt,
		"updated_at":    session.UpdatedAt,
		"message_count": len(session.Messages),
		"patient_data":  session.PatientData,
		"pro_ctcae":     session.ProCtcaeData,
		"error_message": session.ErrorMessage,
	})
}

// History returns the patient-visible transcript
func (h *ConversationHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	history, err := h.conversationService.History(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"session_id": sessionID,
		"messages":   history,
	})
}

// Delete removes a session
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	if err := h.conversationService.Delete(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// List returns summaries of all live sessions
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.conversationService.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"sessions": summaries,
		"count":    len(summaries),
	})
}

// Cleanup removes sessions older than the requested age
func (h *ConversationHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	req := cleanupRequest{MaxAgeHours: 24}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}
	}

	removed, err := h.conversationService.Cleanup(r.Context(), time.Duration(req.MaxAgeHours)*time.Hour)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.OK(w, map[string]any{"removed": removed})
}

func sessionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return uuid.Nil, false
	}
	return sessionID, true
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		response.NotFound(w, "session not found")
	case errors.Is(err, domain.ErrInvalidState):
		response.Conflict(w, err.Error())
	case errors.Is(err, domain.ErrUpstreamFailure), errors.Is(err, domain.ErrMalformedSummary):
		response.Error(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrBackendUnavailable):
		response.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}
