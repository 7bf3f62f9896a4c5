package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raecer/intake-api/internal/api/handler"
	"github.com/raecer/intake-api/internal/llm"
	"github.com/raecer/intake-api/internal/proctcae"
	"github.com/raecer/intake-api/internal/repository/memory"
	"github.com/raecer/intake-api/internal/service"
)

// scriptedProvider returns queued replies in order
type scriptedProvider struct {
	replies []string
	calls   int
}

func (p *scriptedProvider) Name() string              { return "scripted" }
func (p *scriptedProvider) AvailableModels() []string { return []string{"scripted-1"} }
func (p *scriptedProvider) DefaultModel() string      { return "scripted-1" }
func (p *scriptedProvider) IsConfigured() bool        { return true }

func (p *scriptedProvider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	reply := p.replies[p.calls%len(p.replies)]
	p.calls++
	return &llm.Response{Text: reply, Model: "scripted-1"}, nil
}

func newTestRouter(provider *scriptedProvider) http.Handler {
	router := llm.NewRouter(provider.Name())
	router.RegisterProvider(provider)

	svc := service.NewConversationService(memory.NewStore(), router, nil, proctcae.NewMapper(), nil, 0)
	h := handler.NewConversationHandler(svc)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck(router, nil))
		r.Get("/llm-providers", handler.ListProviders(router))
		r.Route("/conversation", func(r chi.Router) {
			r.Post("/start", h.Start)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Post("/message", h.Message)
				r.Post("/end", h.End)
				r.Get("/status", h.Status)
				r.Get("/history", h.History)
				r.Delete("/", h.Delete)
			})
		})
		r.Get("/conversations", h.List)
		r.Post("/cleanup", h.Cleanup)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&decoded))
	}
	return rec, decoded
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&scriptedProvider{replies: []string{"hi"}})

	rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Contains(t, data["providers"], "scripted")
}

func TestListProviders(t *testing.T) {
	router := newTestRouter(&scriptedProvider{replies: []string{"hi"}})

	rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/llm-providers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := resp["data"].(map[string]any)
	assert.Equal(t, "scripted", data["default_provider"])
}

func TestConversationFlow(t *testing.T) {
	const extraction = `{"has_previous_reaction": true, "has_kidney_issues": false, "takes_metformin": false,` +
		` "reported_symptoms": ["hives"], "patient_concerns": "no concerns",` +
		` "full_summary": "Patient reports mild hives after a prior scan."}`

	provider := &scriptedProvider{replies: []string{
		"Could you tell me more about that?",
		extraction,
	}}
	router := newTestRouter(provider)

	// Start
	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/conversation/start", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := resp["data"].(map[string]any)
	sessionID := data["session_id"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "active", data["status"])
	assert.NotEmpty(t, data["greeting"])

	// Message
	rec, resp = doJSON(t, router, http.MethodPost, "/api/v1/conversation/"+sessionID+"/message",
		map[string]string{"message": "I had hives after my last scan"})
	require.Equal(t, http.StatusOK, rec.Code)
	data = resp["data"].(map[string]any)
	assert.Equal(t, "Could you tell me more about that?", data["reply"])
	assert.Equal(t, false, data["conversation_ended"])

	// End
	rec, resp = doJSON(t, router, http.MethodPost, "/api/v1/conversation/"+sessionID+"/end", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = resp["data"].(map[string]any)
	assert.Equal(t, "completed", data["status"])
	record := data["pro_ctcae_data"].(map[string]any)
	entries := record["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "Hives", entries[0].(map[string]any)["symptom_term"])

	// Message after completion is rejected
	rec, _ = doJSON(t, router, http.MethodPost, "/api/v1/conversation/"+sessionID+"/message",
		map[string]string{"message": "one more thing"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Status reflects completion
	rec, resp = doJSON(t, router, http.MethodGet, "/api/v1/conversation/"+sessionID+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = resp["data"].(map[string]any)
	assert.Equal(t, "completed", data["status"])

	// History hides nothing patient-visible
	rec, resp = doJSON(t, router, http.MethodGet, "/api/v1/conversation/"+sessionID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = resp["data"].(map[string]any)
	messages := data["messages"].([]any)
	assert.Len(t, messages, 3)

	// Delete
	rec, _ = doJSON(t, router, http.MethodDelete, "/api/v1/conversation/"+sessionID+"/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = doJSON(t, router, http.MethodGet, "/api/v1/conversation/"+sessionID+"/status", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConversationValidation(t *testing.T) {
	router := newTestRouter(&scriptedProvider{replies: []string{"hi"}})

	// Malformed session ID
	rec, _ := doJSON(t, router, http.MethodGet, "/api/v1/conversation/not-a-uuid/status", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty message
	rec, resp := doJSON(t, router, http.MethodPost, "/api/v1/conversation/start", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	sessionID := resp["data"].(map[string]any)["session_id"].(string)

	rec, _ = doJSON(t, router, http.MethodPost, "/api/v1/conversation/"+sessionID+"/message",
		map[string]string{"message": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown session
	rec, _ = doJSON(t, router, http.MethodPost, "/api/v1/conversation/8b8f34b1-4f9c-4a6e-9d3f-0a1b2c3d4e5f/message",
		map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndCleanup(t *testing.T) {
	router := newTestRouter(&scriptedProvider{replies: []string{"hi"}})

	for i := 0; i < 3; i++ {
		rec, _ := doJSON(t, router, http.MethodPost, "/api/v1/conversation/start", nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/conversations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(3), data["count"])

	// max_age_hours 0 removes everything
	rec, resp = doJSON(t, router, http.MethodPost, "/api/v1/cleanup", map[string]int{"max_age_hours": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	data = resp["data"].(map[string]any)
	assert.Equal(t, float64(3), data["removed"])

	rec, resp = doJSON(t, router, http.MethodGet, "/api/v1/conversations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = resp["data"].(map[string]any)
	assert.Equal(t, float64(0), data["count"])
}
