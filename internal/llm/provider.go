package llm

import (
	"context"

	"github.com/raecer/intake-api/internal/domain"
)

// Request contains conversational generation parameters. Messages are passed
// in conversation order; System carries the intake persona prompt.
type Request struct {
	Messages  []domain.Message
	System    string
	MaxTokens int
}

// Response contains the generation result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for conversational model providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate produces the next assistant reply for a conversation
	Generate(ctx context.Context, req Request, model string) (*Response, error)
}
