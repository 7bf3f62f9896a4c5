package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/raecer/intake-api/internal/llm"
	"github.com/raecer/intake-api/internal/repository/sqlite"
)

// MockProvider mocks the llm.Provider interface
type MockProvider struct {
	mock.Mock
	name string
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) AvailableModels() []string { return []string{"test-model"} }

func (m *MockProvider) DefaultModel() string { return "test-model" }

func (m *MockProvider) IsConfigured() bool { return true }

func (m *MockProvider) Generate(ctx context.Context, req llm.Request, model string) (*llm.Response, error) {
	args := m.Called(ctx, req, model)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Response), args.Error(1)
}

// MockExtractor mocks the ner.Extractor interface
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, text string) (map[string][]string, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

// MockArchiver mocks the Archiver interface
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) SaveAssessment(ctx context.Context, assessment sqlite.ArchivedAssessment) error {
	args := m.Called(ctx, assessment)
	return args.Error(0)
}
