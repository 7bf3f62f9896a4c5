// Package ner provides clinical named-entity extraction via a hosted
// token-classification model.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Extractor extracts clinical entities from free text, grouped by entity
// category. An empty map is a valid result.
type Extractor interface {
	Extract(ctx context.Context, text string) (map[string][]string, error)
}

// HTTPExtractor calls a hosted token-classification inference endpoint
// (Hugging Face inference API shape) and groups the returned spans by
// entity category, deduplicating surface strings within each category.
type HTTPExtractor struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPExtractor creates an extractor against the given inference endpoint.
// The token is optional for self-hosted endpoints.
func NewHTTPExtractor(endpoint, token string) *HTTPExtractor {
	return &HTTPExtractor{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// IsConfigured checks whether an endpoint is set
func (e *HTTPExtractor) IsConfigured() bool {
	return e.endpoint != ""
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type entitySpan struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
}

// Extract returns the entities found in text, keyed by entity category.
func (e *HTTPExtractor) Extract(ctx context.Context, text string) (map[string][]string, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var spans []entitySpan
	if err := json.Unmarshal(respBody, &spans); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	entities := make(map[string][]string)
	for _, span := range spans {
		if span.EntityGroup == "" || span.Word == "" {
			continue
		}
		if contains(entities[span.EntityGroup], span.Word) {
			continue
		}
		entities[span.EntityGroup] = append(entities[span.EntityGroup], span.Word)
	}

	return entities, nil
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
