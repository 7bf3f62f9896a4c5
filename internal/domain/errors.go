package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidState is returned when an operation is attempted against a
	// session whose status forbids it.
	ErrInvalidState = errors.New("invalid session state")

	// ErrUpstreamFailure is returned when a collaborator (conversational model
	// or entity extractor) fails or times out.
	ErrUpstreamFailure = errors.New("upstream collaborator failure")

	// ErrMalformedSummary is returned when the model's extraction reply cannot
	// be parsed into the expected patient summary structure.
	ErrMalformedSummary = errors.New("malformed patient summary")

	// ErrBackendUnavailable is returned when the persistence backend is
	// unreachable. Fatal at startup; there is no fallback to volatile memory.
	ErrBackendUnavailable = errors.New("session backend unavailable")
)
