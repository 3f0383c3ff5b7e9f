package service

import "errors"

// Failure kinds surfaced to callers. Ingestion-path failures abort the whole
// document; query-path failures are returned with their kind intact so the
// handler can distinguish a service outage from a genuine "not found".
var (
	ErrNoExtractableText     = errors.New("no extractable text content")
	ErrEmbeddingUnavailable  = errors.New("embedding service unavailable")
	ErrGenerationUnavailable = errors.New("generation service unavailable")
	ErrEmptyQuestion         = errors.New("question must not be empty")
	ErrEmailTaken            = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
)
