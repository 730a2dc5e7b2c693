package service

import "fmt"

// EmbeddingError means the query could not be vectorized. It is fatal for
// the turn and maps to a service-unavailable response.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// SearchError means the knowledge store query failed. The chat pipeline
// treats a recoverable search failure as zero candidates rather than
// failing the turn.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("knowledge search failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// GenerationErrorKind distinguishes failure classes of the answer
// generation call. Only the HTTP status presented to the caller depends on
// the kind, never the retrieval control flow.
type GenerationErrorKind string

const (
	GenerationFailed        GenerationErrorKind = "failed"
	GenerationQuotaExceeded GenerationErrorKind = "quota_exceeded"
	GenerationModelNotFound GenerationErrorKind = "model_not_found"
)

type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
