package domain

import (
	"context"
	"errors"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidConfig indicates chunking or retrieval settings are unusable
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnsupportedFormat indicates no normaliser handles the uploaded file type
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrParseError indicates the uploaded file could not be turned into text
	ErrParseError = errors.New("parse error")

	// ErrEmbeddingUnavailable indicates the embedding provider failed or is not configured
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrGenerationUnavailable indicates the language model failed or is not configured
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrDimensionMismatch indicates a vector length differs from the index dimension
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyIndex indicates a search against an index holding no vectors
	ErrEmptyIndex = errors.New("empty index")

	// ErrEmptyCorpus indicates an index build with no chunks or mismatched inputs
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrSessionBusy indicates another operation is in flight for the session
	ErrSessionBusy = errors.New("session busy")

	// ErrRetrieval indicates the similarity search step failed
	ErrRetrieval = errors.New("retrieval failed")
)

// ErrorClass groups errors by how a caller is expected to react.
type ErrorClass string

const (
	ErrorClassConfig      ErrorClass = "config"      // fix configuration before retrying
	ErrorClassIngestion   ErrorClass = "ingestion"   // report to user, nothing changed
	ErrorClassRecoverable ErrorClass = "recoverable" // retry the same call later
	ErrorClassInvariant   ErrorClass = "invariant"   // programming or config bug, fatal for the call
	ErrorClassContention  ErrorClass = "contention"  // retry once the current operation finishes
	ErrorClassCancelled   ErrorClass = "cancelled"
	ErrorClassUnknown     ErrorClass = "unknown"
)

// Classify maps an error to its ErrorClass.
// Retrieval failures take the class of their cause when it is known.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidConfig):
		return ErrorClassConfig
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrParseError):
		return ErrorClassIngestion
	case errors.Is(err, ErrSessionBusy):
		return ErrorClassContention
	case errors.Is(err, ErrDimensionMismatch), errors.Is(err, ErrEmptyIndex), errors.Is(err, ErrEmptyCorpus):
		return ErrorClassInvariant
	case errors.Is(err, ErrEmbeddingUnavailable), errors.Is(err, ErrGenerationUnavailable), errors.Is(err, ErrServiceUnavailable):
		return ErrorClassRecoverable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorClassCancelled
	case errors.Is(err, ErrRetrieval):
		return ErrorClassInvariant
	default:
		return ErrorClassUnknown
	}
}

// IsRecoverable returns true if the session stays usable and the same call may be retried.
func IsRecoverable(err error) bool {
	switch Classify(err) {
	case ErrorClassRecoverable, ErrorClassContention, ErrorClassCancelled:
		return true
	default:
		return false
	}
}
