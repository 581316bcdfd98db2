package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// statusForError maps domain sentinels to HTTP status codes.
// Order matters: a retrieval failure takes the status of its cause.
func statusForError(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrParseError):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidProvider),
		errors.Is(err, domain.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrGenerationUnavailable),
		errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		// Invariant violations and unknown failures
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err with its mapped status.
// Server errors hide their detail behind a generic message.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable && status != http.StatusGatewayTimeout {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error_class", domain.Classify(err),
			"error", err,
		)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
