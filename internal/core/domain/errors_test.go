package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrInvalidConfig", ErrInvalidConfig, "invalid config"},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat, "unsupported format"},
		{"ErrParseError", ErrParseError, "parse error"},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable, "embedding unavailable"},
		{"ErrGenerationUnavailable", ErrGenerationUnavailable, "generation unavailable"},
		{"ErrDimensionMismatch", ErrDimensionMismatch, "dimension mismatch"},
		{"ErrEmptyIndex", ErrEmptyIndex, "empty index"},
		{"ErrEmptyCorpus", ErrEmptyCorpus, "empty corpus"},
		{"ErrSessionBusy", ErrSessionBusy, "session busy"},
		{"ErrRetrieval", ErrRetrieval, "retrieval failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrInvalidProvider,
		ErrServiceUnavailable,
		ErrInvalidConfig,
		ErrUnsupportedFormat,
		ErrParseError,
		ErrEmbeddingUnavailable,
		ErrGenerationUnavailable,
		ErrDimensionMismatch,
		ErrEmptyIndex,
		ErrEmptyCorpus,
		ErrSessionBusy,
		ErrRetrieval,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ""},
		{"config", fmt.Errorf("%w: overlap 300 >= max 300", ErrInvalidConfig), ErrorClassConfig},
		{"unsupported", fmt.Errorf("%w: .exe", ErrUnsupportedFormat), ErrorClassIngestion},
		{"parse", ErrParseError, ErrorClassIngestion},
		{"busy", ErrSessionBusy, ErrorClassContention},
		{"dimension", ErrDimensionMismatch, ErrorClassInvariant},
		{"empty index", ErrEmptyIndex, ErrorClassInvariant},
		{"empty corpus", ErrEmptyCorpus, ErrorClassInvariant},
		{"embedding", fmt.Errorf("%w: rate limited", ErrEmbeddingUnavailable), ErrorClassRecoverable},
		{"generation", ErrGenerationUnavailable, ErrorClassRecoverable},
		{"cancelled", context.Canceled, ErrorClassCancelled},
		{"retrieval wrapping embedding", fmt.Errorf("%w: %w", ErrRetrieval, ErrEmbeddingUnavailable), ErrorClassRecoverable},
		{"retrieval wrapping dimension", fmt.Errorf("%w: %w", ErrRetrieval, ErrDimensionMismatch), ErrorClassInvariant},
		{"bare retrieval", ErrRetrieval, ErrorClassInvariant},
		{"unknown", errors.New("boom"), ErrorClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRecoverable(t *testing.T) {
	if !IsRecoverable(ErrGenerationUnavailable) {
		t.Error("generation failures should be recoverable")
	}
	if !IsRecoverable(ErrSessionBusy) {
		t.Error("busy sessions should be recoverable")
	}
	if IsRecoverable(ErrInvalidConfig) {
		t.Error("config errors should not be recoverable")
	}
	if IsRecoverable(ErrEmptyCorpus) {
		t.Error("invariant violations should not be recoverable")
	}
}
