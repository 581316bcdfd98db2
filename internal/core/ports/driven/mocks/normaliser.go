package mocks

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var (
	_ driven.Normaliser       = (*MockNormaliser)(nil)
	_ driven.DocumentIngestor = (*MockIngestor)(nil)
)

// MockNormaliser is a mock implementation of Normaliser for testing
type MockNormaliser struct {
	SupportedTypesFn func() []string
	PriorityFn       func() int
	NormaliseFn      func(content []byte) (string, error)
}

func NewMockNormaliser() *MockNormaliser {
	return &MockNormaliser{}
}

func (m *MockNormaliser) Normalise(ctx context.Context, content []byte) (string, error) {
	if m.NormaliseFn != nil {
		return m.NormaliseFn(content)
	}
	return string(content), nil
}

func (m *MockNormaliser) SupportedTypes() []string {
	if m.SupportedTypesFn != nil {
		return m.SupportedTypesFn()
	}
	return []string{"text/plain"}
}

func (m *MockNormaliser) Priority() int {
	if m.PriorityFn != nil {
		return m.PriorityFn()
	}
	return 100
}

// MockIngestor treats every upload as plain text unless IngestFn is set
type MockIngestor struct {
	IngestFn func(raw []byte, filename string) (*domain.Document, error)
}

func (m *MockIngestor) Ingest(ctx context.Context, raw []byte, filename string) (*domain.Document, error) {
	if m.IngestFn != nil {
		return m.IngestFn(raw, filename)
	}
	return &domain.Document{
		Filename:  filename,
		MimeType:  "text/plain",
		Content:   string(raw),
		Size:      len(raw),
		CreatedAt: time.Now(),
	}, nil
}
