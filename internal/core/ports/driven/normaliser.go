package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Normaliser turns the raw bytes of one file format into plain UTF-8 text.
type Normaliser interface {
	// Normalise extracts text from raw content.
	// Returns domain.ErrParseError when the content cannot be read.
	Normalise(ctx context.Context, content []byte) (string, error)

	// SupportedTypes returns MIME types this normaliser handles.
	// Can include wildcards like "text/*" or specific types like "text/markdown".
	SupportedTypes() []string

	// Priority returns the normaliser priority (higher = more specific).
	// Priority ranges:
	//   50-89:  Format-specific (PDF, Markdown, HTML)
	//   10-49:  Generic (basic text processing)
	//   1-9:    Fallback (raw text extraction)
	Priority() int
}

// NormaliserRegistry manages content normalisers.
// When multiple normalisers match a MIME type, the highest priority one is used.
type NormaliserRegistry interface {
	// Get retrieves the best-matching normaliser for a MIME type.
	// Returns nil if no normaliser is registered for the type.
	Get(mimeType string) Normaliser

	// Register registers a normaliser.
	Register(normaliser Normaliser)

	// List returns all registered MIME types.
	List() []string
}

// DocumentIngestor converts an upload into a Document.
type DocumentIngestor interface {
	// Ingest fails with domain.ErrUnsupportedFormat or domain.ErrParseError.
	Ingest(ctx context.Context, raw []byte, filename string) (*domain.Document, error)
}

// TextFilter rewrites document text before it is chunked.
// Filters form a pipeline ahead of the chunker: Whitespace -> ... -> Chunker.
type TextFilter interface {
	// Filter returns the rewritten text
	Filter(text string) string

	// Name returns the filter name for logging/debugging.
	Name() string

	// Order returns the filter order in the pipeline (lower = earlier).
	Order() int
}

// ChunkPipeline turns document text into chunks ready for embedding.
type ChunkPipeline interface {
	// Process applies all filters in order, then splits the result.
	// It returns the filtered text; chunk offsets index into it.
	Process(content string) (string, []domain.Chunk, error)

	// Add adds a filter to the pipeline.
	Add(filter TextFilter)

	// List returns filter names in order, ending with the chunker.
	List() []string
}
