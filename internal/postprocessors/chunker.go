package postprocessors

import (
	"fmt"
	"unicode"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// breakSearchWindow is how far back from a window end the chunker looks for a boundary.
const breakSearchWindow = 100

// ChunkConfig configures the chunker behavior.
type ChunkConfig struct {
	// MaxChunkSize is the maximum characters per chunk
	MaxChunkSize int

	// Overlap is the character overlap between consecutive chunks
	Overlap int

	// PreserveBoundaries pulls a window end back to the nearest paragraph,
	// sentence or word boundary when one is close enough.
	// Off by default: windows are then exactly MaxChunkSize wide.
	PreserveBoundaries bool
}

// DefaultChunkConfig returns sensible defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChunkSize: 1000,
		Overlap:      200,
	}
}

// Validate checks the window sizes.
func (c ChunkConfig) Validate() error {
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max chunk size must be positive, got %d", domain.ErrInvalidConfig, c.MaxChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidConfig, c.Overlap)
	}
	if c.Overlap >= c.MaxChunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than max chunk size %d",
			domain.ErrInvalidConfig, c.Overlap, c.MaxChunkSize)
	}
	return nil
}

// Split slides a window of maxChunkSize characters across text, stepping by
// maxChunkSize-overlap, and returns the windows as chunks. The last chunk may be
// shorter. Chunks cover the text with no gaps.
func Split(text string, maxChunkSize, overlap int) ([]domain.Chunk, error) {
	c, err := NewChunker(ChunkConfig{MaxChunkSize: maxChunkSize, Overlap: overlap})
	if err != nil {
		return nil, err
	}
	return c.Split(text), nil
}

// Chunker splits text into overlapping chunks.
// It is the final stage of the pipeline.
type Chunker struct {
	config ChunkConfig
}

// NewChunker creates a new chunker with the given config.
func NewChunker(config ChunkConfig) (*Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{config: config}, nil
}

// Config returns the chunker configuration.
func (c *Chunker) Config() ChunkConfig {
	return c.config
}

// Split splits text into chunks. Empty text yields no chunks.
func (c *Chunker) Split(text string) []domain.Chunk {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return []domain.Chunk{}
	}

	chunks := make([]domain.Chunk, 0, n/(c.config.MaxChunkSize-c.config.Overlap)+1)
	start := 0

	for {
		end := start + c.config.MaxChunkSize
		if end > n {
			end = n
		}

		// Only accept a boundary that still moves the next window forward
		if end < n && c.config.PreserveBoundaries {
			if bp := findBreakPoint(runes, start, end); bp-start > c.config.Overlap {
				end = bp
			}
		}

		chunks = append(chunks, domain.Chunk{
			ID:           len(chunks),
			Text:         string(runes[start:end]),
			SourceOffset: start,
			EndOffset:    end,
		})

		if end >= n {
			break
		}
		start = end - c.config.Overlap
	}

	return chunks
}

// findBreakPoint returns the position just after the best boundary in
// runes[max(start, maxEnd-breakSearchWindow):maxEnd], or maxEnd if none exists.
func findBreakPoint(runes []rune, start, maxEnd int) int {
	searchStart := maxEnd - breakSearchWindow
	if searchStart < start {
		searchStart = start
	}

	// Paragraph boundary (double newline)
	for i := maxEnd - 1; i > searchStart; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}

	// Sentence boundary
	for i := maxEnd - 1; i > searchStart; i-- {
		if unicode.IsSpace(runes[i]) && isSentenceEnd(runes[i-1]) {
			return i + 1
		}
	}

	// Word boundary
	for i := maxEnd - 1; i >= searchStart; i-- {
		if runes[i] == ' ' {
			return i + 1
		}
	}

	return maxEnd
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
