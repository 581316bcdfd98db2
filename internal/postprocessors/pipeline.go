package postprocessors

import (
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkPipeline = (*Pipeline)(nil)

// Pipeline implements ChunkPipeline.
// It runs text filters by Order() and hands the result to a Chunker.
type Pipeline struct {
	mu      sync.RWMutex
	filters []driven.TextFilter
	sorted  bool
	chunker *Chunker
}

// NewPipeline creates a new pipeline ending in the given chunker.
func NewPipeline(chunker *Chunker) *Pipeline {
	return &Pipeline{
		filters: make([]driven.TextFilter, 0),
		chunker: chunker,
	}
}

// Add adds a filter to the pipeline.
// Filters are sorted by Order() before processing.
func (p *Pipeline) Add(filter driven.TextFilter) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.filters = append(p.filters, filter)
	p.sorted = false
}

// Process applies all filters in order, then splits the text.
// The filtered text is returned so callers can keep it as the document content.
func (p *Pipeline) Process(content string) (string, []domain.Chunk, error) {
	p.mu.Lock()
	if !p.sorted {
		sort.SliceStable(p.filters, func(i, j int) bool {
			return p.filters[i].Order() < p.filters[j].Order()
		})
		p.sorted = true
	}
	filters := make([]driven.TextFilter, len(p.filters))
	copy(filters, p.filters)
	p.mu.Unlock()

	for _, f := range filters {
		content = f.Filter(content)
	}

	return content, p.chunker.Split(content), nil
}

// List returns filter names in order, ending with the chunker.
func (p *Pipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.filters)+1)
	for _, f := range p.filters {
		names = append(names, f.Name())
	}
	return append(names, "chunker")
}

// DefaultPipeline creates a pipeline with the default filters.
// Fails with domain.ErrInvalidConfig when the chunk config is unusable.
func DefaultPipeline(config ChunkConfig) (*Pipeline, error) {
	chunker, err := NewChunker(config)
	if err != nil {
		return nil, err
	}
	p := NewPipeline(chunker)
	p.Add(NewControlCharStripper())
	p.Add(NewWhitespaceNormalizer())
	return p, nil
}
