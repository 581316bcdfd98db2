package postprocessors

import (
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// DeduplicatorConfig configures the deduplicator.
type DeduplicatorConfig struct {
	// MinDuplicateLength is the minimum chunk length to check for duplicates
	MinDuplicateLength int
}

// DefaultDeduplicatorConfig returns sensible defaults.
func DefaultDeduplicatorConfig() DeduplicatorConfig {
	return DeduplicatorConfig{
		MinDuplicateLength: 1,
	}
}

// Deduplicator drops retrieved hits whose text repeats an earlier, higher-ranked hit.
type Deduplicator struct {
	config DeduplicatorConfig
}

// NewDeduplicator creates a new deduplicator with the given config.
func NewDeduplicator(config DeduplicatorConfig) *Deduplicator {
	return &Deduplicator{config: config}
}

// Dedupe keeps the first occurrence of each normalised text, preserving rank order.
func (d *Deduplicator) Dedupe(hits []domain.SearchHit) []domain.SearchHit {
	if len(hits) <= 1 {
		return hits
	}

	seen := make(map[string]bool, len(hits))
	result := make([]domain.SearchHit, 0, len(hits))

	for _, hit := range hits {
		if len(hit.Chunk.Text) < d.config.MinDuplicateLength {
			result = append(result, hit)
			continue
		}

		// Normalize for comparison
		normalized := strings.Join(strings.Fields(strings.ToLower(hit.Chunk.Text)), " ")

		if !seen[normalized] {
			seen[normalized] = true
			result = append(result, hit)
		}
	}

	return result
}
