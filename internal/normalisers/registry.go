package normalisers

import (
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry picks the text extractor for an upload from the MIME type the
// ingestor derived from its filename or content. Extractors are kept ordered
// by priority, so a format-specific one (markdown) wins over a text/* fallback
// and ties go to whichever was registered first.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.Normaliser
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds an extractor at its priority position.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := sort.Search(len(r.extractors), func(i int) bool {
		return r.extractors[i].Priority() < n.Priority()
	})
	r.extractors = append(r.extractors, nil)
	copy(r.extractors[at+1:], r.extractors[at:])
	r.extractors[at] = n
}

// Get returns the extractor for mimeType, or nil when uploads of that type
// are unsupported.
func (r *Registry) Get(mimeType string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mimeType = baseMIMEType(mimeType)
	for _, n := range r.extractors {
		if accepts(n.SupportedTypes(), mimeType) {
			return n
		}
	}
	return nil
}

// Candidates lists every extractor able to read mimeType, best first.
func (r *Registry) Candidates(mimeType string) []driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mimeType = baseMIMEType(mimeType)
	var out []driven.Normaliser
	for _, n := range r.extractors {
		if accepts(n.SupportedTypes(), mimeType) {
			out = append(out, n)
		}
	}
	return out
}

// List returns the upload types the registry accepts, sorted. Wildcard
// patterns such as text/* are listed as registered.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for _, n := range r.extractors {
		for _, t := range n.SupportedTypes() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	sort.Strings(types)
	return types
}

// accepts reports whether mimeType (already lowercased, no parameters)
// matches one of patterns. "type/*" and "*/*" are wildcards.
func accepts(patterns []string, mimeType string) bool {
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case p == mimeType, p == "*/*":
			return true
		case strings.HasSuffix(p, "/*") && strings.HasPrefix(mimeType, p[:len(p)-1]):
			return true
		}
	}
	return false
}

// baseMIMEType lowercases and strips parameters such as charset.
func baseMIMEType(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// DefaultRegistry accepts plain text, markdown, HTML and PDF uploads.
// PDF extraction shells out to pdftotext and reports ErrUnsupportedFormat
// when it is missing.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewPlaintext())
	r.Register(NewMarkdown())
	r.Register(NewHTML())
	r.Register(NewPDF())
	return r
}
