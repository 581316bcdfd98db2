package services

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorIndex holds one document's chunk embeddings and answers exact
// k-nearest-neighbour queries by cosine similarity.
// An index is immutable once built; replacing a document builds a new index.
// Safe for concurrent searches.
type VectorIndex struct {
	dimensions int
	entries    []indexEntry
}

type indexEntry struct {
	chunk  domain.Chunk
	vector []float32
	norm   float64
}

// BuildIndex builds an index from chunks and their embeddings, pairwise by position.
// Fails with domain.ErrEmptyCorpus when there are no chunks or the counts differ,
// and with domain.ErrDimensionMismatch when vectors are empty or differ in length.
func BuildIndex(chunks []domain.Chunk, embeddings [][]float32) (*VectorIndex, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no chunks", domain.ErrEmptyCorpus)
	}
	if len(chunks) != len(embeddings) {
		return nil, fmt.Errorf("%w: %d chunks but %d embeddings", domain.ErrEmptyCorpus, len(chunks), len(embeddings))
	}

	dims := len(embeddings[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: zero-length embedding", domain.ErrDimensionMismatch)
	}

	entries := make([]indexEntry, len(chunks))
	for i, vec := range embeddings {
		if len(vec) != dims {
			return nil, fmt.Errorf("%w: embedding %d has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, i, len(vec), dims)
		}
		// Copy so later mutation by the caller cannot reach the index
		v := make([]float32, dims)
		copy(v, vec)
		entries[i] = indexEntry{chunk: chunks[i], vector: v, norm: norm(v)}
	}

	return &VectorIndex{dimensions: dims, entries: entries}, nil
}

// Dimensions returns the fixed vector length of the index
func (idx *VectorIndex) Dimensions() int {
	return idx.dimensions
}

// Len returns the number of indexed chunks
func (idx *VectorIndex) Len() int {
	return len(idx.entries)
}

// Chunks returns the indexed chunks in ID order
func (idx *VectorIndex) Chunks() []domain.Chunk {
	out := make([]domain.Chunk, len(idx.entries))
	for i, e := range idx.entries {
		out[i] = e.chunk
	}
	return out
}

// Search returns the min(k, Len()) chunks most similar to query, by descending
// cosine similarity with ties broken by ascending chunk ID.
func (idx *VectorIndex) Search(query []float32, k int) ([]domain.SearchHit, error) {
	if idx == nil || len(idx.entries) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dimensions)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if k > len(idx.entries) {
		k = len(idx.entries)
	}

	qNorm := norm(query)

	// Min-heap of the best k so far; the root is the weakest kept hit
	h := make(hitHeap, 0, k)
	for _, e := range idx.entries {
		hit := domain.SearchHit{Chunk: e.chunk, Score: cosine(query, qNorm, e.vector, e.norm)}
		if len(h) < k {
			heap.Push(&h, hit)
		} else if ranksBefore(hit, h[0]) {
			h[0] = hit
			heap.Fix(&h, 0)
		}
	}

	hits := make([]domain.SearchHit, len(h))
	for i := len(hits) - 1; i >= 0; i-- {
		hits[i] = heap.Pop(&h).(domain.SearchHit)
	}
	return hits, nil
}

// ranksBefore reports whether a should be listed ahead of b.
func ranksBefore(a, b domain.SearchHit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Chunk.ID < b.Chunk.ID
}

// hitHeap is a min-heap under ranksBefore: the root ranks last.
type hitHeap []domain.SearchHit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return ranksBefore(h[j], h[i]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x any) {
	*h = append(*h, x.(domain.SearchHit))
}

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Returns 0 when lengths differ or either vector has zero norm.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	return cosine(a, norm(a), b, norm(b))
}

func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	s := dot / (aNorm * bNorm)
	// Rounding can push parallel vectors a hair past 1
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
