package domain

// DefaultTopK is the number of chunks retrieved per question
const DefaultTopK = 4

// SearchHit is one nearest-neighbour result with its cosine similarity
type SearchHit struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// Chunks extracts the chunks from a ranked hit list, preserving order.
func Chunks(hits []SearchHit) []Chunk {
	chunks := make([]Chunk, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
	}
	return chunks
}
