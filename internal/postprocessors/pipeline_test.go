package postprocessors

import (
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestDefaultPipeline(t *testing.T) {
	p, err := DefaultPipeline(DefaultChunkConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := p.List()
	if len(names) != 3 {
		t.Fatalf("expected 3 stages, got %v", names)
	}
	if names[len(names)-1] != "chunker" {
		t.Errorf("expected chunker last, got %v", names)
	}
}

func TestDefaultPipeline_InvalidConfig(t *testing.T) {
	_, err := DefaultPipeline(ChunkConfig{MaxChunkSize: 10, Overlap: 10})
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPipeline_Process_AppliesFiltersInOrder(t *testing.T) {
	c, _ := NewChunker(ChunkConfig{MaxChunkSize: 1000, Overlap: 0})
	p := NewPipeline(c)
	// Added out of order on purpose
	p.Add(NewWhitespaceNormalizer())
	p.Add(NewControlCharStripper())

	text, chunks, err := p.Process("Hello\x00   world\f\f\fagain\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "Hello world\n\nagain" {
		t.Errorf("unexpected text %q", chunks[0].Text)
	}
	if text != chunks[0].Text {
		t.Errorf("filtered text %q does not match chunk %q", text, chunks[0].Text)
	}
}

func TestPipeline_Process_Empty(t *testing.T) {
	p, _ := DefaultPipeline(DefaultChunkConfig())

	_, chunks, err := p.Process("   \n\n  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for blank text, got %d", len(chunks))
	}
}

func TestPipeline_Process_LargeContent(t *testing.T) {
	p, _ := DefaultPipeline(ChunkConfig{MaxChunkSize: 200, Overlap: 20})

	_, chunks, err := p.Process(strings.Repeat("word ", 500))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 10 {
		t.Errorf("expected many chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.ID != i {
			t.Errorf("expected sequential IDs, chunk %d has %d", i, c.ID)
		}
	}
}

func TestWhitespaceNormalizer(t *testing.T) {
	w := NewWhitespaceNormalizer()

	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{"a\t\tb", "a b"},
		{"line1\r\nline2", "line1\nline2"},
		{"p1\n\n\n\n\np2", "p1\n\np2"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := w.Filter(tt.input); got != tt.want {
			t.Errorf("Filter(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
	if w.Name() != "whitespace-normalizer" {
		t.Errorf("unexpected name %s", w.Name())
	}
}

func TestControlCharStripper(t *testing.T) {
	s := NewControlCharStripper()

	if got := s.Filter("a\x00b\x07c\x7fd"); got != "abcd" {
		t.Errorf("expected control chars removed, got %q", got)
	}
	if got := s.Filter("page1\fpage2"); got != "page1\npage2" {
		t.Errorf("expected form feed as newline, got %q", got)
	}
	if got := s.Filter("keep\ttabs\nand lines"); got != "keep\ttabs\nand lines" {
		t.Errorf("expected tabs and newlines kept, got %q", got)
	}
	if got := s.Filter("caf\uFFFD ok"); got != "caf\uFFFD ok" {
		t.Errorf("expected replacement character kept, got %q", got)
	}
}

func TestDeduplicator_Dedupe(t *testing.T) {
	d := NewDeduplicator(DefaultDeduplicatorConfig())

	hits := []domain.SearchHit{
		{Chunk: domain.Chunk{ID: 3, Text: "Revenue grew 10%"}, Score: 0.9},
		{Chunk: domain.Chunk{ID: 7, Text: "revenue   grew 10%"}, Score: 0.8},
		{Chunk: domain.Chunk{ID: 1, Text: "Costs fell"}, Score: 0.7},
	}

	got := d.Dedupe(hits)
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	if got[0].Chunk.ID != 3 || got[1].Chunk.ID != 1 {
		t.Errorf("expected higher-ranked duplicate kept in order, got %d, %d", got[0].Chunk.ID, got[1].Chunk.ID)
	}
}

func TestDeduplicator_ShortChunksKept(t *testing.T) {
	d := NewDeduplicator(DeduplicatorConfig{MinDuplicateLength: 10})

	hits := []domain.SearchHit{
		{Chunk: domain.Chunk{ID: 0, Text: "same"}},
		{Chunk: domain.Chunk{ID: 1, Text: "same"}},
	}
	if got := d.Dedupe(hits); len(got) != 2 {
		t.Errorf("expected short chunks to bypass dedupe, got %d", len(got))
	}
}

func TestPipeline_Process_OffsetsIndexFilteredText(t *testing.T) {
	p, _ := DefaultPipeline(ChunkConfig{MaxChunkSize: 40, Overlap: 10})

	text, chunks, err := p.Process("France   is a country.\n\n\n\nIts   capital is Paris.\x00 Paris\thas   the Seine.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	runes := []rune(text)
	for _, c := range chunks {
		if got := string(runes[c.SourceOffset:c.EndOffset]); got != c.Text {
			t.Errorf("chunk %d [%d,%d): text %q, filtered slice %q", c.ID, c.SourceOffset, c.EndOffset, c.Text, got)
		}
	}
	if chunks[len(chunks)-1].EndOffset != len(runes) {
		t.Errorf("last chunk ends at %d, want %d", chunks[len(chunks)-1].EndOffset, len(runes))
	}
}
