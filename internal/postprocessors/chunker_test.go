package postprocessors

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestSplit_ThousandCharsWithOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100)

	chunks, err := Split(text, 300, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][2]int{{0, 300}, {250, 550}, {500, 800}, {750, 1000}}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, w := range want {
		c := chunks[i]
		if c.ID != i {
			t.Errorf("chunk %d: expected ID %d, got %d", i, i, c.ID)
		}
		if c.SourceOffset != w[0] || c.EndOffset != w[1] {
			t.Errorf("chunk %d: expected [%d,%d), got [%d,%d)", i, w[0], w[1], c.SourceOffset, c.EndOffset)
		}
		if c.Text != text[w[0]:w[1]] {
			t.Errorf("chunk %d: text does not match source span", i)
		}
	}
}

func TestSplit_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -10, 0},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"negative overlap", 100, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text", tt.max, tt.overlap)
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	chunks, err := Split("", 100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestSplit_ShortText(t *testing.T) {
	chunks, err := Split("Hello, world!", 100, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "Hello, world!" || chunks[0].SourceOffset != 0 || chunks[0].EndOffset != 13 {
		t.Errorf("unexpected chunk: %+v", chunks[0])
	}
}

func TestSplit_ExactMultiple(t *testing.T) {
	// 250 chars, window 100, stride 75: [0,100) [75,175) [150,250)
	chunks, err := Split(strings.Repeat("x", 250), 100, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[2].SourceOffset != 150 || chunks[2].EndOffset != 250 {
		t.Errorf("unexpected last chunk span [%d,%d)", chunks[2].SourceOffset, chunks[2].EndOffset)
	}
}

func TestSplit_ZeroOverlap(t *testing.T) {
	chunks, err := Split(strings.Repeat("y", 30), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 adjacent chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].SourceOffset != chunks[i-1].EndOffset {
			t.Errorf("chunks %d and %d should be adjacent", i-1, i)
		}
	}
}

func TestSplit_MultibyteOffsetsAreCharacters(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 20) // 140 characters, 420 bytes

	chunks, err := Split(text, 50, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runes := []rune(text)
	for _, c := range chunks {
		if !utf8.ValidString(c.Text) {
			t.Fatalf("chunk %d is not valid UTF-8", c.ID)
		}
		if c.Text != string(runes[c.SourceOffset:c.EndOffset]) {
			t.Errorf("chunk %d text does not match rune span", c.ID)
		}
		if utf8.RuneCountInString(c.Text) > 50 {
			t.Errorf("chunk %d longer than 50 characters", c.ID)
		}
	}
	if last := chunks[len(chunks)-1]; last.EndOffset != len(runes) {
		t.Errorf("expected last chunk to end at %d, got %d", len(runes), last.EndOffset)
	}
}

// assertCoverage checks that chunks reconstruct text with no gaps and respect the size bound.
func assertCoverage(t *testing.T, text string, chunks []domain.Chunk, max, overlap int) {
	t.Helper()
	runes := []rune(text)

	if len(runes) == 0 {
		if len(chunks) != 0 {
			t.Errorf("expected no chunks for empty text")
		}
		return
	}

	var rebuilt []rune
	covered := 0
	for i, c := range chunks {
		if c.ID != i {
			t.Fatalf("chunk IDs must be sequential, got %d at %d", c.ID, i)
		}
		if c.Len() > max || c.Len() <= 0 {
			t.Fatalf("chunk %d has length %d, bound %d", i, c.Len(), max)
		}
		if c.SourceOffset > covered {
			t.Fatalf("gap before chunk %d: covered to %d, chunk starts at %d", i, covered, c.SourceOffset)
		}
		if i > 0 && c.SourceOffset <= chunks[i-1].SourceOffset {
			t.Fatalf("chunk %d does not advance", i)
		}
		if i > 0 && chunks[i-1].EndOffset-c.SourceOffset > overlap {
			t.Fatalf("chunk %d overlaps previous by more than %d", i, overlap)
		}
		rebuilt = append(rebuilt, []rune(c.Text)[covered-c.SourceOffset:]...)
		covered = c.EndOffset
	}

	if string(rebuilt) != text {
		t.Errorf("chunks do not reconstruct the source text")
	}
}

func TestSplit_CoverageProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abc def. ghi!\n\néü語")

	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(2000)
		buf := make([]rune, n)
		for i := range buf {
			buf[i] = alphabet[rng.Intn(len(alphabet))]
		}
		text := string(buf)
		max := 1 + rng.Intn(300)
		overlap := rng.Intn(max)

		for _, preserve := range []bool{false, true} {
			c, err := NewChunker(ChunkConfig{MaxChunkSize: max, Overlap: overlap, PreserveBoundaries: preserve})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertCoverage(t, text, c.Split(text), max, overlap)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50)

	first, err := Split(text, 120, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := Split(text, 120, 30)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical output for identical input")
	}
}

func TestChunker_PreserveBoundaries(t *testing.T) {
	text := "First sentence is here. Second sentence follows it. Third one ends the paragraph."

	c, err := NewChunker(ChunkConfig{MaxChunkSize: 40, Overlap: 5, PreserveBoundaries: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "First sentence is here. " {
		t.Errorf("expected first chunk to end at sentence boundary, got %q", chunks[0].Text)
	}
	assertCoverage(t, text, chunks, 40, 5)
}

func TestChunker_PreferParagraphBreak(t *testing.T) {
	text := "Para one words.\n\nPara two has more words in it than fit"

	c, _ := NewChunker(ChunkConfig{MaxChunkSize: 30, Overlap: 0, PreserveBoundaries: true})
	chunks := c.Split(text)

	if chunks[0].Text != "Para one words.\n\n" {
		t.Errorf("expected paragraph break, got %q", chunks[0].Text)
	}
}

func TestFindBreakPoint_NoBoundary(t *testing.T) {
	runes := []rune(strings.Repeat("a", 50))
	if bp := findBreakPoint(runes, 0, 40); bp != 40 {
		t.Errorf("expected maxEnd 40 when no boundary exists, got %d", bp)
	}
}
