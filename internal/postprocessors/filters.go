package postprocessors

import (
	"strings"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// WhitespaceNormalizer normalizes whitespace in document text.
type WhitespaceNormalizer struct{}

// Verify interface compliance
var _ driven.TextFilter = (*WhitespaceNormalizer)(nil)

// NewWhitespaceNormalizer creates a new whitespace normalizer.
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

// Filter normalizes line endings, collapses runs of spaces and tabs,
// and limits blank lines to one.
func (w *WhitespaceNormalizer) Filter(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.Join(lines, "\n")

	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(text)
}

// Name returns the filter name.
func (w *WhitespaceNormalizer) Name() string {
	return "whitespace-normalizer"
}

// Order returns 10.
func (w *WhitespaceNormalizer) Order() int {
	return 10
}

// ControlCharStripper removes non-printable control characters that
// text extraction sometimes leaves behind (form feeds, NULs).
type ControlCharStripper struct{}

// Verify interface compliance
var _ driven.TextFilter = (*ControlCharStripper)(nil)

// NewControlCharStripper creates a new control character stripper.
func NewControlCharStripper() *ControlCharStripper {
	return &ControlCharStripper{}
}

// Filter drops control characters other than newline and tab.
func (s *ControlCharStripper) Filter(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' && r != '\r' {
			if r == '\f' {
				return '\n'
			}
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, text)
}

// Name returns the filter name.
func (s *ControlCharStripper) Name() string {
	return "control-char-stripper"
}

// Order returns 5 - runs before whitespace normalisation.
func (s *ControlCharStripper) Order() int {
	return 5
}
