package normalisers

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Plaintext)(nil)

// Plaintext handles UTF-8 text of any text/* type.
type Plaintext struct{}

// NewPlaintext creates a plaintext normaliser.
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

func (n *Plaintext) Normalise(_ context.Context, content []byte) (string, error) {
	text, err := decodeUTF8(content)
	if err != nil {
		return "", err
	}
	return normaliseNewlines(text), nil
}

func (n *Plaintext) SupportedTypes() []string {
	return []string{"text/plain", "text/*"}
}

func (n *Plaintext) Priority() int {
	return 10 // Generic
}

// decodeUTF8 validates content and strips a leading byte order mark.
func decodeUTF8(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: content is not valid UTF-8", domain.ErrParseError)
	}
	return strings.TrimPrefix(string(content), "\ufeff"), nil
}

func normaliseNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
