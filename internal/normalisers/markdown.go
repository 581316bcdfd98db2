package normalisers

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.Normaliser = (*Markdown)(nil)

// Markdown strips Markdown syntax and keeps the prose.
// Fenced code is kept as text since questions often target it.
type Markdown struct{}

// NewMarkdown creates a Markdown normaliser.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

func (n *Markdown) Normalise(_ context.Context, content []byte) (string, error) {
	text, err := decodeUTF8(content)
	if err != nil {
		return "", err
	}
	return stripMarkdown(normaliseNewlines(text)), nil
}

func (n *Markdown) SupportedTypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

func (n *Markdown) Priority() int {
	return 50 // Format-specific
}

var (
	mdFence       = regexp.MustCompile("(?m)^```.*$")
	mdInlineCode  = regexp.MustCompile("`([^`]+)`")
	mdImage       = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	mdLink        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdHeading     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdEmphasis    = regexp.MustCompile(`(\*\*|__|\*|~~)([^*_~\n]+)(\*\*|__|\*|~~)`)
	mdBlockquote  = regexp.MustCompile(`(?m)^>\s?`)
	mdRule        = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	mdBullet      = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	mdNumbered    = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	mdMultiBlanks = regexp.MustCompile(`\n{3,}`)
)

func stripMarkdown(content string) string {
	content = mdFence.ReplaceAllString(content, "")
	content = mdInlineCode.ReplaceAllString(content, "$1")
	content = mdImage.ReplaceAllString(content, "$1")
	content = mdLink.ReplaceAllString(content, "$1")
	content = mdRule.ReplaceAllString(content, "")
	content = mdHeading.ReplaceAllString(content, "")
	content = mdEmphasis.ReplaceAllString(content, "$2")
	content = mdBlockquote.ReplaceAllString(content, "")
	content = mdBullet.ReplaceAllString(content, "")
	content = mdNumbered.ReplaceAllString(content, "")
	content = mdMultiBlanks.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
