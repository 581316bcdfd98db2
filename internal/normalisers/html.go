package normalisers

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.Normaliser = (*HTML)(nil)

// HTML extracts readable text from HTML documents.
type HTML struct{}

// NewHTML creates an HTML normaliser.
func NewHTML() *HTML {
	return &HTML{}
}

func (n *HTML) Normalise(_ context.Context, content []byte) (string, error) {
	text, err := decodeUTF8(content)
	if err != nil {
		return "", err
	}
	return stripHTML(text), nil
}

func (n *HTML) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

func (n *HTML) Priority() int {
	return 50 // Format-specific
}

var (
	htmlDropBlocks = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
		regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`),
		regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`),
		regexp.MustCompile(`(?s)<!--.*?-->`),
	}
	htmlBlockBoundary = regexp.MustCompile(`(?i)</?(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)\b[^>]*/?>`)
	htmlAnyTag        = regexp.MustCompile(`<[^>]+>`)
	htmlSpaces        = regexp.MustCompile(`[ \t\f\v]+`)
)

// stripHTML turns block elements into line breaks, drops the remaining tags
// and decodes entities. Blank lines are removed.
func stripHTML(content string) string {
	for _, re := range htmlDropBlocks {
		content = re.ReplaceAllString(content, "")
	}
	content = htmlBlockBoundary.ReplaceAllString(content, "\n")
	content = htmlAnyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = strings.ReplaceAll(content, "\u00a0", " ")
	content = htmlSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
