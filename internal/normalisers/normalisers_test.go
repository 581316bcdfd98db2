package normalisers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestPlaintext(t *testing.T) {
	n := NewPlaintext()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf", "line1\r\nline2", "line1\nline2"},
		{"bare cr", "line1\rline2", "line1\nline2"},
		{"trim", "  padded  \n", "padded"},
		{"bom", "\ufeffhello", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normaliseWith(t, n, tt.input))
		})
	}

	_, err := n.Normalise(context.Background(), []byte{0xff, 0xfe, 0x00})
	assert.ErrorIs(t, err, domain.ErrParseError)
}

func TestMarkdown(t *testing.T) {
	input := strings.Join([]string{
		"# Title",
		"",
		"Some **bold** and *italic* text with `code` and a [link](http://example.com).",
		"",
		"> quoted",
		"",
		"- item one",
		"1. item two",
		"",
		"---",
		"",
		"```go",
		"fmt.Println(\"hi\")",
		"```",
		"![diagram](d.png)",
	}, "\n")

	got := normaliseWith(t, NewMarkdown(), input)

	assert.Contains(t, got, "Title")
	assert.Contains(t, got, "Some bold and italic text with code and a link.")
	assert.Contains(t, got, "quoted")
	assert.Contains(t, got, "item one")
	assert.Contains(t, got, "item two")
	assert.Contains(t, got, `fmt.Println("hi")`)
	assert.Contains(t, got, "diagram")
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "```")
	assert.NotContains(t, got, "http://example.com")
	assert.NotContains(t, got, "---")
	assert.NotContains(t, got, "\n\n\n")
}

func TestHTML(t *testing.T) {
	input := `<html><head><title>T</title><style>p{color:red}</style></head>
<body>
<script>alert("x")</script>
<!-- hidden -->
<h1>Heading</h1>
<p>First &amp; second&nbsp;para.</p>
<div>Another<br/>line</div>
</body></html>`

	got := normaliseWith(t, NewHTML(), input)

	assert.Equal(t, "Heading\nFirst & second para.\nAnother\nline", got)
}

type stubRunner struct {
	output []byte
	err    error
	args   []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	s.args = append([]string{name}, args...)
	return s.output, s.err
}

func TestPDF_WithRunner(t *testing.T) {
	runner := &stubRunner{output: []byte("Page one\fPage two\n")}
	n := NewPDFWithRunner(runner)

	got, err := n.Normalise(context.Background(), []byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "Page one\n\nPage two", got)
	assert.Equal(t, "pdftotext", runner.args[0])
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
}

func TestPDF_Errors(t *testing.T) {
	_, err := NewPDFWithRunner(&stubRunner{}).Normalise(context.Background(), []byte("not a pdf"))
	assert.ErrorIs(t, err, domain.ErrParseError)

	_, err = NewPDFWithRunner(&stubRunner{err: errors.New("Syntax Error")}).Normalise(context.Background(), []byte("%PDF-1.7"))
	assert.ErrorIs(t, err, domain.ErrParseError)
}

func TestPDF_ToolMissing(t *testing.T) {
	if CheckAvailable() == nil {
		t.Skip("pdftotext is installed")
	}
	_, err := NewPDF().Normalise(context.Background(), []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestInstallInstructions(t *testing.T) {
	assert.Contains(t, InstallInstructions(), "brew install poppler")
	assert.Contains(t, InstallInstructions(), "apt install poppler-utils")
}
