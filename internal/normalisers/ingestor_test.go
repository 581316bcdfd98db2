package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestIngestor_Ingest(t *testing.T) {
	ing := NewIngestor(DefaultRegistry(), 0)

	doc, err := ing.Ingest(context.Background(), []byte("# Notes\n\nHello **world**"), "dir/notes.md")
	require.NoError(t, err)

	assert.Equal(t, "notes.md", doc.Filename)
	assert.Equal(t, "text/markdown", doc.MimeType)
	assert.Equal(t, "Notes\n\nHello world", doc.Content)
	assert.Equal(t, 24, doc.Size)
	assert.False(t, doc.CreatedAt.IsZero())
}

func TestIngestor_Errors(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name     string
		maxBytes int64
		raw      []byte
		filename string
		want     error
	}{
		{"empty", 0, nil, "a.txt", domain.ErrParseError},
		{"whitespace only", 0, []byte(" \n\t "), "a.txt", domain.ErrParseError},
		{"html without text", 0, []byte("<div><img src=x></div>"), "a.html", domain.ErrParseError},
		{"invalid utf8", 0, []byte{'a', 0xff, 'b'}, "a.txt", domain.ErrParseError},
		{"binary", 0, png, "image.png", domain.ErrUnsupportedFormat},
		{"binary no extension", 0, png, "upload", domain.ErrUnsupportedFormat},
		{"too large", 4, []byte("hello"), "a.txt", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewIngestor(DefaultRegistry(), tt.maxBytes).Ingest(context.Background(), tt.raw, tt.filename)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, domain.Classify(tt.want), domain.Classify(err))
		})
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		filename string
		content  string
		want     string
	}{
		{"a.txt", "", "text/plain"},
		{"A.MD", "", "text/markdown"},
		{"page.htm", "", "text/html"},
		{"report.pdf", "", "application/pdf"},
		{"noext", "plain words", "text/plain"},
		{"noext", "%PDF-1.4", "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIMEType(tt.filename, []byte(tt.content)))
		})
	}
}
