package normalisers

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentIngestor = (*Ingestor)(nil)

// extensionTypes covers extensions the platform MIME table may lack
var extensionTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".csv":      "text/csv",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".xhtml":    "application/xhtml+xml",
	".pdf":      "application/pdf",
}

// Ingestor resolves an upload's MIME type from its filename and hands it to
// the best normaliser in the registry.
type Ingestor struct {
	registry driven.NormaliserRegistry
	maxBytes int64
}

// NewIngestor creates an ingestor. maxBytes of 0 or less disables the size check.
func NewIngestor(registry driven.NormaliserRegistry, maxBytes int64) *Ingestor {
	return &Ingestor{registry: registry, maxBytes: maxBytes}
}

// Ingest extracts plain text from raw.
func (i *Ingestor) Ingest(ctx context.Context, raw []byte, filename string) (*domain.Document, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrParseError, filename)
	}
	if i.maxBytes > 0 && int64(len(raw)) > i.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", domain.ErrInvalidInput, filename, len(raw), i.maxBytes)
	}

	mimeType := DetectMIMEType(filename, raw)
	normaliser := i.registry.Get(mimeType)
	if normaliser == nil {
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedFormat, filename, mimeType)
	}

	text, err := normaliser.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text could be extracted from %s", domain.ErrParseError, filename)
	}

	return &domain.Document{
		Filename:  filepath.Base(filename),
		MimeType:  mimeType,
		Content:   text,
		Size:      len(raw),
		CreatedAt: time.Now(),
	}, nil
}

// DetectMIMEType resolves the MIME type from the filename extension,
// sniffing the content when the extension is unknown.
func DetectMIMEType(filename string, content []byte) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return baseMIMEType(t)
		}
	}
	return baseMIMEType(http.DetectContentType(content))
}
