package normalisers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

var _ driven.Normaliser = (*PDF)(nil)

const pdfTool = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not on PATH.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// PDF extracts text from PDF files with poppler's pdftotext.
type PDF struct {
	runner    CommandRunner
	checkPath bool
}

// NewPDF creates a PDF normaliser that shells out to pdftotext.
func NewPDF() *PDF {
	return &PDF{runner: execRunner{}, checkPath: true}
}

// NewPDFWithRunner creates a PDF normaliser with an injected runner.
func NewPDFWithRunner(runner CommandRunner) *PDF {
	return &PDF{runner: runner}
}

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(pdfTool); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions tells operators how to get pdftotext.
func InstallInstructions() string {
	return `PDF support requires pdftotext (poppler):
  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Alpine:         apk add poppler-utils`
}

func (n *PDF) Normalise(ctx context.Context, content []byte) (string, error) {
	if n.checkPath {
		if err := CheckAvailable(); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
		}
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		return "", fmt.Errorf("%w: missing PDF header", domain.ErrParseError)
	}

	tmp, err := os.CreateTemp("", "docqa-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	// "-" sends the text to stdout
	out, err := n.runner.Run(ctx, pdfTool, "-enc", "UTF-8", "-layout", tmp.Name(), "-")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", domain.ErrParseError, err)
	}

	text, err := decodeUTF8(out)
	if err != nil {
		return "", err
	}
	// pdftotext separates pages with form feeds
	text = strings.ReplaceAll(text, "\f", "\n\n")
	return normaliseNewlines(text), nil
}

func (n *PDF) SupportedTypes() []string {
	return []string{"application/pdf"}
}

func (n *PDF) Priority() int {
	return 50 // Format-specific
}
