package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

type chatCmd struct {
	File    string `help:"Document to upload (text, markdown, HTML or PDF)." short:"f" required:"" type:"existingfile"`
	Sources bool   `help:"Print the retrieved passages under each answer."`
}

func (c *chatCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	raw, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	session, err := a.qa.CreateSession(ctx)
	if err != nil {
		return err
	}
	uploaded, err := a.qa.UploadDocument(ctx, session.ID, raw, filepath.Base(c.File))
	if err != nil {
		return fmt.Errorf("upload %s: %w", c.File, err)
	}
	fmt.Println(uploaded.Message)
	fmt.Println("Ask a question. Commands: /history, /reset, /quit")

	return chatLoop(ctx, a.qa, session.ID, os.Stdin, os.Stdout, c.Sources)
}

// chatLoop reads one question per line until EOF, /quit or cancellation
func chatLoop(ctx context.Context, qa driving.QAService, sessionID string, in io.Reader, out io.Writer, showSources bool) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/history":
			turns, err := qa.History(ctx, sessionID)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			for _, t := range turns {
				fmt.Fprintf(out, "[%d] %s: %s\n", t.Order, t.Role, t.Content)
			}
			continue
		case "/reset":
			if err := qa.Reset(ctx, sessionID); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			} else {
				fmt.Fprintln(out, "Session reset. Restart chat to load a document.")
			}
			continue
		}

		result, err := qa.Ask(ctx, sessionID, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, result.Answer)
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if showSources && result.State == domain.AnswerStateAnswered {
			for i, hit := range result.Sources {
				fmt.Fprintf(out, "  [%d] %.3f %q\n", i+1, hit.Score, excerpt(hit.Chunk.Text, 80))
			}
		}
	}
}

func excerpt(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
