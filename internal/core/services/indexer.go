package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// IndexerConfig holds dependencies for the DocumentIndexer.
type IndexerConfig struct {
	Ingestor driven.DocumentIngestor
	Pipeline driven.ChunkPipeline
	Embedder EmbedderProvider

	BatchSize   int
	Concurrency int
	RateLimit   float64 // Batches per second, 0 = unlimited

	Logger *slog.Logger
}

// DocumentIndexer turns an upload into a ready VectorIndex:
// ingest, filter and chunk, embed in batches, build.
// It never touches session state; the caller swaps the result in.
type DocumentIndexer struct {
	ingestor    driven.DocumentIngestor
	pipeline    driven.ChunkPipeline
	embedder    EmbedderProvider
	batchSize   int
	concurrency int
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewDocumentIndexer creates an indexer
func NewDocumentIndexer(cfg IndexerConfig) *DocumentIndexer {
	defaults := domain.DefaultQASettings()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaults.EmbedBatchSize
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaults.EmbedConcurrency
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &DocumentIndexer{
		ingestor:    cfg.Ingestor,
		pipeline:    cfg.Pipeline,
		embedder:    cfg.Embedder,
		batchSize:   batchSize,
		concurrency: concurrency,
		limiter:     limiter,
		logger:      logger,
	}
}

// Index ingests raw and returns the document with its index.
// Any failure returns no index at all.
func (ix *DocumentIndexer) Index(ctx context.Context, raw []byte, filename string) (*domain.Document, *VectorIndex, error) {
	start := time.Now()

	doc, err := ix.ingestor.Ingest(ctx, raw, filename)
	if err != nil {
		return nil, nil, err
	}

	text, chunks, err := ix.pipeline.Process(doc.Content)
	if err != nil {
		return nil, nil, err
	}
	doc.Content = text
	if len(chunks) == 0 {
		return nil, nil, fmt.Errorf("%w: %s contains no text", domain.ErrParseError, filename)
	}

	embedder, err := ix.embedder.Embedder()
	if err != nil {
		return nil, nil, err
	}

	vectors, err := ix.EmbedChunks(ctx, embedder, chunks)
	if err != nil {
		return nil, nil, err
	}

	index, err := BuildIndex(chunks, vectors)
	if err != nil {
		return nil, nil, err
	}

	ix.logger.Info("document indexed",
		"filename", filename,
		"chunks", index.Len(),
		"dimensions", index.Dimensions(),
		"model", embedder.Model(),
		"duration", time.Since(start),
	)
	return doc, index, nil
}

// EmbedChunks embeds chunk texts in concurrent batches, preserving order.
// The first failing batch cancels the others.
func (ix *DocumentIndexer) EmbedChunks(ctx context.Context, embedder driven.EmbeddingService, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)

	for start := 0; start < len(chunks); start += ix.batchSize {
		end := min(start+ix.batchSize, len(chunks))

		g.Go(func() error {
			if ix.limiter != nil {
				if err := ix.limiter.Wait(gctx); err != nil {
					return err
				}
			}

			texts := make([]string, end-start)
			for i := range texts {
				texts[i] = chunks[start+i].Text
			}

			batch, err := embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("%w: batch at chunk %d: %v", domain.ErrEmbeddingUnavailable, start, err)
			}
			if len(batch) != len(texts) {
				return fmt.Errorf("%w: batch at chunk %d returned %d vectors for %d texts",
					domain.ErrEmbeddingUnavailable, start, len(batch), len(texts))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return vectors, nil
}
