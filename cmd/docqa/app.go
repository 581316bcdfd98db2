package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/docqa/internal/adapters/driven/redis"
	"github.com/custodia-labs/docqa/internal/adapters/driving/http"
	"github.com/custodia-labs/docqa/internal/config"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/postprocessors"
	"github.com/custodia-labs/docqa/internal/runtime"
)

// app is the wired service graph shared by the serve and chat commands
type app struct {
	runtime  *runtime.Services
	sessions *services.SessionStore
	qa       driving.QAService
	settings driving.AISettingsService
	checks   map[string]http.Pinger

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{checks: make(map[string]http.Pinger)}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// Lock and transcript backends: Redis wins over PostgreSQL, neither means local only
	var (
		lock        driven.DistributedLock
		transcripts driven.TranscriptStore
	)
	backend := cfg.Backend()
	switch backend {
	case "redis":
		log.Println("Connecting to Redis...")
		client, err := redisadapter.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		log.Println("Redis connected")

		redisLock := redisadapter.NewLock(client)
		lock = redisLock
		a.checks["redis"] = redisLock
		if cfg.Transcripts.Enabled {
			transcripts = redisadapter.NewTranscriptStore(client, cfg.Transcripts.TTL)
		}

	case "postgres":
		log.Println("Connecting to PostgreSQL...")
		dbCfg := postgres.DefaultConfig(cfg.Database.URL)
		if cfg.Database.MaxOpenConns > 0 {
			dbCfg.MaxOpenConns = cfg.Database.MaxOpenConns
		}
		if cfg.Database.MaxIdleConns > 0 {
			dbCfg.MaxIdleConns = cfg.Database.MaxIdleConns
		}
		if cfg.Database.ConnMaxLifetime > 0 {
			dbCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
		}
		db, err := postgres.Connect(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.InitSchema(ctx); err != nil {
			return nil, fmt.Errorf("init schema: %w", err)
		}
		log.Println("PostgreSQL connected and schema initialized")

		lock = postgres.NewAdvisoryLock(db)
		a.checks["postgres"] = db
		if cfg.Transcripts.Enabled {
			transcripts = postgres.NewTranscriptStore(db)
		}

	default:
		log.Println("No Redis or PostgreSQL configured, sessions are local to this process")
	}

	transcriptBackend := "none"
	if transcripts != nil {
		transcriptBackend = backend
	}
	rtConfig := domain.NewRuntimeConfig(backend, transcriptBackend)
	a.runtime = runtime.NewServices(rtConfig)
	a.closers = append(a.closers, a.runtime.Close)

	a.settings = services.NewAISettingsService(ai.NewFactory(), a.runtime, logger)
	if err := a.applyAISettings(ctx, cfg.AI); err != nil {
		return nil, err
	}

	if err := normalisers.CheckAvailable(); err != nil {
		log.Printf("Warning: PDF uploads disabled: %v. %s", err, normalisers.InstallInstructions())
	}

	chunkCfg := postprocessors.DefaultChunkConfig()
	chunkCfg.MaxChunkSize = cfg.QA.MaxChunkSize
	chunkCfg.Overlap = cfg.QA.ChunkOverlap
	pipeline, err := postprocessors.DefaultPipeline(chunkCfg)
	if err != nil {
		return nil, err
	}

	a.sessions = services.NewSessionStore(services.SessionStoreConfig{
		Lock:    lock,
		LockTTL: cfg.Sessions.LockTTL,
		Logger:  logger,
	})
	a.closers = append(a.closers, func() error {
		a.sessions.Close()
		return nil
	})

	indexer := services.NewDocumentIndexer(services.IndexerConfig{
		Ingestor:    normalisers.NewIngestor(normalisers.DefaultRegistry(), cfg.QA.MaxUploadBytes),
		Pipeline:    pipeline,
		Embedder:    a.runtime,
		BatchSize:   cfg.QA.EmbedBatchSize,
		Concurrency: cfg.QA.EmbedConcurrency,
		RateLimit:   cfg.QA.EmbedRateLimit,
		Logger:      logger,
	})

	orchestrator := services.NewOrchestrator(services.OrchestratorConfig{
		Sessions:     a.sessions,
		Embedder:     a.runtime,
		Reformulator: services.NewQueryReformulator(a.runtime, cfg.QA.HistoryWindow, logger),
		Generator:    services.NewLLMAnswerGenerator(a.runtime),
		Deduplicator: postprocessors.NewDeduplicator(postprocessors.DefaultDeduplicatorConfig()),
		Transcripts:  transcripts,
		TopK:         cfg.QA.TopK,
		Logger:       logger,
	})

	a.qa = services.NewQAService(services.QAServiceConfig{
		Sessions:     a.sessions,
		Indexer:      indexer,
		Orchestrator: orchestrator,
		Transcripts:  transcripts,
		Logger:       logger,
	})

	log.Printf("Runtime config: lock_backend=%s, transcripts=%s, embedding=%t, llm=%t",
		rtConfig.LockBackend, rtConfig.TranscriptBackend,
		rtConfig.EmbeddingAvailable(), rtConfig.LLMAvailable())
	return a, nil
}

// applyAISettings activates the providers named in configuration.
// A provider that fails its health check is logged and left inactive so the
// server can still start and be reconfigured over the API.
func (a *app) applyAISettings(ctx context.Context, settings domain.AISettings) error {
	var req driving.UpdateAISettingsRequest
	if settings.Embedding.Provider != "" {
		req.Embedding = &driving.EmbeddingSettingsInput{
			Provider: settings.Embedding.Provider,
			Model:    settings.Embedding.Model,
			APIKey:   settings.Embedding.APIKey,
			BaseURL:  settings.Embedding.BaseURL,
		}
	}
	if settings.LLM.Provider != "" {
		req.LLM = &driving.LLMSettingsInput{
			Provider: settings.LLM.Provider,
			Model:    settings.LLM.Model,
			APIKey:   settings.LLM.APIKey,
			BaseURL:  settings.LLM.BaseURL,
		}
	}
	if req.Embedding == nil && req.LLM == nil {
		log.Println("Warning: no AI providers configured, set them via PUT /api/v1/settings/ai")
		return nil
	}

	status, err := a.settings.UpdateAISettings(ctx, req)
	if err != nil {
		return fmt.Errorf("configure AI providers: %w", err)
	}
	if status.Embedding.Error != "" {
		log.Printf("Warning: embedding provider unavailable: %s", status.Embedding.Error)
	}
	if status.LLM.Error != "" {
		log.Printf("Warning: language model unavailable: %s", status.LLM.Error)
	}
	return nil
}

// Close releases backends in reverse order of creation
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Warning: close: %v", err)
		}
	}
	a.closers = nil
}
