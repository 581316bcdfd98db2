package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, domain.DefaultQASettings(), cfg.QA)
	assert.Equal(t, "local", cfg.Backend())
	assert.True(t, cfg.Transcripts.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "docqa.yaml", `
server:
  port: 9090
log:
  format: json
sessions:
  max_idle: 10m
qa:
  max_chunk_size: 500
  chunk_overlap: 50
ai:
  embedding:
    provider: ollama
    model: nomic-embed-text
  llm:
    provider: anthropic
    api_key: sk-file
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10*time.Minute, cfg.Sessions.MaxIdle)
	assert.Equal(t, 500, cfg.QA.MaxChunkSize)
	assert.Equal(t, 50, cfg.QA.ChunkOverlap)
	// Unset keys keep their defaults
	assert.Equal(t, domain.DefaultTopK, cfg.QA.TopK)
	assert.Equal(t, domain.AIProviderOllama, cfg.AI.Embedding.Provider)
	assert.Equal(t, "sk-file", cfg.AI.LLM.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "docqa.yaml", "server:\n  port: 9090\n")
	t.Setenv("PORT", "7070")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("TOP_K", "6")
	t.Setenv("SESSION_MAX_IDLE", "1h")
	t.Setenv("TRANSCRIPTS_ENABLED", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local, http://b.local")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Backend())
	assert.Equal(t, "sk-env", cfg.AI.Embedding.APIKey)
	assert.Equal(t, 6, cfg.QA.TopK)
	assert.Equal(t, time.Hour, cfg.Sessions.MaxIdle)
	assert.False(t, cfg.Transcripts.Enabled)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.AllowedOrigins)
}

func TestLoad_FileKeyWinsOverProviderEnvKey(t *testing.T) {
	path := writeFile(t, "docqa.yaml", "ai:\n  llm:\n    provider: openai\n    api_key: sk-file\n")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", cfg.AI.LLM.APIKey)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "server: [unterminated")

	_, err := Load(path)
	assert.True(t, errors.Is(err, domain.ErrInvalidConfig), "got %v", err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"overlap", func(c *Config) { c.QA.ChunkOverlap = c.QA.MaxChunkSize }},
		{"provider", func(c *Config) { c.AI.Embedding.Provider = "anthropic" }},
		{"lock ttl", func(c *Config) { c.Sessions.LockTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "DOCQA_TEST_DOTENV=from-file\n")
	t.Setenv("DOCQA_TEST_DOTENV", "")
	os.Unsetenv("DOCQA_TEST_DOTENV")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("DOCQA_TEST_DOTENV"))

	// Missing files are skipped
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "none.env")))
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}
