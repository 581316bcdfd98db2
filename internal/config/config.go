// Package config loads docqa settings from a YAML file, a .env file and the environment.
// Precedence, lowest first: defaults, file, environment, command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Config is the root application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Redis       RedisConfig       `yaml:"redis"`
	Database    DatabaseConfig    `yaml:"database"`
	Sessions    SessionConfig     `yaml:"sessions"`
	Transcripts TranscriptConfig  `yaml:"transcripts"`
	QA          domain.QASettings `yaml:"qa"`
	AI          domain.AISettings `yaml:"ai"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// RedisConfig enables the Redis lock and transcript backend when URL is set
type RedisConfig struct {
	URL string `yaml:"url"`
}

// DatabaseConfig enables the PostgreSQL backend when URL is set and Redis is not
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// SessionConfig controls session locking and idle eviction
type SessionConfig struct {
	LockTTL       time.Duration `yaml:"lock_ttl"`
	MaxIdle       time.Duration `yaml:"max_idle"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// TranscriptConfig controls the transcript archive
type TranscriptConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"` // Redis only; 0 keeps transcripts forever
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Database: DatabaseConfig{
			MaxOpenConns:    50,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Sessions: SessionConfig{
			LockTTL:       2 * time.Minute,
			MaxIdle:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Transcripts: TranscriptConfig{Enabled: true, TTL: 7 * 24 * time.Hour},
		QA:          domain.DefaultQASettings(),
	}
}

// Load builds a Config from defaults, the optional YAML file at path and the environment.
// A missing file is not an error. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadDotEnv loads variables from .env files into the process environment.
// Existing variables win; missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)

	c.Sessions.MaxIdle = getEnvDuration("SESSION_MAX_IDLE", c.Sessions.MaxIdle)
	c.Sessions.LockTTL = getEnvDuration("SESSION_LOCK_TTL", c.Sessions.LockTTL)
	c.Transcripts.Enabled = getEnvBool("TRANSCRIPTS_ENABLED", c.Transcripts.Enabled)
	c.Transcripts.TTL = getEnvDuration("TRANSCRIPT_TTL", c.Transcripts.TTL)

	c.QA.MaxChunkSize = getEnvInt("CHUNK_SIZE", c.QA.MaxChunkSize)
	c.QA.ChunkOverlap = getEnvInt("CHUNK_OVERLAP", c.QA.ChunkOverlap)
	c.QA.TopK = getEnvInt("TOP_K", c.QA.TopK)
	c.QA.EmbedConcurrency = getEnvInt("EMBED_CONCURRENCY", c.QA.EmbedConcurrency)

	emb := &c.AI.Embedding
	emb.Provider = domain.AIProvider(getEnv("EMBEDDING_PROVIDER", string(emb.Provider)))
	emb.Model = getEnv("EMBEDDING_MODEL", emb.Model)
	emb.BaseURL = getEnv("EMBEDDING_BASE_URL", emb.BaseURL)
	if emb.APIKey == "" {
		emb.APIKey = providerAPIKey(emb.Provider)
	}
	if emb.BaseURL == "" && emb.Provider == domain.AIProviderOllama {
		emb.BaseURL = getEnv("OLLAMA_BASE_URL", "")
	}

	llm := &c.AI.LLM
	llm.Provider = domain.AIProvider(getEnv("LLM_PROVIDER", string(llm.Provider)))
	llm.Model = getEnv("LLM_MODEL", llm.Model)
	llm.BaseURL = getEnv("LLM_BASE_URL", llm.BaseURL)
	if llm.APIKey == "" {
		llm.APIKey = providerAPIKey(llm.Provider)
	}
	if llm.BaseURL == "" && llm.Provider == domain.AIProviderOllama {
		llm.BaseURL = getEnv("OLLAMA_BASE_URL", "")
	}
}

// providerAPIKey reads the conventional key variable for a provider
func providerAPIKey(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case domain.AIProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case domain.AIProviderGoogle:
		return getEnv("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY"))
	default:
		return ""
	}
}

// Validate checks the configuration can start a server
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidConfig, c.Server.Port)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format must be text or json, got %q", domain.ErrInvalidConfig, c.Log.Format)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if err := c.QA.Validate(); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	if c.Sessions.LockTTL <= 0 {
		return fmt.Errorf("%w: session lock ttl must be positive", domain.ErrInvalidConfig)
	}
	return nil
}

// Backend names the lock and transcript backend this config selects
func (c *Config) Backend() string {
	switch {
	case c.Redis.URL != "":
		return "redis"
	case c.Database.URL != "":
		return "postgres"
	default:
		return "local"
	}
}
