package main

// @title           DocQA API
// @version         1.0
// @description     Conversational question answering over a single uploaded document per session.

// @contact.name   DocQA OSS
// @contact.url    https://github.com/custodia-labs/docqa/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/custodia-labs/docqa/internal/adapters/driving/http"
	"github.com/custodia-labs/docqa/internal/config"
	"github.com/custodia-labs/docqa/internal/worker"
)

var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config   string `help:"Path to the YAML config file." default:"docqa.yaml" type:"path"`
	EnvFile  string `help:"Path to a .env file loaded before the environment is read." default:".env" name:"env-file"`
	LogLevel string `help:"Override the log level (debug, info, warn, error)." name:"log-level"`
}

type cli struct {
	Globals `embed:""`

	Version kong.VersionFlag `help:"Print the version and exit."`
	Serve   serveCmd         `cmd:"" default:"1" help:"Run the HTTP API (default)."`
	Chat    chatCmd          `cmd:"" help:"Ask questions about a local file in the terminal."`
}

type serveCmd struct {
	Port int `help:"Override the listen port."`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("docqa"),
		kong.Description("Ask questions about a document, one conversation per session."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	kctx.FatalIfErrorf(kctx.Run(&c.Globals))
}

// load resolves configuration from .env, the YAML file, the environment and flags,
// then installs the configured logger as the slog default.
func (g *Globals) load() (*config.Config, *slog.Logger, error) {
	if err := config.LoadDotEnv(g.EnvFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Println("Shutdown signal received, stopping...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func (s *serveCmd) Run(g *Globals) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	if s.Port > 0 {
		cfg.Server.Port = s.Port
	}

	log.Printf("docqa %s starting (backend=%s)", version, cfg.Backend())

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	janitor := worker.NewJanitor(worker.JanitorConfig{
		Sessions: a.sessions,
		Logger:   logger,
		Interval: cfg.Sessions.SweepInterval,
		MaxIdle:  cfg.Sessions.MaxIdle,
	})
	if err := janitor.Start(ctx); err != nil {
		return fmt.Errorf("start janitor: %w", err)
	}
	defer janitor.Stop()

	server := http.NewServer(http.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.QA.MaxUploadBytes,
		Logger:         logger,
	}, a.qa, a.settings, a.checks)

	log.Printf("API server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
	return server.Start(ctx)
}
