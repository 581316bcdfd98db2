package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Evictor drops sessions that have been idle longer than maxIdle.
// services.SessionStore implements it.
type Evictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// Janitor periodically evicts idle sessions so their indexes can be freed.
type Janitor struct {
	sessions Evictor
	logger   *slog.Logger

	interval time.Duration
	maxIdle  time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// JanitorConfig holds configuration for the janitor.
type JanitorConfig struct {
	Sessions Evictor
	Logger   *slog.Logger
	Interval time.Duration // Time between sweeps
	MaxIdle  time.Duration // Sessions idle longer than this are evicted
}

// DefaultJanitorConfig returns sensible sweep settings
func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		Interval: time.Minute,
		MaxIdle:  30 * time.Minute,
	}
}

// NewJanitor creates a new idle session janitor.
func NewJanitor(cfg JanitorConfig) *Janitor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultJanitorConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = defaults.MaxIdle
	}

	return &Janitor{
		sessions: cfg.Sessions,
		logger:   logger,
		interval: cfg.Interval,
		maxIdle:  cfg.MaxIdle,
	}
}

// Start begins sweeping in the background.
// It runs until Stop is called or ctx is cancelled. Starting twice is a no-op.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.doneCh = make(chan struct{})
	j.mu.Unlock()

	j.logger.Info("janitor starting", "interval", j.interval, "max_idle", j.maxIdle)

	go j.loop(ctx)
	return nil
}

func (j *Janitor) loop(ctx context.Context) {
	defer close(j.doneCh)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor context cancelled")
			return
		case <-j.stopCh:
			return
		case <-ticker.C:
			j.RunOnce()
		}
	}
}

// RunOnce performs a single sweep and returns the number of evicted sessions
func (j *Janitor) RunOnce() int {
	evicted := j.sessions.EvictIdle(j.maxIdle)
	j.logger.Debug("janitor sweep", "evicted", evicted)
	return evicted
}

// Stop halts the sweep loop and waits for it to exit.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	close(j.stopCh)
	done := j.doneCh
	j.running = false
	j.mu.Unlock()

	<-done
	j.logger.Info("janitor stopped")
}

// Wait blocks until the sweep loop exits.
func (j *Janitor) Wait() {
	j.mu.Lock()
	done := j.doneCh
	j.mu.Unlock()
	if done != nil {
		<-done
	}
}
