package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

const sessionLockPrefix = "session:"

// DefaultSessionLockTTL bounds how long a crashed replica can hold a session busy.
// Held locks are extended every TTL/2 while the operation runs.
const DefaultSessionLockTTL = 2 * time.Minute

// Session is one user's document index and conversation.
type Session struct {
	id string

	// op admits one in-flight operation (upload, ask, reset)
	op sync.Mutex

	mu         sync.RWMutex
	document   *domain.Document
	index      *VectorIndex
	memory     *ConversationMemory
	createdAt  time.Time
	lastActive time.Time
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Index returns the current index, nil before the first upload
func (s *Session) Index() *VectorIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Document returns the current document, nil before the first upload
func (s *Session) Document() *domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.document
}

// Memory returns the session's conversation memory
func (s *Session) Memory() *ConversationMemory {
	return s.memory
}

// Info returns a snapshot of the session
func (s *Session) Info() *domain.SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := &domain.SessionInfo{
		ID:           s.id,
		TurnCount:    s.memory.Len(),
		CreatedAt:    s.createdAt,
		LastActiveAt: s.lastActive,
	}
	if s.index != nil {
		info.HasDocument = true
		info.ChunkCount = s.index.Len()
		info.Dimensions = s.index.Dimensions()
	}
	if s.document != nil {
		info.DocumentID = s.document.ID
		info.Filename = s.document.Filename
	}
	return info
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// SessionStoreConfig holds dependencies for the SessionStore.
type SessionStoreConfig struct {
	// Lock makes session operations exclusive across replicas; nil keeps them process-local
	Lock    driven.DistributedLock
	LockTTL time.Duration
	Logger  *slog.Logger

	// Now overrides the clock in tests
	Now func() time.Time
}

// SessionStore is the single owner of session lifetime.
// Other components receive *Session values from it rather than looking sessions up themselves.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session

	lock    driven.DistributedLock
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewSessionStore creates an empty session store
func NewSessionStore(cfg SessionStoreConfig) *SessionStore {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = DefaultSessionLockTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		lock:     cfg.Lock,
		lockTTL:  ttl,
		logger:   logger,
		now:      now,
	}
}

// GetOrCreate returns the session for id, creating an empty one if needed
func (st *SessionStore) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[id]; ok {
		return s
	}

	now := st.now()
	s := &Session{
		id:         id,
		memory:     NewConversationMemory(),
		createdAt:  now,
		lastActive: now,
	}
	st.sessions[id] = s
	st.logger.Debug("session created", "session_id", id)
	return s
}

// Get returns an existing session or domain.ErrNotFound
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// Acquire claims the single operation slot of a session, creating the session if needed.
// Fails immediately with domain.ErrSessionBusy when another operation holds it.
// The returned release func must be called exactly once.
func (st *SessionStore) Acquire(ctx context.Context, id string) (*Session, func(), error) {
	if id == "" {
		return nil, nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	s, err := st.tryLock(id)
	if err != nil {
		return nil, nil, err
	}

	stopKeepAlive := func() {}
	if st.lock != nil {
		name := sessionLockPrefix + id
		acquired, err := st.lock.Acquire(ctx, name, st.lockTTL)
		if err != nil {
			s.op.Unlock()
			return nil, nil, fmt.Errorf("acquire session lock: %w", err)
		}
		if !acquired {
			s.op.Unlock()
			return nil, nil, fmt.Errorf("%w: held by another instance", domain.ErrSessionBusy)
		}
		stopKeepAlive = st.keepAlive(name)
	}

	s.touch(st.now())

	var once sync.Once
	release := func() {
		once.Do(func() {
			stopKeepAlive()
			s.touch(st.now())
			s.op.Unlock()
		})
	}
	return s, release, nil
}

// tryLock locks the op slot of the session currently registered under id.
// A session removed by Reset between lookup and lock is retried against the fresh one.
func (st *SessionStore) tryLock(id string) (*Session, error) {
	for {
		s := st.GetOrCreate(id)
		if !s.op.TryLock() {
			return nil, domain.ErrSessionBusy
		}

		st.mu.Lock()
		current := st.sessions[id] == s
		st.mu.Unlock()
		if current {
			return s, nil
		}
		s.op.Unlock()
	}
}

// keepAlive extends the distributed lock until the returned func is called,
// which also releases the lock.
func (st *SessionStore) keepAlive(name string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(st.lockTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := st.lock.Extend(ctx, name, st.lockTTL); err != nil {
					st.logger.Warn("failed to extend session lock", "lock", name, "error", err)
				}
				cancel()
			}
		}
	}()

	return func() {
		close(stop)
		<-done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.lock.Release(ctx, name); err != nil {
			st.logger.Warn("failed to release session lock", "lock", name, "error", err)
		}
	}
}

// ReplaceDocument swaps in a new document and index and clears the conversation,
// as one step. Callers hold the session's operation slot.
func (st *SessionStore) ReplaceDocument(id string, doc *domain.Document, index *VectorIndex) error {
	if index == nil || index.Len() == 0 {
		return domain.ErrEmptyIndex
	}

	s := st.GetOrCreate(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.document = doc
	s.index = index
	s.memory.Clear()
	s.lastActive = st.now()

	st.logger.Info("session document replaced", "session_id", id, "chunks", index.Len())
	return nil
}

// Reset discards a session. Unknown sessions are a no-op.
// Fails with domain.ErrSessionBusy while an operation is in flight.
func (st *SessionStore) Reset(ctx context.Context, id string) error {
	if _, err := st.Get(id); err != nil {
		return nil
	}

	s, release, err := st.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	st.remove(id, s)
	st.logger.Info("session reset", "session_id", id)
	return nil
}

func (st *SessionStore) remove(id string, s *Session) {
	st.mu.Lock()
	if st.sessions[id] == s {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	s.mu.Lock()
	s.document = nil
	s.index = nil
	s.memory.Clear()
	s.mu.Unlock()
}

// EvictIdle removes sessions idle for longer than maxIdle, skipping busy ones.
// Returns the number removed.
func (st *SessionStore) EvictIdle(maxIdle time.Duration) int {
	cutoff := st.now().Add(-maxIdle)

	st.mu.Lock()
	candidates := make([]*Session, 0)
	for _, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			candidates = append(candidates, s)
		}
	}
	st.mu.Unlock()

	evicted := 0
	for _, s := range candidates {
		if !s.op.TryLock() {
			continue
		}
		if s.idleSince().Before(cutoff) {
			st.remove(s.id, s)
			evicted++
		}
		s.op.Unlock()
	}

	if evicted > 0 {
		st.logger.Info("evicted idle sessions", "count", evicted, "max_idle", maxIdle)
	}
	return evicted
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close drops every session
func (st *SessionStore) Close() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions = make(map[string]*Session)
}
