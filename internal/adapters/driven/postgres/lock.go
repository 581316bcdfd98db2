package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*AdvisoryLock)(nil)

// AdvisoryLock implements DistributedLock with session-level advisory locks.
//
// Advisory locks belong to a connection, so each held lock pins a dedicated
// *sql.Conn until Release. The TTL is ignored: the lock lives until released
// or until the connection dies, which also covers a crashed replica.
type AdvisoryLock struct {
	db *DB

	mu    sync.Mutex
	conns map[string]*sql.Conn
}

// NewAdvisoryLock creates a new PostgreSQL advisory lock adapter.
func NewAdvisoryLock(db *DB) *AdvisoryLock {
	return &AdvisoryLock{db: db, conns: make(map[string]*sql.Conn)}
}

// hashLockName maps a lock name to the 64-bit advisory lock key space
func hashLockName(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte("docqa:lock:" + name))
	return int64(h.Sum64())
}

// Acquire runs pg_try_advisory_lock on a fresh connection, never blocking.
// The name is reserved under the mutex; the round trip happens outside it.
func (l *AdvisoryLock) Acquire(ctx context.Context, name string, _ time.Duration) (bool, error) {
	if !l.reserve(name) {
		return false, nil
	}

	conn, err := l.db.Conn(ctx)
	if err != nil {
		l.unreserve(name)
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", hashLockName(name)).Scan(&acquired); err != nil {
		conn.Close()
		l.unreserve(name)
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !acquired {
		conn.Close()
		l.unreserve(name)
		return false, nil
	}

	l.mu.Lock()
	l.conns[name] = conn
	l.mu.Unlock()
	return true, nil
}

// reserve claims name for an in-flight Acquire; a nil entry marks the reservation
func (l *AdvisoryLock) reserve(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.conns[name]; taken {
		return false
	}
	l.conns[name] = nil
	return true
}

func (l *AdvisoryLock) unreserve(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if conn, ok := l.conns[name]; ok && conn == nil {
		delete(l.conns, name)
	}
}

// Release unlocks on the pinned connection and returns it to the pool.
// Safe to call even if the lock is not held.
func (l *AdvisoryLock) Release(ctx context.Context, name string) error {
	l.mu.Lock()
	conn := l.conns[name]
	if conn != nil {
		delete(l.conns, name)
	}
	l.mu.Unlock()

	// Not held, or another call is still acquiring it
	if conn == nil {
		return nil
	}
	defer conn.Close()

	var released bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", hashLockName(name)).Scan(&released); err != nil {
		// Closing the connection below drops the lock anyway
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// Extend checks the pinned connection is still alive; advisory locks have no TTL
func (l *AdvisoryLock) Extend(ctx context.Context, name string, _ time.Duration) error {
	l.mu.Lock()
	conn := l.conns[name]
	l.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("lock %s not held by this instance", name)
	}
	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("extend lock %s: %w", name, err)
	}
	return nil
}

// Ping checks if the PostgreSQL backend is healthy.
func (l *AdvisoryLock) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Held returns the number of locks this instance currently holds
func (l *AdvisoryLock) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	held := 0
	for _, conn := range l.conns {
		if conn != nil {
			held++
		}
	}
	return held
}
