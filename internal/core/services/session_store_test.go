package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven/mocks"
)

func newTestStore() *SessionStore {
	return NewSessionStore(SessionStoreConfig{Logger: discardLogger()})
}

func buildTestIndex(t *testing.T, n int) *VectorIndex {
	t.Helper()
	vectors := make([][]float32, n)
	for i := range vectors {
		vectors[i] = []float32{float32(i + 1), 1}
	}
	idx, err := BuildIndex(testChunks(n), vectors)
	require.NoError(t, err)
	return idx
}

func TestSessionStore_GetOrCreate(t *testing.T) {
	store := newTestStore()

	s1 := store.GetOrCreate("abc")
	s2 := store.GetOrCreate("abc")

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, store.Len())
	assert.Nil(t, s1.Index())
	assert.Nil(t, s1.Document())
	assert.Equal(t, 0, s1.Memory().Len())

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStore_ReplaceDocumentClearsHistory(t *testing.T) {
	store := newTestStore()
	s := store.GetOrCreate("abc")
	s.Memory().Append(domain.NewUserTurn("q"), domain.NewAssistantTurn("a"))

	doc := &domain.Document{ID: "doc-1", Filename: "a.txt"}
	require.NoError(t, store.ReplaceDocument("abc", doc, buildTestIndex(t, 3)))

	assert.Equal(t, 0, s.Memory().Len())
	assert.Equal(t, 3, s.Index().Len())

	info := s.Info()
	assert.True(t, info.HasDocument)
	assert.Equal(t, "doc-1", info.DocumentID)
	assert.Equal(t, "a.txt", info.Filename)
	assert.Equal(t, 3, info.ChunkCount)
	assert.Equal(t, 2, info.Dimensions)
}

func TestSessionStore_ReplaceDocumentRejectsEmptyIndex(t *testing.T) {
	store := newTestStore()
	store.GetOrCreate("abc").Memory().Append(domain.NewUserTurn("q"))

	err := store.ReplaceDocument("abc", &domain.Document{}, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
	assert.Equal(t, 1, store.GetOrCreate("abc").Memory().Len(), "failed replace must not clear memory")
}

func TestSessionStore_AcquireIsExclusive(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	_, release, err := store.Acquire(ctx, "abc")
	require.NoError(t, err)

	_, _, err = store.Acquire(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrSessionBusy)

	// Other sessions are independent
	_, releaseOther, err := store.Acquire(ctx, "other")
	require.NoError(t, err)
	releaseOther()

	release()
	release() // second call is a no-op

	_, release, err = store.Acquire(ctx, "abc")
	require.NoError(t, err)
	release()
}

func TestSessionStore_AcquireRequiresID(t *testing.T) {
	_, _, err := newTestStore().Acquire(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionStore_ConcurrentAcquireOneWinner(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     int
		busy    int
		holding = make(chan struct{})
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, release, err := store.Acquire(ctx, "abc")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, domain.ErrSessionBusy) {
					busy++
				}
				return
			}
			won++
			go func() {
				<-holding
				release()
			}()
		}()
	}
	wg.Wait()
	close(holding)

	assert.Equal(t, 1, won)
	assert.Equal(t, 19, busy)
}

func TestSessionStore_DistributedLock(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	store := NewSessionStore(SessionStoreConfig{Lock: lock, LockTTL: time.Minute, Logger: discardLogger()})
	ctx := context.Background()

	_, release, err := store.Acquire(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, lock.IsHeld("session:abc"))
	release()
	assert.False(t, lock.IsHeld("session:abc"))
	assert.Equal(t, []string{"session:abc"}, lock.Released())

	// Another replica holds the session
	lock.SetLockHeld("session:xyz", time.Minute)
	_, _, err = store.Acquire(ctx, "xyz")
	assert.ErrorIs(t, err, domain.ErrSessionBusy)

	// The local slot must have been given back
	lock.AcquireFn = func(name string, ttl time.Duration) (bool, error) { return true, nil }
	_, release, err = store.Acquire(ctx, "xyz")
	require.NoError(t, err)
	release()
}

func TestSessionStore_DistributedLockBackendError(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	lock.AcquireFn = func(name string, ttl time.Duration) (bool, error) {
		return false, errors.New("redis down")
	}
	store := NewSessionStore(SessionStoreConfig{Lock: lock, Logger: discardLogger()})

	_, _, err := store.Acquire(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionBusy)
}

func TestSessionStore_LockExtendedWhileHeld(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	extended := make(chan string, 1)
	lock.ExtendFn = func(name string, ttl time.Duration) error {
		select {
		case extended <- name:
		default:
		}
		return nil
	}
	store := NewSessionStore(SessionStoreConfig{Lock: lock, LockTTL: 20 * time.Millisecond, Logger: discardLogger()})

	_, release, err := store.Acquire(context.Background(), "abc")
	require.NoError(t, err)
	defer release()

	select {
	case name := <-extended:
		assert.Equal(t, "session:abc", name)
	case <-time.After(2 * time.Second):
		t.Fatal("lock was never extended")
	}
}

func TestSessionStore_Reset(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.ReplaceDocument("abc", &domain.Document{}, buildTestIndex(t, 2)))
	require.NoError(t, store.Reset(ctx, "abc"))

	_, err := store.Get("abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, store.Len())

	// Unknown sessions are fine
	assert.NoError(t, store.Reset(ctx, "never-seen"))
}

func TestSessionStore_ResetWhileBusy(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	_, release, err := store.Acquire(ctx, "abc")
	require.NoError(t, err)

	assert.ErrorIs(t, store.Reset(ctx, "abc"), domain.ErrSessionBusy)
	release()

	assert.NoError(t, store.Reset(ctx, "abc"))
}

func TestSessionStore_ResetDetachesOldSession(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	old := store.GetOrCreate("abc")
	require.NoError(t, store.Reset(ctx, "abc"))

	fresh, release, err := store.Acquire(ctx, "abc")
	require.NoError(t, err)
	defer release()
	assert.NotSame(t, old, fresh)
}

func TestSessionStore_EvictIdle(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewSessionStore(SessionStoreConfig{
		Logger: discardLogger(),
		Now:    func() time.Time { return now },
	})
	ctx := context.Background()

	store.GetOrCreate("old")
	store.GetOrCreate("busy")
	_, release, err := store.Acquire(ctx, "busy")
	require.NoError(t, err)

	now = now.Add(time.Hour)
	store.GetOrCreate("fresh")

	evicted := store.EvictIdle(30 * time.Minute)

	assert.Equal(t, 1, evicted)
	_, err = store.Get("old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Get("busy")
	assert.NoError(t, err, "busy sessions are never evicted")
	_, err = store.Get("fresh")
	assert.NoError(t, err)

	release()
}

func TestSessionStore_Close(t *testing.T) {
	store := newTestStore()
	store.GetOrCreate("a")
	store.GetOrCreate("b")
	store.Close()
	assert.Equal(t, 0, store.Len())
}
