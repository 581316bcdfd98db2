package postgres

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// testDB connects to DOCQA_TEST_DATABASE_URL, skipping when it is unset
func testDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("DOCQA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("DOCQA_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, DefaultConfig(url))
	require.NoError(t, err)
	require.NoError(t, db.InitSchema(ctx))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestHashLockName(t *testing.T) {
	a := hashLockName("session:a")
	if a != hashLockName("session:a") {
		t.Error("expected stable hash")
	}
	if a == hashLockName("session:b") {
		t.Error("expected different names to hash differently")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("postgres://localhost/docqa")
	assert.Equal(t, "postgres://localhost/docqa", cfg.URL)
	assert.Greater(t, cfg.MaxOpenConns, cfg.MaxIdleConns)
}

func TestAdvisoryLock_ExclusiveAcrossInstances(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	name := "session:" + uuid.NewString()

	replicaA := NewAdvisoryLock(db)
	replicaB := NewAdvisoryLock(db)

	ok, err := replicaA.Acquire(ctx, name, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, replicaA.Held())

	ok, err = replicaB.Acquire(ctx, name, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second instance must not take a held lock")
	assert.Equal(t, 0, replicaB.Held())

	require.NoError(t, replicaA.Extend(ctx, name, time.Minute))
	require.NoError(t, replicaA.Release(ctx, name))
	assert.Equal(t, 0, replicaA.Held())

	ok, err = replicaB.Acquire(ctx, name, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, replicaB.Release(ctx, name))
}

func TestAdvisoryLock_ReleaseNotHeld(t *testing.T) {
	db := testDB(t)
	lock := NewAdvisoryLock(db)

	assert.NoError(t, lock.Release(context.Background(), "session:none"))
	assert.Error(t, lock.Extend(context.Background(), "session:none", time.Minute))
}

func TestAdvisoryLock_InFlightAcquireBlocksSameName(t *testing.T) {
	// No database needed: a reserved name is refused before any connection is opened
	lock := NewAdvisoryLock(nil)
	ctx := context.Background()

	require.True(t, lock.reserve("session:a"))

	ok, err := lock.Acquire(ctx, "session:a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, lock.Held(), "a reservation is not a held lock")

	assert.NoError(t, lock.Release(ctx, "session:a"))
	assert.False(t, lock.reserve("session:a"), "release must not drop another caller's reservation")
	assert.Error(t, lock.Extend(ctx, "session:a", time.Minute))

	lock.unreserve("session:a")
	assert.True(t, lock.reserve("session:a"))
}

func TestAdvisoryLock_ConnectFailureClearsReservation(t *testing.T) {
	sqlDB, err := sql.Open("postgres", "postgres://docqa@127.0.0.1:1/docqa?sslmode=disable&connect_timeout=1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	lock := NewAdvisoryLock(&DB{DB: sqlDB})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = lock.Acquire(ctx, "session:a", time.Minute)
	require.Error(t, err)
	assert.True(t, lock.reserve("session:a"), "failed acquire must leave the name free")
}

func TestAdvisoryLock_ConcurrentAcquireDistinctNames(t *testing.T) {
	db := testDB(t)
	lock := NewAdvisoryLock(db)
	ctx := context.Background()

	names := make([]string, 8)
	for i := range names {
		names[i] = "session:" + uuid.NewString()
	}

	var wg sync.WaitGroup
	results := make([]bool, len(names))
	errs := make([]error, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i], errs[i] = lock.Acquire(ctx, name, time.Minute)
		}(i, name)
	}
	wg.Wait()

	for i := range names {
		require.NoError(t, errs[i])
		assert.True(t, results[i], "lock %s", names[i])
	}
	assert.Equal(t, len(names), lock.Held())

	for _, name := range names {
		require.NoError(t, lock.Release(ctx, name))
	}
	assert.Equal(t, 0, lock.Held())
}

func TestTranscriptStore_RoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewTranscriptStore(db)
	ctx := context.Background()
	sessionID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	turns := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "What is X?", Order: 0, Timestamp: now},
		{Role: domain.RoleAssistant, Content: "X is Y.", Order: 1, Timestamp: now},
	}
	require.NoError(t, store.Append(ctx, sessionID, turns...))

	got, err := store.List(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.RoleUser, got[0].Role)
	assert.Equal(t, "X is Y.", got[1].Content)
	assert.True(t, got[0].Timestamp.Equal(now))

	require.NoError(t, store.Delete(ctx, sessionID))
	got, err = store.List(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTranscriptStore_KeepsTurnsAfterMemoryRestart(t *testing.T) {
	db := testDB(t)
	store := NewTranscriptStore(db)
	ctx := context.Background()
	sessionID := uuid.NewString()
	now := time.Now().UTC()

	// A re-upload clears memory, so the second exchange reuses orders 0 and 1
	first := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "first question", Order: 0, Timestamp: now},
		{Role: domain.RoleAssistant, Content: "first answer", Order: 1, Timestamp: now},
	}
	second := []domain.ConversationTurn{
		{Role: domain.RoleUser, Content: "second question", Order: 0, Timestamp: now},
		{Role: domain.RoleAssistant, Content: "second answer", Order: 1, Timestamp: now},
	}
	require.NoError(t, store.Append(ctx, sessionID, first...))
	require.NoError(t, store.Append(ctx, sessionID, second...))

	got, err := store.List(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, turn := range got {
		assert.Equal(t, i, turn.Order)
	}
	assert.Equal(t, "second question", got[2].Content)
	assert.Equal(t, "second answer", got[3].Content)

	require.NoError(t, store.Delete(ctx, sessionID))
}
