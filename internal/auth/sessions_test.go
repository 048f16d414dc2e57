package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repo *memoryRepo) *User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), CreateUserParams{
		Username:           "alice",
		Email:              "alice@example.com",
		PasswordHash:       "x",
		SubscriptionStatus: SubscriptionTrial,
		TrialEndsAt:        time.Now().UTC().Add(TrialPeriod),
	})
	require.NoError(t, err)
	return user
}

func TestSessionStoreCreateAndGet(t *testing.T) {
	repo := newMemoryRepo()
	user := seedUser(t, repo)
	store := NewSessionStore(repo, time.Hour)

	id, err := store.Create(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, id, 64) // 32 random bytes, hex encoded

	got, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
}

func TestSessionStoreUnknownAndEmptyID(t *testing.T) {
	repo := newMemoryRepo()
	store := NewSessionStore(repo, time.Hour)

	got, err := store.Get(context.Background(), "deadbeef")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Get(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStoreExpiredSessionDeletedOnRead(t *testing.T) {
	repo := newMemoryRepo()
	user := seedUser(t, repo)
	store := NewSessionStore(repo, time.Hour)

	id, err := store.Create(context.Background(), user.ID)
	require.NoError(t, err)

	repo.mu.Lock()
	sess := repo.sessions[id]
	sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	repo.sessions[id] = sess
	repo.mu.Unlock()

	got, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, repo.sessionCount())
}

func TestSessionStoreDeleteIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	user := seedUser(t, repo)
	store := NewSessionStore(repo, time.Hour)

	id, err := store.Create(context.Background(), user.ID)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), id))
	require.NoError(t, store.Delete(context.Background(), id))
	require.NoError(t, store.Delete(context.Background(), ""))
	require.NoError(t, store.Delete(context.Background(), "never-existed"))
}

func TestSessionStoreCleanupCountsOnlyExpired(t *testing.T) {
	repo := newMemoryRepo()
	user := seedUser(t, repo)
	store := NewSessionStore(repo, time.Hour)

	live, err := store.Create(context.Background(), user.ID)
	require.NoError(t, err)

	for _, id := range []string{"old1", "old2"} {
		require.NoError(t, repo.InsertSession(context.Background(), Session{
			ID:        id,
			UserID:    user.ID,
			CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
			ExpiresAt: time.Now().UTC().Add(-time.Hour),
		}))
	}

	removed, err := store.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	got, err := store.Get(context.Background(), live)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSessionStoreDefaultTTL(t *testing.T) {
	store := NewSessionStore(newMemoryRepo(), 0)
	assert.Equal(t, DefaultSessionTTL, store.TTL())
}
