package session

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teammanager/server-go/internal/redis"
)

// testRedis connects to DB 15 on localhost and skips the test when no
// Redis instance is reachable.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	opts, err := goredis.ParseURL("redis://localhost:6379/15")
	require.NoError(t, err)

	client := goredis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skip("Redis not available for testing")
	}
	client.FlushDB(context.Background())
	t.Cleanup(func() { client.Close() })

	return &redis.Client{Client: client}
}

func TestStore_NewAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testRedis(t), "test-secret", time.Minute, zerolog.Nop())

	token, sess, err := store.New(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, sess.LoggedIn())

	loaded, err := store.Get(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Nil(t, loaded.UserID)
}

func TestStore_GetUnknownToken(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testRedis(t), "test-secret", time.Minute, zerolog.Nop())

	sess, err := store.Get(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestStore_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testRedis(t), "test-secret", time.Minute, zerolog.Nop())

	token, sess, err := store.New(ctx)
	require.NoError(t, err)

	userID := int64(42)
	sess.UserID = &userID
	sess.Username = "maria"
	sess.CSRFToken = "csrf-abc"
	answer := 7
	sess.CaptchaAnswer = &answer
	require.NoError(t, store.Save(ctx, token, sess))

	loaded, err := store.Get(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.LoggedIn())
	assert.Equal(t, int64(42), *loaded.UserID)
	assert.Equal(t, "maria", loaded.Username)
	assert.Equal(t, "csrf-abc", loaded.CSRFToken)
	require.NotNil(t, loaded.CaptchaAnswer)
	assert.Equal(t, 7, *loaded.CaptchaAnswer)
}

func TestStore_Destroy(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testRedis(t), "test-secret", time.Minute, zerolog.Nop())

	token, _, err := store.New(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, token))

	sess, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, sess)

	// Destroying twice is harmless.
	require.NoError(t, store.Destroy(ctx, token))
}

func TestStore_Regenerate(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testRedis(t), "test-secret", time.Minute, zerolog.Nop())

	oldToken, sess, err := store.New(ctx)
	require.NoError(t, err)

	userID := int64(1)
	sess.UserID = &userID
	sess.Username = "tom"

	newToken, err := store.Regenerate(ctx, oldToken, sess)
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, newToken)

	// Old token is dead, new token carries the state.
	old, err := store.Get(ctx, oldToken)
	require.NoError(t, err)
	assert.Nil(t, old)

	fresh, err := store.Get(ctx, newToken)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, "tom", fresh.Username)
}

func TestStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testRedis(t), "test-secret", 100*time.Millisecond, zerolog.Nop())

	token, _, err := store.New(ctx)
	require.NoError(t, err)

	time.Sleep(150 * time.Millisecond)

	sess, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestStore_TokensWithDifferentSecretsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	client := testRedis(t)
	storeA := NewStore(client, "secret-a", time.Minute, zerolog.Nop())
	storeB := NewStore(client, "secret-b", time.Minute, zerolog.Nop())

	token, _, err := storeA.New(ctx)
	require.NoError(t, err)

	sess, err := storeB.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, sess)
}
