package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloom/internal/domain"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestUserSessionsKey(t *testing.T) {
	assert.Equal(t, "user_sessions:42", userSessionsKey(42))
}

func TestRedisSessionStore_RevokeUser_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testRedis(t)
	store := NewRedisSessionStore(client, time.Minute)
	ctx := context.Background()

	userID := time.Now().UnixNano()
	admin := domain.User{ID: userID, Role: domain.RoleAdmin}
	other := domain.User{ID: userID + 1, Role: domain.RoleCustomer}
	t.Cleanup(func() {
		client.Del(ctx, userSessionsKey(admin.ID), userSessionsKey(other.ID))
	})

	first, err := store.Create(ctx, admin)
	require.NoError(t, err)
	second, err := store.Create(ctx, admin)
	require.NoError(t, err)
	kept, err := store.Create(ctx, other)
	require.NoError(t, err)

	got, err := store.Get(ctx, first.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsAdmin())

	require.NoError(t, store.RevokeUser(ctx, admin.ID))

	for _, token := range []string{first.Token, second.Token} {
		got, err := store.Get(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	got, err = store.Get(ctx, kept.Token)
	require.NoError(t, err)
	assert.NotNil(t, got)

	require.NoError(t, store.Delete(ctx, kept.Token))
	members, err := client.SMembers(ctx, userSessionsKey(other.ID)).Result()
	require.NoError(t, err)
	assert.Empty(t, members)
}
