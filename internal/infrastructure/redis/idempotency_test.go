package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Needs a reachable Redis at TEST_REDIS_ADDR; skipped otherwise.
func newTestStore(t *testing.T) *IdempotencyStore {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rdb, err := NewClient(ctx, addr)
	if err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return NewIdempotencyStore(rdb, time.Minute)
}

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := uuid.NewString()
	t.Cleanup(func() { _ = s.Release(context.Background(), key) })

	_, claimed, err := s.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, claimed)

	id, claimed, err := s.Claim(ctx, key)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Empty(t, id)

	require.NoError(t, s.Complete(ctx, key, "o-1"))
	id, claimed, err = s.Claim(ctx, key)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, "o-1", id)

	require.NoError(t, s.Release(ctx, key))
	_, claimed, err = s.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestIdempotencyStore_Key(t *testing.T) {
	assert.Equal(t, "idem:checkout:abc", NewIdempotencyStore(nil, time.Minute).Key("abc"))
}
