package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "idem:checkout:"
	pendingMarker = "pending"
)

// IdempotencyStore tracks order submissions by key. A claimed key holds a pending marker until
// the checkout completes and the order id replaces it.
type IdempotencyStore struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

func NewIdempotencyStore(rdb goredis.Cmdable, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) Key(key string) string {
	return keyPrefix + key
}

func (s *IdempotencyStore) Claim(ctx context.Context, key string) (string, bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.Key(key), pendingMarker, s.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis: claim: %w", err)
	}
	if ok {
		return "", true, nil
	}

	val, err := s.rdb.Get(ctx, s.Key(key)).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		// expired between SETNX and GET; treat as still in flight rather than racing for it
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("redis: lookup: %w", err)
	case val == pendingMarker:
		return "", false, nil
	default:
		return val, false, nil
	}
}

func (s *IdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	if err := s.rdb.Set(ctx, s.Key(key), orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: complete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.Key(key)).Err(); err != nil {
		return fmt.Errorf("redis: release: %w", err)
	}
	return nil
}

// NewClient connects to addr and checks the connection.
func NewClient(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return rdb, nil
}
