package memory

import (
	"context"
	"sync"
	"time"
)

type idempotencyEntry struct {
	orderID   string
	expiresAt time.Time
}

// IdempotencyStore is a process-local stand-in for the Redis store.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]idempotencyEntry
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]idempotencyEntry),
	}
}

func (s *IdempotencyStore) Claim(ctx context.Context, key string) (string, bool, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok && s.now().Before(e.expiresAt) {
		return e.orderID, false, nil
	}
	s.entries[key] = idempotencyEntry{expiresAt: s.now().Add(s.ttl)}
	return "", true, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = idempotencyEntry{orderID: orderID, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
