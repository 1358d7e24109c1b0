package revocation

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps revocations in process. Entries expire with their token
// and a janitor goroutine sweeps them.
type MemoryStore struct {
	cache    *cache.Cache
	interval time.Duration
	now      func() time.Time
}

// NewMemoryStore returns a MemoryStore whose janitor runs every cleanupInterval.
// A non-positive interval falls back to DefaultSweepInterval; go-cache would
// otherwise never evict.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultSweepInterval
	}
	return &MemoryStore{
		cache:    cache.New(cache.NoExpiration, cleanupInterval),
		interval: cleanupInterval,
		now:      time.Now,
	}
}

func (s *MemoryStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(Hash(token), expiresAt, ttl)
	return nil
}

func (s *MemoryStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	_, found := s.cache.Get(Hash(token))
	return found, nil
}

// Len returns the number of live entries, expired ones included until the
// janitor runs.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
