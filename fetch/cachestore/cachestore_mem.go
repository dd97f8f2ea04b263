package cachestore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memEntry struct {
	val     string
	expires time.Time
}

// In-process store. Entries expire at the shorter of their own TTL and the store's MaxTTL.
type MemCacheStore struct {
	Data *expirable.LRU[string, memEntry]
	now  func() time.Time
}

var _ CacheStore = (*MemCacheStore)(nil)

func NewMemCacheStore(capacity int, maxTTL time.Duration) *MemCacheStore {
	return &MemCacheStore{
		Data: expirable.NewLRU[string, memEntry](capacity, nil, maxTTL),
		now:  time.Now,
	}
}

func memKey(name, key string) string {
	return name + "/" + key
}

func (s *MemCacheStore) Get(ctx context.Context, name, key string) (string, error) {
	e, ok := s.Data.Get(memKey(name, key))
	if !ok {
		return "", ErrMiss
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		s.Data.Remove(memKey(name, key))
		return "", ErrMiss
	}
	return e.val, nil
}

func (s *MemCacheStore) Set(ctx context.Context, name, key, val string, ttl time.Duration) error {
	e := memEntry{val: val}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.Data.Add(memKey(name, key), e)
	return nil
}

func (s *MemCacheStore) Purge(ctx context.Context, name, key string) error {
	s.Data.Remove(memKey(name, key))
	return nil
}
