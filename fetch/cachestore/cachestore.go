package cachestore

import (
	"context"
	"errors"
	"time"
)

// Returned by Get when there is no live entry.
var ErrMiss = errors.New("cache miss")

type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, error)
	Set(ctx context.Context, name, key, val string, ttl time.Duration) error
	Purge(ctx context.Context, name, key string) error
}
