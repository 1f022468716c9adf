// Package cache is the query cache of the console: backend responses are stored per user
// and dropped by resource after every mutation.
package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrMiss = errors.New("cache miss")

// Store is a byte-value cache with TTLs.
type Store interface {
	// Get returns ErrMiss if key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix deletes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
