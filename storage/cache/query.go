package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/confadmin/core"
)

// Query reads through a Store; concurrent fetches of the same key share one call.
// Every resource has a generation, bumped on invalidation: a fetch started under an
// older generation is neither cached nor shared with later callers.
type Query struct {
	store  Store
	ttl    time.Duration
	logger core.Logger
	group  singleflight.Group

	mu   sync.RWMutex // held for writing while invalidating, for reading while caching
	gens map[string]uint64
}

func NewQuery(store Store, ttl time.Duration, logger core.Logger) *Query {
	return &Query{store: store, ttl: ttl, logger: logger, gens: make(map[string]uint64)}
}

// resourceOf returns the resource part of a Key.
func resourceOf(key string) string {
	if i := strings.IndexAny(key, ":@"); i >= 0 {
		return key[:i]
	}
	return key
}

func (q *Query) generation(resource string) uint64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.gens[resource]
}

// Key builds a cache key: <resource>[:<detail>...]@<userID>
func Key(resource, userID string, detail ...string) string {
	var sb strings.Builder
	sb.WriteString(resource)
	for _, d := range detail {
		if d == "" {
			continue
		}
		sb.WriteByte(':')
		sb.WriteString(d)
	}
	sb.WriteByte('@')
	sb.WriteString(userID)
	return sb.String()
}

// Fetch returns the cached value of key, or calls fn once (whatever the number of
// concurrent callers) and caches its result. Store failures fall back to fn.
func Fetch[T any](ctx context.Context, q *Query, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var value T
	resource := resourceOf(key)
	gen := q.generation(resource)

	raw, err, _ := q.group.Do(key+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		cached, err := q.store.Get(ctx, key)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ErrMiss) {
			q.logger.Warn(fmt.Sprintf("cache get %s: %v", key, err), err)
		}

		// fn serves every waiting caller: detach it from the first caller's cancellation
		fresh, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(fresh)
		if err != nil {
			return nil, errors.Wrap(err, "encoding cache value")
		}
		q.set(ctx, resource, gen, key, data)
		return data, nil
	})
	if err != nil {
		return value, err
	}

	if err := json.Unmarshal(raw.([]byte), &value); err != nil {
		return value, errors.Wrap(err, "decoding cache value")
	}
	return value, nil
}

// set caches data unless resource was invalidated since the fetch started.
func (q *Query) set(ctx context.Context, resource string, gen uint64, key string, data []byte) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.gens[resource] != gen {
		return
	}
	if err := q.store.Set(ctx, key, data, q.ttl); err != nil {
		q.logger.Warn(fmt.Sprintf("cache set %s: %v", key, err), err)
	}
}

// Invalidate drops every cached query of resource, for all users.
func (q *Query) Invalidate(ctx context.Context, resources ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, res := range resources {
		q.gens[res]++
		for _, prefix := range []string{res + "@", res + ":"} {
			if err := q.store.DeletePrefix(ctx, prefix); err != nil {
				q.logger.Error(fmt.Sprintf("cache invalidate %s: %v", res, err), err)
			}
		}
	}
}

// Forget drops the single cached query key.
func (q *Query) Forget(ctx context.Context, key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.gens[resourceOf(key)]++
	if err := q.store.DeletePrefix(ctx, key); err != nil {
		q.logger.Error(fmt.Sprintf("cache forget %s: %v", key, err), err)
	}
}
