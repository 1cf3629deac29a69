package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedStore wraps a durable Store with a Redis read-through cache, so
// repeated Get/GetByName calls for the same model (the common case: a
// runtime checking authorization against the same model ID on every
// request) don't round-trip to Postgres or SQLite each time.
type CachedStore struct {
	backend Store
	client  *redis.Client
	ttl     time.Duration
	prefix  string
}

// NewCachedStore wraps backend with a Redis cache using the given client.
func NewCachedStore(backend Store, client *redis.Client, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedStore{backend: backend, client: client, ttl: ttl, prefix: "fgac:model:"}
}

func (c *CachedStore) Put(ctx context.Context, m *Model) (string, error) {
	id, err := c.backend.Put(ctx, m)
	if err != nil {
		return "", err
	}
	c.client.Del(ctx, c.key(id))
	return id, nil
}

func (c *CachedStore) Get(ctx context.Context, id string) (*Model, error) {
	key := c.key(id)

	data, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var m Model
		if jsonErr := json.Unmarshal([]byte(data), &m); jsonErr == nil {
			return &m, nil
		}
		// Corrupt cache entry, fall through to the backend.
	} else if err != redis.Nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	m, err := c.backend.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.store(ctx, key, m)
	return m, nil
}

func (c *CachedStore) GetByName(ctx context.Context, name string) (*Model, error) {
	// Name lookups resolve the latest version, which can change out from
	// under a cache entry, so they always go to the backend.
	return c.backend.GetByName(ctx, name)
}

func (c *CachedStore) List(ctx context.Context, limit, offset int) ([]*Model, int, error) {
	// Listing is a paginated view over the whole collection, not a
	// single-key lookup, so it isn't worth caching; go straight to the backend.
	return c.backend.List(ctx, limit, offset)
}

func (c *CachedStore) Close() error {
	if err := c.client.Close(); err != nil {
		return err
	}
	return c.backend.Close()
}

func (c *CachedStore) store(ctx context.Context, key string, m *Model) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, c.ttl)
}

func (c *CachedStore) key(id string) string {
	return c.prefix + id
}
