package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Options configures Open.
type Options struct {
	Driver   string // "postgres", "sqlite", or "memory"
	URL      string // driver-specific DSN/path, ignored for memory
	CacheURL string // optional Redis address layered in front of the backend
}

// Open constructs a Store from Options, wrapping it in a Redis cache when
// CacheURL is set.
func Open(ctx context.Context, opts Options) (Store, error) {
	var backend Store
	var err error

	switch opts.Driver {
	case "postgres":
		backend, err = NewPostgresStore(ctx, opts.URL)
	case "sqlite":
		backend, err = NewSQLiteStore(opts.URL)
	case "memory", "":
		backend = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if opts.CacheURL == "" {
		return backend, nil
	}

	client := redis.NewClient(&redis.Options{Addr: opts.CacheURL})
	if err := client.Ping(ctx).Err(); err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	return NewCachedStore(backend, client, 0), nil
}
