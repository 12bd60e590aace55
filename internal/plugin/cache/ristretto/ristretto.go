// Package ristretto provides an in-process uploads-existence cache backed by
// dgraph-io/ristretto.
package ristretto

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/slackarchive/archive-service/internal/registry/cache"
	"github.com/slackarchive/archive-service/internal/registry/store"
)

func init() {
	cache.Register(cache.Plugin{
		Name: "ristretto",
		Loader: func(ctx context.Context) (cache.UploadsCache, error) {
			return New()
		},
	})
}

type uploadsCache struct {
	cache *ristretto.Cache[string, *store.UploadsCheck]
}

func New() (cache.UploadsCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, *store.UploadsCheck]{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &uploadsCache{cache: c}, nil
}

func (c *uploadsCache) Available() bool { return true }

func (c *uploadsCache) Get(_ context.Context, key string) (*store.UploadsCheck, bool) {
	return c.cache.Get(key)
}

func (c *uploadsCache) Set(_ context.Context, key string, check *store.UploadsCheck, ttl time.Duration) {
	c.cache.SetWithTTL(key, check, 1, ttl)
	// Wait for the set to land so a follow-up Get observes it.
	c.cache.Wait()
}

var _ cache.UploadsCache = (*uploadsCache)(nil)
