// Package noop registers the "none" cache plugin, used when caching of
// uploads-existence checks is disabled.
package noop

import (
	"context"
	"time"

	"github.com/slackarchive/archive-service/internal/registry/cache"
	"github.com/slackarchive/archive-service/internal/registry/store"
)

func init() {
	cache.Register(cache.Plugin{
		Name: "none",
		Loader: func(ctx context.Context) (cache.UploadsCache, error) {
			return &noopCache{}, nil
		},
	})
}

type noopCache struct{}

func (n *noopCache) Available() bool { return false }
func (n *noopCache) Get(_ context.Context, _ string) (*store.UploadsCheck, bool) {
	return nil, false
}
func (n *noopCache) Set(_ context.Context, _ string, _ *store.UploadsCheck, _ time.Duration) {}

var _ cache.UploadsCache = (*noopCache)(nil)
