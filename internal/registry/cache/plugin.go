package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/slackarchive/archive-service/internal/registry/store"
)

// UploadsCache caches uploads-existence results so the UI can skip attachment
// requests that are known to fail. Entries are advisory; the store remains
// the source of truth.
type UploadsCache interface {
	Available() bool
	Get(ctx context.Context, key string) (*store.UploadsCheck, bool)
	Set(ctx context.Context, key string, check *store.UploadsCheck, ttl time.Duration)
}

// Loader creates a cache from config carried in the context.
type Loader func(ctx context.Context) (UploadsCache, error)

// Plugin represents a cache plugin.
type Plugin struct {
	Name   string
	Loader Loader
}

var plugins []Plugin

// Register adds a cache plugin. Called from init() in plugin packages.
func Register(p Plugin) {
	plugins = append(plugins, p)
}

// Names returns all registered cache plugin names.
func Names() []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name
	}
	return names
}

// Select returns the loader for the named cache plugin.
func Select(name string) (Loader, error) {
	for _, p := range plugins {
		if p.Name == name {
			return p.Loader, nil
		}
	}
	return nil, fmt.Errorf("unknown cache %q; valid: %v", name, Names())
}
