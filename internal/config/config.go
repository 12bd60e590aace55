package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ListenerConfig holds the network settings for a single listener (main or management).
type ListenerConfig struct {
	Port              int
	TLSCertFile       string
	TLSKeyFile        string
	ReadHeaderTimeout time.Duration
}

// TLSEnabled reports whether the listener has a certificate and key configured.
func (l ListenerConfig) TLSEnabled() bool {
	return l.TLSCertFile != "" && l.TLSKeyFile != ""
}

type contextKey struct{}

// WithContext returns a new context carrying the given Config.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

// FromContext retrieves the Config from the context.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(contextKey{}).(*Config)
	return cfg
}

// Config holds all configuration for the archive service.
type Config struct {
	// DataDir is the root directory holding the export dumps.
	DataDir string

	// Store backend type. Only "export" ships today; the registry keeps the
	// seam open for alternative backends.
	StoreType string

	// Cache backend for uploads-existence checks: "ristretto" or "none".
	CacheType string

	// UploadsCacheTTL bounds how long a cached uploads-existence result is trusted.
	UploadsCacheTTL time.Duration

	// Server
	Listener           ListenerConfig
	ManagementListener ListenerConfig
	// ManagementListenerEnabled is true when --management-port was explicitly
	// provided. When false, management endpoints are served on the main port.
	ManagementListenerEnabled bool
	// ManagementAccessLog enables HTTP access logging for management endpoints
	// (/health, /ready, /metrics). Disabled by default to suppress probe noise.
	ManagementAccessLog bool
	CORSEnabled         bool
	CORSOrigins         string

	// MetricsLabels is a comma-separated list of key=value pairs added as
	// constant labels to all Prometheus metrics. Values support ${VAR} expansion.
	MetricsLabels string

	// Body size limit for POST bodies (bytes)
	MaxBodySize int64

	// Graceful shutdown drain timeout (seconds)
	DrainTimeout int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		StoreType:       "export",
		CacheType:       "ristretto",
		UploadsCacheTTL: 30 * time.Second,
		Listener: ListenerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
		},
		MetricsLabels: "service=archive-service",
		MaxBodySize:   1024 * 1024, // 1 MB; only note bodies are posted
		DrainTimeout:  30,
	}
}

// ResolvedDataDir returns the absolute, cleaned data directory. A relative
// DataDir is resolved against the current working directory.
func (c *Config) ResolvedDataDir() string {
	dir := strings.TrimSpace(c.DataDir)
	if dir == "" {
		dir = filepath.Join(".", "data")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// DataDirExists reports whether the data directory is present.
// A missing directory is treated as an empty dataset, not a fatal error.
func (c *Config) DataDirExists() bool {
	info, err := os.Stat(c.ResolvedDataDir())
	return err == nil && info.IsDir()
}
