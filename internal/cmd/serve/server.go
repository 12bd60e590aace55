package serve

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/slackarchive/archive-service/internal/config"
	"github.com/slackarchive/archive-service/internal/middleware"
	"github.com/slackarchive/archive-service/internal/plugin/route/attachments"
	"github.com/slackarchive/archive-service/internal/plugin/route/conversations"
	"github.com/slackarchive/archive-service/internal/plugin/route/notes"
	"github.com/slackarchive/archive-service/internal/plugin/route/search"
	routesystem "github.com/slackarchive/archive-service/internal/plugin/route/system"
	"github.com/slackarchive/archive-service/internal/plugin/route/users"
	registrycache "github.com/slackarchive/archive-service/internal/registry/cache"
	registryroute "github.com/slackarchive/archive-service/internal/registry/route"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

// Server holds the running server and its subsystems.
type Server struct {
	Config *config.Config
	Store  registrystore.ExportStore
	Router *gin.Engine
	// Port is the bound main listener port; useful when the configured port is 0.
	Port int

	httpServer      *http.Server
	closeManagement func(context.Context) error
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.closeManagement != nil {
		_ = s.closeManagement(ctx)
	}
	return s.httpServer.Shutdown(ctx)
}

// StartServer initializes all subsystems and starts the HTTP server.
// Use cfg.Listener.Port=0 for a random port; the bound port is Server.Port.
func StartServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	log.Info("Starting archive service",
		"port", cfg.Listener.Port,
		"dataDir", cfg.ResolvedDataDir(),
		"store", cfg.StoreType,
		"cache", cfg.CacheType,
	)

	// Initialize Prometheus metrics with configured constant labels.
	metricsLabels, err := middleware.ParseMetricsLabels(cfg.MetricsLabels)
	if err != nil {
		return nil, fmt.Errorf("invalid --metrics-labels: %w", err)
	}
	middleware.InitMetrics(metricsLabels)

	// Carry config in the context so plugin loaders can read it.
	ctx = config.WithContext(ctx, cfg)

	// Initialize store
	storeLoader, err := registrystore.Select(cfg.StoreType)
	if err != nil {
		return nil, err
	}
	store, err := storeLoader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	// Initialize uploads-existence cache (optional).
	var uploadsCache registrycache.UploadsCache
	if cacheLoader, err := registrycache.Select(cfg.CacheType); err != nil {
		log.Warn("Cache not available", "cache", cfg.CacheType, "err", err)
	} else if c, err := cacheLoader(ctx); err != nil {
		log.Warn("Failed to initialize cache", "cache", cfg.CacheType, "err", err)
	} else {
		uploadsCache = c
	}

	// Set up gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.ManagementAccessLog {
		router.Use(middleware.AccessLogMiddleware())
	} else {
		router.Use(middleware.AccessLogMiddleware("/health", "/ready", "/metrics"))
	}
	router.Use(middleware.MetricsMiddleware())
	router.Use(maxBodySizeMiddleware(cfg.MaxBodySize))
	if cfg.CORSEnabled {
		router.Use(corsMiddleware(cfg.CORSOrigins))
	}

	// Mount main route plugins on the main router.
	for _, loader := range registryroute.MainRouteLoaders() {
		if err := loader(router); err != nil {
			return nil, fmt.Errorf("failed to load routes: %w", err)
		}
	}

	// Mount API routes now that the store is available.
	conversations.MountRoutes(router, store)
	search.MountRoutes(router, store)
	attachments.MountRoutes(router, store, uploadsCache, cfg)
	notes.MountRoutes(router, store)
	users.MountRoutes(router, store)

	// Mount management route plugins. If a dedicated management port is configured,
	// run them on a bare gin engine served by the management server. Otherwise,
	// mount them on the main router so single-port behaviour is unchanged.
	var closeManagement func(context.Context) error
	if cfg.ManagementListenerEnabled {
		mgmtRouter := gin.New()
		mgmtRouter.Use(gin.Recovery())
		if cfg.ManagementAccessLog {
			mgmtRouter.Use(middleware.AccessLogMiddleware())
		}
		for _, loader := range registryroute.ManagementRouteLoaders() {
			if err := loader(mgmtRouter); err != nil {
				return nil, fmt.Errorf("failed to load management routes: %w", err)
			}
		}
		// Management listener shares TLS cert/key with the main listener.
		mgmtCfg := cfg.ManagementListener
		mgmtCfg.TLSCertFile = cfg.Listener.TLSCertFile
		mgmtCfg.TLSKeyFile = cfg.Listener.TLSKeyFile
		_, closeManagement, err = startManagementServer(mgmtCfg, mgmtRouter)
		if err != nil {
			return nil, fmt.Errorf("failed to start management server: %w", err)
		}
	} else {
		for _, loader := range registryroute.ManagementRouteLoaders() {
			if err := loader(router); err != nil {
				return nil, fmt.Errorf("failed to load management routes: %w", err)
			}
		}
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Listener.Port))
	if err != nil {
		return nil, fmt.Errorf("listen failed: %w", err)
	}
	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: cfg.Listener.ReadHeaderTimeout,
	}
	go func() {
		var serveErr error
		if cfg.Listener.TLSEnabled() {
			serveErr = httpServer.ServeTLS(lis, cfg.Listener.TLSCertFile, cfg.Listener.TLSKeyFile)
		} else {
			serveErr = httpServer.Serve(lis)
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			log.Error("HTTP server failed", "err", serveErr)
		}
	}()

	port := lis.Addr().(*net.TCPAddr).Port
	log.Info("Server listening", "port", port, "tls", cfg.Listener.TLSEnabled())

	routesystem.MarkReady()
	return &Server{
		Config:          cfg,
		Store:           store,
		Router:          router,
		Port:            port,
		httpServer:      httpServer,
		closeManagement: closeManagement,
	}, nil
}
