package attachments

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/slackarchive/archive-service/internal/config"
	"github.com/slackarchive/archive-service/internal/middleware"
	registrycache "github.com/slackarchive/archive-service/internal/registry/cache"
	registryroute "github.com/slackarchive/archive-service/internal/registry/route"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

func init() {
	registryroute.Register(registryroute.Plugin{
		Order: 300,
		Loader: func(r *gin.Engine) error {
			return nil
		},
	})
}

// MountRoutes mounts the attachment download and uploads-existence routes.
func MountRoutes(r *gin.Engine, store registrystore.ExportStore, uploadsCache registrycache.UploadsCache, cfg *config.Config) {
	g := r.Group("/v1")

	g.GET("/attachments", func(c *gin.Context) {
		getAttachment(c, store)
	})
	g.GET("/uploads-exist", func(c *gin.Context) {
		uploadsExist(c, store, uploadsCache, cfg)
	})
}

func getAttachment(c *gin.Context, store registrystore.ExportStore) {
	ref := registrystore.AttachmentRef{
		StorageKey:     c.Query("storageKey"),
		FileID:         c.Query("fileId"),
		FileName:       c.Query("fileName"),
		ConversationID: c.Query("conversationId"),
	}
	if ref.StorageKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": "storageKey is required"})
		return
	}

	resolved, err := store.ResolveAttachment(c.Request.Context(), ref)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, resolved.ContentType, resolved.Data)
}

func uploadsExist(c *gin.Context, store registrystore.ExportStore, uploadsCache registrycache.UploadsCache, cfg *config.Config) {
	storageKey := c.Query("storageKey")
	conversationID := c.Query("conversationId")
	if storageKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": "storageKey is required"})
		return
	}

	ctx := c.Request.Context()
	key := cacheKey(storageKey, conversationID)
	if uploadsCache != nil && uploadsCache.Available() {
		if check, ok := uploadsCache.Get(ctx, key); ok {
			if middleware.CacheHitsTotal != nil {
				middleware.CacheHitsTotal.Inc()
			}
			c.JSON(http.StatusOK, check)
			return
		}
		if middleware.CacheMissesTotal != nil {
			middleware.CacheMissesTotal.Inc()
		}
	}

	check, err := store.UploadsExist(ctx, storageKey, conversationID)
	if err != nil {
		handleError(c, err)
		return
	}
	if uploadsCache != nil && uploadsCache.Available() {
		uploadsCache.Set(ctx, key, check, cfg.UploadsCacheTTL)
	}
	c.JSON(http.StatusOK, check)
}

func cacheKey(storageKey, conversationID string) string {
	return strings.Join([]string{storageKey, conversationID}, "|")
}

func handleError(c *gin.Context, err error) {
	var notFound *registrystore.NotFoundError
	var validation *registrystore.ValidationError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error(), "field": validation.Field})
	default:
		log.Error("Attachment request failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
