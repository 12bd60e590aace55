package search

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/slackarchive/archive-service/internal/model"
	registryroute "github.com/slackarchive/archive-service/internal/registry/route"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

func init() {
	registryroute.Register(registryroute.Plugin{
		Order: 200,
		Loader: func(r *gin.Engine) error {
			return nil
		},
	})
}

// MountRoutes mounts the search route.
func MountRoutes(r *gin.Engine, store registrystore.ExportStore) {
	r.GET("/v1/search", func(c *gin.Context) {
		searchMessages(c, store)
	})
}

func searchMessages(c *gin.Context, store registrystore.ExportStore) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": "q is required"})
		return
	}

	results, err := store.Search(c.Request.Context(), query)
	if err != nil {
		handleError(c, err)
		return
	}
	if results == nil {
		results = []model.Message{}
	}
	c.JSON(http.StatusOK, results)
}

func handleError(c *gin.Context, err error) {
	var notFound *registrystore.NotFoundError
	var validation *registrystore.ValidationError

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
