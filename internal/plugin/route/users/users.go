package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	registryroute "github.com/slackarchive/archive-service/internal/registry/route"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

func init() {
	registryroute.Register(registryroute.Plugin{
		Order: 500,
		Loader: func(r *gin.Engine) error {
			return nil
		},
	})
}

// MountRoutes mounts the user-profile lookup route.
func MountRoutes(r *gin.Engine, store registrystore.ExportStore) {
	r.GET("/v1/users", func(c *gin.Context) {
		getUserProfiles(c, store)
	})
}

func getUserProfiles(c *gin.Context, store registrystore.ExportStore) {
	conversationID := c.Query("conversationId")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": "conversationId is required"})
		return
	}

	var userIDs []string
	for _, id := range strings.Split(c.Query("userIds"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			userIDs = append(userIDs, id)
		}
	}

	profiles, err := store.UserProfiles(c.Request.Context(), conversationID, userIDs)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userProfiles": profiles})
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
