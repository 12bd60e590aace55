package notes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	registryroute "github.com/slackarchive/archive-service/internal/registry/route"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

func init() {
	registryroute.Register(registryroute.Plugin{
		Order: 400,
		Loader: func(r *gin.Engine) error {
			return nil
		},
	})
}

// MountRoutes mounts the personal-note route.
func MountRoutes(r *gin.Engine, store registrystore.ExportStore) {
	r.POST("/v1/notes", func(c *gin.Context) {
		setNote(c, store)
	})
}

func setNote(c *gin.Context, store registrystore.ExportStore) {
	var req struct {
		ConversationID string  `json:"conversationId" binding:"required"`
		MessageTs      string  `json:"messageTs"      binding:"required"`
		Note           *string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": err.Error()})
		return
	}

	if err := store.SetNote(c.Request.Context(), req.ConversationID, req.MessageTs, req.Note); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
