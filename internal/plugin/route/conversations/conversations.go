package conversations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slackarchive/archive-service/internal/model"
	registryroute "github.com/slackarchive/archive-service/internal/registry/route"
	registrystore "github.com/slackarchive/archive-service/internal/registry/store"
)

func init() {
	registryroute.Register(registryroute.Plugin{
		Order: 100,
		Loader: func(r *gin.Engine) error {
			return nil // routes are mounted by the serve command after store init
		},
	})
}

// MountRoutes mounts conversation and thread routes on the engine.
// Called after store initialization so the store is available.
func MountRoutes(r *gin.Engine, store registrystore.ExportStore) {
	g := r.Group("/v1")

	g.GET("/conversations", func(c *gin.Context) {
		listConversations(c, store)
	})
	g.GET("/conversations/:conversationId", func(c *gin.Context) {
		getConversation(c, store)
	})
	g.GET("/conversations/:conversationId/messages", func(c *gin.Context) {
		getMessages(c, store)
	})
	g.GET("/conversations/:conversationId/threads", func(c *gin.Context) {
		getThreads(c, store)
	})
	g.GET("/threads/replies", func(c *gin.Context) {
		getThreadReplies(c, store)
	})
}

func listConversations(c *gin.Context, store registrystore.ExportStore) {
	conversations, err := store.ListConversations(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if conversations == nil {
		conversations = []model.Conversation{}
	}
	c.JSON(http.StatusOK, conversations)
}

func getConversation(c *gin.Context, store registrystore.ExportStore) {
	conv, err := store.GetConversation(c.Request.Context(), c.Param("conversationId"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func getMessages(c *gin.Context, store registrystore.ExportStore) {
	ctx := c.Request.Context()
	conversationID := c.Param("conversationId")

	conv, err := store.GetConversation(ctx, conversationID)
	if err != nil {
		handleError(c, err)
		return
	}
	messages, err := store.LoadMessages(ctx, conversationID)
	if err != nil {
		handleError(c, err)
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"conversation": conv, "messages": messages})
}

func getThreads(c *gin.Context, store registrystore.ExportStore) {
	groups, err := store.Threads(c.Request.Context(), c.Param("conversationId"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func getThreadReplies(c *gin.Context, store registrystore.ExportStore) {
	conversationID := c.Query("conversationId")
	threadTs := c.Query("threadTs")
	if conversationID == "" || threadTs == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": "validation_error", "error": "conversationId and threadTs are required"})
		return
	}

	replies, err := store.ThreadReplies(c.Request.Context(), conversationID, threadTs)
	if err != nil {
		handleError(c, err)
		return
	}
	if replies == nil {
		replies = []model.Message{}
	}
	c.JSON(http.StatusOK, replies)
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
