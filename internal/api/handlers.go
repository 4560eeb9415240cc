package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ragchat/internal/models"
	"ragchat/internal/rag"
	"ragchat/internal/storage"
)

// Assistant is the conversation surface the HTTP layer drives.
type Assistant interface {
	StartConversation() *models.ConversationRecord
	Conversation(ctx context.Context, id string) (*models.ConversationRecord, error)
	SubmitTurn(ctx context.Context, conversationID, query string) (*rag.TurnResult, error)
	List(ctx context.Context) ([]storage.Summary, error)
}

// Handler wires HTTP routes to the turn orchestrator.
type Handler struct {
	assistant Assistant
	apiKey    string
}

// NewHandler constructs a Handler instance. An empty apiKey disables the
// key check.
func NewHandler(assistant Assistant, apiKey string) *Handler {
	return &Handler{assistant: assistant, apiKey: apiKey}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	if h.apiKey != "" {
		api.Use(h.requireAPIKey())
	}
	api.POST("/conversations", h.startConversation)
	api.GET("/conversations", h.listConversations)
	api.GET("/conversations/:id", h.getConversation)
	api.POST("/conversations/:id/query", h.submitQuery)
}

func (h *Handler) requireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != h.apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}

func (h *Handler) startConversation(c *gin.Context) {
	record := h.assistant.StartConversation()
	c.JSON(http.StatusCreated, gin.H{
		"id":       record.ID,
		"messages": record.Messages,
	})
}

func (h *Handler) listConversations(c *gin.Context) {
	summaries, err := h.assistant.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if summaries == nil {
		summaries = []storage.Summary{}
	}
	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

func (h *Handler) getConversation(c *gin.Context) {
	id := c.Param("id")
	record, err := h.assistant.Conversation(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

type queryRequest struct {
	Content string `json:"content"`
}

func (h *Handler) submitQuery(c *gin.Context) {
	id := c.Param("id")
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	query := strings.TrimSpace(req.Content)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	result, err := h.assistant.SubmitTurn(c.Request.Context(), id, query)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		case errors.Is(err, rag.ErrRetrieval), errors.Is(err, rag.ErrGeneration):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		case errors.Is(err, storage.ErrIO):
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
