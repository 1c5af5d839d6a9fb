package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/vitalchat/backend/internal/middleware"
	"github.com/pageza/vitalchat/backend/internal/service"
	"github.com/pageza/vitalchat/backend/internal/types"
)

type ChatHandler struct {
	chat    service.IChatService
	limiter gin.HandlerFunc
}

func NewChatHandler(chat service.IChatService, limiter gin.HandlerFunc) *ChatHandler {
	return &ChatHandler{
		chat:    chat,
		limiter: limiter,
	}
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	chat := router.Group("/chat")
	if h.limiter != nil {
		chat.Use(h.limiter)
	}
	{
		chat.POST("", h.Send)
		chat.POST("/session", h.NewSession)
		chat.GET("/history", h.History)
		chat.GET("/sessions", h.Sessions)
		chat.GET("/session/:sessionId", h.SessionTurns)
	}
}

func (h *ChatHandler) NewSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessionId": h.chat.NewSession()})
}

func (h *ChatHandler) Send(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	turn, err := h.chat.Send(c.Request.Context(), user.ID, req.SessionID, req.Message)
	if errors.Is(err, service.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "chat turn failed", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get a response"})
		return
	}

	c.JSON(http.StatusOK, turn)
}

func (h *ChatHandler) History(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	turns, err := h.chat.History(c.Request.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to load chat history", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, turns)
}

func (h *ChatHandler) Sessions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	sessions, err := h.chat.Sessions(c.Request.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list chat sessions", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sessions"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *ChatHandler) SessionTurns(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	turns, err := h.chat.SessionTurns(c.Request.Context(), user.ID, c.Param("sessionId"))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to load chat session", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		return
	}
	c.JSON(http.StatusOK, turns)
}
