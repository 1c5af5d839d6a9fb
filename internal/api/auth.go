package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/vitalchat/backend/internal/middleware"
	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/service"
	"github.com/pageza/vitalchat/backend/internal/types"
)

type AuthHandler struct {
	identity service.IIdentityService
	sessions service.ISessionManager
	auth     *middleware.SessionAuth
}

func NewAuthHandler(identity service.IIdentityService, sessions service.ISessionManager, auth *middleware.SessionAuth) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		sessions: sessions,
		auth:     auth,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/signup", h.Signup)
	router.POST("/login", h.Login)
	router.POST("/logout", middleware.RequireAuth(), h.Logout)
	router.GET("/me", h.Me)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req types.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	handle, err := h.identity.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "username or email already exists"})
		return
	case err != nil:
		slog.ErrorContext(c.Request.Context(), "signup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		return
	}

	if err := h.startSession(c, handle); err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to start session after signup", "user_id", handle.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "signup successful", "userId": handle.ID})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	handle, err := h.identity.VerifyLocal(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	if err := h.startSession(c, handle); err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to start session after login", "user_id", handle.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "login successful", "user": handle})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if session, ok := middleware.CurrentSession(c); ok {
		if err := h.sessions.Destroy(c.Request.Context(), session.ID); err != nil {
			slog.WarnContext(c.Request.Context(), "failed to destroy session", "error", err)
		}
	}
	h.auth.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
}

// startSession replaces whatever session the request carried with a fresh
// one bound to handle and sets its cookie.
func (h *AuthHandler) startSession(c *gin.Context, handle *models.AccountHandle) error {
	var previousID string
	if current, ok := middleware.CurrentSession(c); ok {
		previousID = current.ID
	}

	session, err := h.sessions.Regenerate(c.Request.Context(), previousID, handle)
	if err != nil {
		return err
	}
	c.Set(middleware.ContextSession, session)
	c.Set(middleware.ContextUserID, session.AccountID)
	c.Set(middleware.ContextUsername, session.Username)
	return h.auth.SetCookie(c, session)
}
