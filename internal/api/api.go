package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/vitalchat/backend/internal/middleware"
	"github.com/pageza/vitalchat/backend/internal/repository"
	"github.com/pageza/vitalchat/backend/internal/service"
)

// Dependencies carries the services behind the HTTP surface.
type Dependencies struct {
	Identity service.IIdentityService
	Sessions service.ISessionManager
	Chat     service.IChatService
	Profiles service.IProfileService
	Auth     *middleware.SessionAuth

	// Google is nil when federated login is not configured.
	Google       service.IGoogleProvider
	State        *service.StateSigner
	SecureCookie bool

	// ChatLimit guards the chat routes; nil disables rate limiting.
	ChatLimit gin.HandlerFunc

	// Checks are the dependencies reported by /health, keyed by name.
	Checks map[string]repository.Pinger
}

// SetupAPI registers every route on router. Session loading is expected to
// run earlier in the middleware chain.
func SetupAPI(router *gin.Engine, deps Dependencies) {
	authHandler := NewAuthHandler(deps.Identity, deps.Sessions, deps.Auth)
	googleHandler := NewGoogleAuthHandler(deps.Google, deps.State, deps.Identity, deps.Profiles, authHandler, deps.SecureCookie)
	chatHandler := NewChatHandler(deps.Chat, deps.ChatLimit)
	profileHandler := NewProfileHandler(deps.Profiles)
	healthHandler := NewHealthHandler(deps.Checks)

	auth := router.Group("/auth")
	{
		authHandler.RegisterRoutes(auth)
		googleHandler.RegisterRoutes(auth)
	}

	protected := router.Group("/api", middleware.RequireAuth())
	{
		chatHandler.RegisterRoutes(protected)
		profileHandler.RegisterRoutes(protected)
	}

	healthHandler.RegisterRoutes(&router.RouterGroup)
}
