package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/vitalchat/backend/internal/service"
)

const (
	stateCookieName = "vitalchat.oauth_state"
	stateCookiePath = "/auth/google"
	stateCookieAge  = 600
)

// GoogleAuthHandler runs the Google authorization-code login.
type GoogleAuthHandler struct {
	google   service.IGoogleProvider
	state    *service.StateSigner
	identity service.IIdentityService
	profiles service.IProfileService
	login    *AuthHandler
	secure   bool
}

func NewGoogleAuthHandler(google service.IGoogleProvider, state *service.StateSigner, identity service.IIdentityService, profiles service.IProfileService, login *AuthHandler, secure bool) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		google:   google,
		state:    state,
		identity: identity,
		profiles: profiles,
		login:    login,
		secure:   secure,
	}
}

func (h *GoogleAuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/google", h.Begin)
	router.GET("/google/callback", h.Callback)
}

func (h *GoogleAuthHandler) enabled() bool {
	return h.google != nil && h.state != nil
}

// Begin redirects to Google's consent screen. The state parameter is signed
// and its nonce is pinned to the browser through a short-lived cookie.
func (h *GoogleAuthHandler) Begin(c *gin.Context) {
	if !h.enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google login is not configured"})
		return
	}

	state, nonce, err := h.state.Issue()
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to issue oauth state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, nonce, stateCookieAge, stateCookiePath, "", h.secure, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// Callback completes the login and sends the browser to the chat page, or to
// the profile page when the account has no health profile yet.
func (h *GoogleAuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.enabled() {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	nonce, _ := c.Cookie(stateCookieName)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, "", -1, stateCookiePath, "", h.secure, true)

	if reason := c.Query("error"); reason != "" {
		slog.InfoContext(ctx, "google login declined", "reason", reason)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if err := h.state.Verify(c.Query("state"), nonce); err != nil {
		slog.WarnContext(ctx, "rejected oauth callback", "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	user, err := h.google.Exchange(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "google code exchange failed", "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	// Only a verified address may link to an existing account.
	email := ""
	if user.VerifiedEmail {
		email = user.Email
	}
	handle, err := h.identity.VerifyOrLinkFederated(ctx, user.ID, email, user.Name)
	if err != nil {
		slog.ErrorContext(ctx, "federated login failed", "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if err := h.login.startSession(c, handle); err != nil {
		slog.ErrorContext(ctx, "failed to start session after google login", "user_id", handle.ID, "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	exists, err := h.profiles.Exists(ctx, handle.ID)
	if err != nil {
		slog.WarnContext(ctx, "failed to check health profile", "user_id", handle.ID, "error", err)
	}
	if exists {
		c.Redirect(http.StatusFound, "/chat")
		return
	}
	c.Redirect(http.StatusFound, "/profile")
}
