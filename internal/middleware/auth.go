package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/vitalchat/backend/internal/models"
	"github.com/pageza/vitalchat/backend/internal/service"
)

// Context keys set by SessionAuth.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextSession  = "session"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// SessionAuth resolves the session cookie into an authenticated account and
// keeps the cookie's expiry sliding.
type SessionAuth struct {
	sessions service.ISessionManager
	cookie   CookieConfig
}

func NewSessionAuth(sessions service.ISessionManager, cookie CookieConfig) *SessionAuth {
	return &SessionAuth{sessions: sessions, cookie: cookie}
}

// Load binds the session, if any, to the request. Requests without a valid
// session continue anonymously.
func (a *SessionAuth) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(a.cookie.Name)
		if err != nil || value == "" {
			c.Next()
			return
		}

		id, err := a.sessions.DecodeCookie(value)
		if err != nil {
			a.ClearCookie(c)
			c.Next()
			return
		}

		ctx := c.Request.Context()
		session, err := a.sessions.Load(ctx, id)
		if errors.Is(err, service.ErrSessionNotFound) {
			a.ClearCookie(c)
			c.Next()
			return
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to load session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}

		if touched, err := a.sessions.Touch(ctx, session); err != nil {
			slog.WarnContext(ctx, "failed to refresh session expiry", "error", err)
		} else {
			session = touched
			if err := a.SetCookie(c, session); err != nil {
				slog.WarnContext(ctx, "failed to refresh session cookie", "error", err)
			}
		}

		c.Set(ContextSession, session)
		c.Set(ContextUserID, session.AccountID)
		c.Set(ContextUsername, session.Username)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}
		c.Next()
	}
}

// SetCookie writes the signed cookie for s.
func (a *SessionAuth) SetCookie(c *gin.Context, s *models.Session) error {
	value, err := a.sessions.EncodeCookie(s)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.cookie.Name, value, int(a.cookie.MaxAge.Seconds()), "/", "", a.cookie.Secure, true)
	return nil
}

// ClearCookie expires the session cookie in the browser.
func (a *SessionAuth) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.cookie.Name, "", -1, "/", "", a.cookie.Secure, true)
}

// CurrentUser returns the account bound to the request.
func CurrentUser(c *gin.Context) (*models.AccountHandle, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return nil, false
	}
	accountID, ok := id.(uint)
	if !ok {
		return nil, false
	}
	return &models.AccountHandle{ID: accountID, Username: c.GetString(ContextUsername)}, true
}

// CurrentSession returns the session bound to the request.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*models.Session)
	return s, ok
}
