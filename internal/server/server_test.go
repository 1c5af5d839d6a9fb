package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/vitalchat/backend/config"
	"github.com/pageza/vitalchat/backend/internal/api"
	"github.com/pageza/vitalchat/backend/internal/metrics"
	"github.com/pageza/vitalchat/backend/internal/middleware"
	"github.com/pageza/vitalchat/backend/internal/repository"
	"github.com/pageza/vitalchat/backend/internal/server"
	"github.com/pageza/vitalchat/backend/internal/service"
	"github.com/pageza/vitalchat/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) *server.Server {
	t.Helper()

	redisClient, _ := testhelpers.SetupRedis(t)
	store := service.NewRedisSessionStore(redisClient)
	sessions := service.NewSessionManager(store, "server-test-secret-0123456789abcd", time.Hour)
	auth := middleware.NewSessionAuth(sessions, middleware.CookieConfig{Name: "vitalchat.sid", MaxAge: time.Hour})

	profiles := testhelpers.NewMemoryProfileStore()
	conversations := testhelpers.NewMemoryConversationStore()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	cfg := &config.Config{
		ServerHost:  "127.0.0.1",
		ServerPort:  "0",
		CORSOrigins: []string{"http://app.test"},
		LLMTimeout:  time.Second,
	}
	deps := api.Dependencies{
		Identity: service.NewIdentityService(testhelpers.NewMemoryAccountStore(), m),
		Sessions: sessions,
		Chat: service.NewChatService(
			service.NewContextAssembler(profiles, conversations),
			service.NewCompletionGateway(nil, time.Second, m),
			conversations, m,
		),
		Profiles: service.NewProfileService(profiles),
		Auth:     auth,
		Checks:   map[string]repository.Pinger{"redis": store},
	}
	return server.New(cfg, server.Observability{Metrics: m, Gatherer: reg}, deps)
}

func TestServerRoutes(t *testing.T) {
	srv := newServer(t)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","redis":"up"}`, w.Body.String())

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `vitalchat_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, body, `route="unmatched",status="404"`)
	assert.Contains(t, body, `route="/api/chat",status="401"`)
}

func TestServerCORS(t *testing.T) {
	srv := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://app.test")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestServerStartAndShutdown(t *testing.T) {
	srv := newServer(t)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	// Give the listener a moment before asking it to stop.
	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-done)
}
