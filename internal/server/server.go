package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/vitalchat/backend/config"
	"github.com/pageza/vitalchat/backend/internal/api"
	"github.com/pageza/vitalchat/backend/internal/logging"
	"github.com/pageza/vitalchat/backend/internal/metrics"
	"github.com/pageza/vitalchat/backend/internal/middleware"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *slog.Logger
}

// Observability groups the logging and metrics plumbing shared by every route.
type Observability struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// New builds the router: recovery, request logging, metrics, CORS and
// session loading run ahead of every handler.
func New(cfg *config.Config, obs Observability, deps api.Dependencies) *Server {
	logger := obs.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		logging.RequestLogger(logger),
		middleware.Metrics(obs.Metrics),
		middleware.CORS(cfg.CORSOrigins),
	)
	if deps.Auth != nil {
		router.Use(deps.Auth.Load())
	}

	if obs.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{})))
	}
	api.SetupAPI(router, deps)
	router.NoRoute(middleware.NotFound())

	return &Server{
		router: router,
		logger: logger,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			// Chat requests wait on the completion gateway.
			WriteTimeout: cfg.LLMTimeout + 15*time.Second,
			IdleTimeout:  2 * time.Minute,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
