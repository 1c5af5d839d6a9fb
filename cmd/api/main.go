package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pageza/vitalchat/backend/config"
	"github.com/pageza/vitalchat/backend/internal/api"
	"github.com/pageza/vitalchat/backend/internal/database"
	"github.com/pageza/vitalchat/backend/internal/logging"
	"github.com/pageza/vitalchat/backend/internal/metrics"
	"github.com/pageza/vitalchat/backend/internal/middleware"
	"github.com/pageza/vitalchat/backend/internal/repository"
	"github.com/pageza/vitalchat/backend/internal/server"
	"github.com/pageza/vitalchat/backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := logging.Setup(os.Stdout, cfg.LogLevel, config.IsProduction())
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Credential store
	db, err := database.NewGorm(cfg)
	if err != nil {
		return err
	}
	if cfg.DBDriver == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database handle: %w", err)
		}
		applied, err := database.ApplyMigrations(ctx, sqlDB)
		if err != nil {
			return err
		}
		for _, name := range applied {
			logger.Info("applied migration", "name", name)
		}
	}

	// Profile and conversation stores
	mongoClient, mongoDB, err := database.NewMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Warn("failed to disconnect from mongo", "error", err)
		}
	}()

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	accounts := repository.NewGormAccountStore(db)
	profiles := repository.NewMongoProfileStore(mongoDB)
	conversations := repository.NewMongoConversationStore(mongoDB)
	if err := profiles.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := conversations.EnsureIndexes(ctx); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	sessionStore := service.NewRedisSessionStore(redisClient)
	sessions := service.NewSessionManager(sessionStore, cfg.SessionSecret, cfg.SessionTTL)
	auth := middleware.NewSessionAuth(sessions, middleware.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.CookieSecure,
		MaxAge: sessions.TTL(),
	})

	generator := service.NewOpenAITextGenerator(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	gateway := service.NewCompletionGateway(generator, cfg.LLMTimeout, m)
	assembler := service.NewContextAssembler(profiles, conversations)
	limiter := middleware.NewChatRateLimiter(redisClient, cfg.ChatRateLimit, cfg.ChatRateWindow, m)

	deps := api.Dependencies{
		Identity:     service.NewIdentityService(accounts, m),
		Sessions:     sessions,
		Chat:         service.NewChatService(assembler, gateway, conversations, m),
		Profiles:     service.NewProfileService(profiles),
		Auth:         auth,
		SecureCookie: cfg.CookieSecure,
		ChatLimit:    limiter.RateLimitMiddleware(),
		Checks: map[string]repository.Pinger{
			"postgres": accounts,
			"mongo":    profiles,
			"redis":    sessionStore,
		},
	}
	if cfg.DBDriver == "sqlite" {
		deps.Checks["sqlite"] = accounts
		delete(deps.Checks, "postgres")
	}
	if cfg.GoogleEnabled() {
		deps.Google = service.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL())
		deps.State = service.NewStateSigner(cfg.SessionSecret)
	} else {
		logger.Warn("google login disabled: GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are not set")
	}

	srv := server.New(cfg, server.Observability{Logger: logger, Metrics: m, Gatherer: reg}, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
