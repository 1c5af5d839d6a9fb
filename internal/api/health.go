package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/vitalchat/backend/internal/repository"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports whether the backing stores are reachable.
type HealthHandler struct {
	checks map[string]repository.Pinger
}

func NewHealthHandler(checks map[string]repository.Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
}

func (h *HealthHandler) Health(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	body := gin.H{"status": "ok"}
	status := http.StatusOK
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		err := h.checks[name].Ping(ctx)
		cancel()

		if err != nil {
			slog.WarnContext(c.Request.Context(), "health check failed", "dependency", name, "error", err)
			body[name] = "down"
			body["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		body[name] = "up"
	}

	c.JSON(status, body)
}
