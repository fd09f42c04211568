package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/luckydraw/backend/internal/models"
	"github.com/luckydraw/backend/internal/repository"
	"github.com/luckydraw/backend/internal/services"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	store  repository.AccountStore
	cache  services.TicketCache
	logger *slog.Logger
}

func NewHealthHandler(store repository.AccountStore, cache services.TicketCache, logger *slog.Logger) *HealthHandler {
	if cache == nil {
		cache = services.NoopTicketCache{}
	}
	return &HealthHandler{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Health reports whether the API and its backing services are reachable
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthStatus
// @Failure 503 {object} models.HealthStatus
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := models.HealthStatus{
		Status:   "ok",
		Message:  "Lucky Draw API is running",
		Database: "connected",
		Cache:    "connected",
	}
	code := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check: database unreachable", "error", err)
		status.Status = "degraded"
		status.Message = "Database is unreachable"
		status.Database = "disconnected"
		code = http.StatusServiceUnavailable
	}

	if err := h.cache.Ping(ctx); err != nil {
		if errors.Is(err, services.ErrCacheDisabled) {
			status.Cache = "disabled"
		} else {
			h.logger.Warn("health check: cache unreachable", "error", err)
			status.Cache = "disconnected"
		}
	}

	services.SendJSON(w, code, status)
}
