package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/leta-relay/internal/core"
)

const healthTimeout = 2 * time.Second

// APIHandlers provides plain HTTP endpoints.
type APIHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub: hub,
		log: logger,
	}
}

// HealthResponse represents the health check body.
type HealthResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Identities int    `json:"identities"`
	Rooms      int    `json:"rooms"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health reports liveness along with current hub counts.
// GET / and GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	stats, err := h.hub.Stats(ctx)
	if err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:     "ok",
		Message:    "relay is running",
		Timestamp:  isoTime(time.Now()),
		Identities: stats.Identities,
		Rooms:      stats.Rooms,
	})
}
