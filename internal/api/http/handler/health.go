package handler

import (
	"context"
	"net/http"

	"github.com/pkondratev/auth-server/internal/logger"
)

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health exposes the readiness endpoint.
type Health struct {
	db     Pinger
	logger *logger.Logger
}

func NewHealth(db Pinger, logger *logger.Logger) *Health {
	return &Health{db: db, logger: logger}
}

// Check handles GET /api/v1/health.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
