package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Pinger checks a dependency's liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db      Pinger
	version string
	started time.Time
	logger  *zap.Logger
}

// HealthResponse is the health probe payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime"`
}

// NewHealthHandler creates a health handler. db may be nil when no
// database readiness check is wanted.
func NewHealthHandler(db Pinger, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
		started: time.Now(),
		logger:  logger,
	}
}

// Register mounts the health routes on mux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /ready", h.HandleReady)
}

// HandleHealth reports process liveness.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}

// HandleReady reports readiness: the process is up and its database
// answers within two seconds.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			WriteJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error: &ErrorInfo{
					Code:    "NOT_READY",
					Message: "database unavailable",
				},
				Timestamp: time.Now(),
			})
			return
		}
	}

	WriteSuccess(w, HealthResponse{
		Status:  "ready",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}
