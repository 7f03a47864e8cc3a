package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/synapse-notes/backend/utils"
	"go.uber.org/zap"
)

// Pinger reports database reachability
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// ProviderLister lists the registered provider adapters
type ProviderLister interface {
	List() []string
	Count() int
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// StatusResponse describes the running build
type StatusResponse struct {
	Version     string   `json:"version"`
	Environment string   `json:"environment"`
	Providers   []string `json:"providers"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	db          Pinger
	providers   ProviderLister
	version     string
	environment string
	logger      *zap.Logger
	now         func() time.Time
}

// NewHealthHandler creates a new HealthHandler. db may be nil.
func NewHealthHandler(db Pinger, providers ProviderLister, version, environment string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		providers:   providers,
		version:     version,
		environment: environment,
		logger:      logger,
		now:         time.Now,
	}
}

// HandleHealth handles GET /healthz. Always 200 while the process serves.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	switch {
	case h.db == nil:
		checks["database"] = "not_initialized"
		ready = false
	default:
		if err := h.db.HealthCheck(ctx); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			checks["database"] = "unhealthy"
			ready = false
		} else {
			checks["database"] = "healthy"
		}
	}

	if h.providers == nil || h.providers.Count() == 0 {
		checks["providers"] = "none_configured"
		ready = false
	} else {
		checks["providers"] = "configured"
	}

	status, httpStatus := "ready", http.StatusOK
	if !ready {
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	}

	if err := utils.WriteJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// HandleStatus handles GET /api/status
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if h.providers != nil {
		names = h.providers.List()
	}

	_ = utils.WriteOK(w, StatusResponse{
		Version:     h.version,
		Environment: h.environment,
		Providers:   names,
	})
}
