// Package handler provides HTTP handlers for the AirSight API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
)

// Pinger verifies the warehouse connection is alive.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	warehouse Pinger
	cache     Pinger
}

// NewOpsHandler creates a new OpsHandler. Either pinger may be nil, in
// which case readiness skips that dependency check.
func NewOpsHandler(version, buildTime string, warehouse, cache Pinger) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		warehouse: warehouse,
		cache:     cache,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. Not ready
// while the warehouse cannot be pinged. An unreachable cache only
// degrades the service: queries fall through to the warehouse.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	if h.warehouse != nil {
		if err := h.warehouse.Ping(r.Context()); err != nil {
			health.Status = models.HealthStatusFail
			health.Details = map[string]interface{}{"warehouse": err.Error()}
			response.JSON(w, r, http.StatusServiceUnavailable, health)
			return
		}
	}

	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			health.Status = models.HealthStatusDegraded
			health.Details = map[string]interface{}{"cache": err.Error()}
		}
	}

	response.JSON(w, r, http.StatusOK, health)
}
