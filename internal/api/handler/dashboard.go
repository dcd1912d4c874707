package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/dashboard"
)

// DashboardRunner executes the dashboard pipeline for a selection.
type DashboardRunner interface {
	Run(ctx context.Context, pollutantCode, dateID string) (*dashboard.View, error)
}

// DashboardHandler handles dashboard view requests.
type DashboardHandler struct {
	pipeline DashboardRunner
	logger   zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(pipeline DashboardRunner, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// GetDashboard handles GET /v1/dashboard. The pollutant and date query
// parameters are optional; when omitted the first offered candidate of
// each is used.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	pollutant := r.URL.Query().Get("pollutant")
	date := r.URL.Query().Get("date")

	view, err := h.pipeline.Run(r.Context(), pollutant, date)
	if err != nil {
		if dashboard.IsSelectionError(err) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}

		var passErr *dashboard.PassError
		if errors.As(err, &passErr) {
			h.logger.Error().Err(err).Str("stage", string(passErr.Stage)).Msg("dashboard pass failed")
			response.ServiceUnavailable(w, r, passErr.UserMessage())
			return
		}

		h.logger.Error().Err(err).Msg("dashboard pass failed")
		response.InternalError(w, r, "an unexpected error occurred")
		return
	}

	response.JSON(w, r, http.StatusOK, view)
}
