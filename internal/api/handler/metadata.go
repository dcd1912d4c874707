package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/api/models"
	"github.com/airsight/airsight/internal/api/response"
	"github.com/airsight/airsight/internal/catalog"
)

// MetadataSource exposes the warehouse lookups backing the metadata
// endpoints.
type MetadataSource interface {
	AvailableDates(ctx context.Context) ([]string, error)
	AvailableParameters(ctx context.Context) ([]string, error)
}

// MetadataHandler handles candidate-date and pollutant lookups.
type MetadataHandler struct {
	source  MetadataSource
	catalog []catalog.Pollutant
	logger  zerolog.Logger
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(source MetadataSource, pollutants []catalog.Pollutant, logger zerolog.Logger) *MetadataHandler {
	return &MetadataHandler{
		source:  source,
		catalog: pollutants,
		logger:  logger,
	}
}

// ListDates handles GET /v1/metadata/dates.
func (h *MetadataHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.source.AvailableDates(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list candidate dates")
		response.ServiceUnavailable(w, r, "Unable to reach the warehouse. Make sure the SQL warehouse is running and your credentials are correct.")
		return
	}

	if dates == nil {
		dates = []string{}
	}
	response.JSON(w, r, http.StatusOK, models.DateList{Dates: dates})
}

// ListPollutants handles GET /v1/metadata/pollutants. Only pollutants
// present in both the catalog and the warehouse are returned, in catalog
// order.
func (h *MetadataHandler) ListPollutants(w http.ResponseWriter, r *http.Request) {
	available, err := h.source.AvailableParameters(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list available parameters")
		response.ServiceUnavailable(w, r, "Unable to reach the warehouse. Make sure the SQL warehouse is running and your credentials are correct.")
		return
	}

	offered := catalog.Intersect(h.catalog, available)
	if offered == nil {
		offered = []catalog.Pollutant{}
	}
	response.JSON(w, r, http.StatusOK, models.PollutantList{Pollutants: offered})
}
