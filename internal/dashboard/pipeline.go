package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/catalog"
	"github.com/airsight/airsight/internal/measurement"
)

// Stage identifies where in a pass a failure occurred.
type Stage string

const (
	StageConnecting Stage = "connecting"
	StageSelecting  Stage = "selecting"
	StageLoading    Stage = "loading"
)

// warehouseHint is appended to every warehouse-side failure message.
const warehouseHint = "Make sure the SQL warehouse is running and your credentials are correct."

// PassError is a failed dashboard pass. It is terminal for the pass;
// the next request restarts from the connecting stage.
type PassError struct {
	Stage Stage
	Err   error
}

func (e *PassError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PassError) Unwrap() error {
	return e.Err
}

// UserMessage renders the single human-readable string shown for this
// failure.
func (e *PassError) UserMessage() string {
	if e.Stage == StageSelecting {
		return fmt.Sprintf("Error: %v.", e.Err)
	}
	return fmt.Sprintf("Error: %v. %s", e.Err, warehouseHint)
}

// IsSelectionError reports whether err is a rejected filter selection
// rather than a warehouse failure.
func IsSelectionError(err error) bool {
	return errors.Is(err, catalog.ErrUnknownPollutant) || errors.Is(err, catalog.ErrUnknownDate)
}

// PipelineConfig holds configuration for the dashboard pipeline.
type PipelineConfig struct {
	// Source serves the candidate lists and measurement tables,
	// typically the TTL-cached measurement service.
	Source measurement.Repository

	// Catalog is the static pollutant catalog. Defaults to
	// catalog.Default().
	Catalog []catalog.Pollutant

	// Logger for pipeline operations.
	Logger zerolog.Logger
}

// Pipeline runs one dashboard pass per request. Within a pass the steps
// are strictly sequential; there is no background prefetch and no
// cancellation of a pass once started.
type Pipeline struct {
	source  measurement.Repository
	catalog []catalog.Pollutant
	logger  zerolog.Logger
}

// NewPipeline creates a dashboard pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default()
	}

	return &Pipeline{
		source:  cfg.Source,
		catalog: cat,
		logger:  cfg.Logger,
	}
}

// Run executes one pass: fetch candidate lists, resolve the selection,
// load measurements, and render. Either the full view renders or nothing
// does; an empty result yields an empty-state view without touching the
// renderer.
func (p *Pipeline) Run(ctx context.Context, pollutantCode, dateID string) (*View, error) {
	// Connecting: candidate lists from cache or warehouse.
	dates, err := p.source.AvailableDates(ctx)
	if err != nil {
		return nil, &PassError{Stage: StageConnecting, Err: err}
	}
	// Defaulting to dates[0] as the most recent date only works on a
	// descending, duplicate-free list, so re-assert that here instead of
	// trusting the source.
	dates = measurement.NormalizeDates(dates)
	parameters, err := p.source.AvailableParameters(ctx)
	if err != nil {
		return nil, &PassError{Stage: StageConnecting, Err: err}
	}

	// Selecting: intersect the catalog with what the warehouse reports
	// and validate or default the requested pair.
	offered := catalog.Intersect(p.catalog, parameters)

	selection, err := catalog.Resolve(offered, dates, pollutantCode, dateID)
	if errors.Is(err, catalog.ErrNoPollutants) || errors.Is(err, catalog.ErrNoDates) {
		// The selector has no valid option; surface an explicit empty
		// state instead of an error. Candidate lists serialize as empty
		// arrays, never null, matching the metadata endpoints.
		if offered == nil {
			offered = []catalog.Pollutant{}
		}
		p.logger.Warn().Err(err).Msg("no selectable data in warehouse")
		return &View{
			State:      StateEmpty,
			Message:    "No air quality data is available right now. Check back once the warehouse has measurements.",
			Pollutants: offered,
			Dates:      dates,
		}, nil
	}
	if err != nil {
		return nil, &PassError{Stage: StageSelecting, Err: err}
	}

	// Loading: the measurements table for the resolved pair.
	rows, err := p.source.Measurements(ctx, selection.Pollutant.Code, selection.Date)
	if err != nil {
		return nil, &PassError{Stage: StageLoading, Err: err}
	}

	view := &View{
		Pollutants: offered,
		Dates:      dates,
		Selection:  &Selection{Pollutant: selection.Pollutant, Date: selection.Date},
	}

	// Empty-check: halt before rendering, metrics over an empty table
	// are undefined.
	if len(rows) == 0 {
		view.State = StateEmpty
		view.Message = fmt.Sprintf("No data found for %s on %s.", selection.Pollutant.Name, selection.Date)
		p.logger.Info().
			Str("pollutant", selection.Pollutant.Code).
			Str("date", selection.Date).
			Msg("dashboard pass ended empty")
		return view, nil
	}

	// Rendering.
	units := rows[0].Units
	view.State = StateDone
	view.Summary = BuildSummary(rows, selection.Date, units)
	view.Metrics = BuildMetrics(rows, units)
	view.Map = BuildMapFigure(rows, units)
	view.Table = BuildTable(rows)

	p.logger.Debug().
		Str("pollutant", selection.Pollutant.Code).
		Str("date", selection.Date).
		Int("readings", len(rows)).
		Int("frames", len(view.Map.Frames)).
		Msg("dashboard pass rendered")

	return view, nil
}
