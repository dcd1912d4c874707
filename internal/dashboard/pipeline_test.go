package dashboard_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/dashboard"
	"github.com/airsight/airsight/internal/measurement"
	"github.com/airsight/airsight/internal/warehouse"
)

// fakeSource is an in-memory measurement source for pipeline tests.
type fakeSource struct {
	dates      []string
	parameters []string
	rows       map[string][]measurement.Measurement

	datesErr        error
	parametersErr   error
	measurementsErr error

	measurementsCalls int
}

func (f *fakeSource) AvailableDates(context.Context) ([]string, error) {
	return f.dates, f.datesErr
}

func (f *fakeSource) AvailableParameters(context.Context) ([]string, error) {
	return f.parameters, f.parametersErr
}

func (f *fakeSource) Measurements(_ context.Context, parameter, date string) ([]measurement.Measurement, error) {
	f.measurementsCalls++
	if f.measurementsErr != nil {
		return nil, f.measurementsErr
	}
	return f.rows[parameter+"/"+date], nil
}

func newTestPipeline(source *fakeSource) *dashboard.Pipeline {
	return dashboard.NewPipeline(dashboard.PipelineConfig{
		Source: source,
		Logger: zerolog.Nop(),
	})
}

func healthySource() *fakeSource {
	at := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	return &fakeSource{
		dates:      []string{"2026-08-28", "2026-08-27"},
		parameters: []string{"pm25", "o3"},
		rows: map[string][]measurement.Measurement{
			"pm25/2026-08-28": {
				{
					StationName: "Downtown Toronto",
					Locality:    "Toronto",
					Latitude:    43.65,
					Longitude:   -79.38,
					Units:       "µg/m³",
					MeasuredAt:  at,
					Value:       12.5,
					TimeWindow:  "07:00",
				},
				{
					StationName: "Vancouver Harbour",
					Locality:    "Vancouver",
					Latitude:    49.29,
					Longitude:   -123.11,
					Units:       "µg/m³",
					MeasuredAt:  at.Add(time.Hour),
					Value:       4.1,
					TimeWindow:  "08:00",
				},
			},
		},
	}
}

func TestPipeline_Run_Defaults(t *testing.T) {
	pipeline := newTestPipeline(healthySource())

	view, err := pipeline.Run(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, dashboard.StateDone, view.State)
	require.NotNil(t, view.Selection)
	assert.Equal(t, "pm25", view.Selection.Pollutant.Code)
	assert.Equal(t, "2026-08-28", view.Selection.Date)

	require.NotNil(t, view.Summary)
	assert.Equal(t, 2, view.Summary.Stations)
	assert.Equal(t, 2, view.Summary.Readings)

	require.Len(t, view.Metrics, 3)
	assert.Equal(t, "4.100", view.Metrics[0].Value)
	assert.Equal(t, "12.500", view.Metrics[2].Value)

	require.NotNil(t, view.Map)
	assert.Len(t, view.Map.Frames, 2)

	require.NotNil(t, view.Table)
	assert.Equal(t, 12.5, view.Table.Rows[0].Value)
}

func TestPipeline_Run_OfferedPollutantsAreIntersection(t *testing.T) {
	source := healthySource()
	source.parameters = []string{"pm25", "noise", "o3"}
	pipeline := newTestPipeline(source)

	view, err := pipeline.Run(context.Background(), "", "")
	require.NoError(t, err)

	require.Len(t, view.Pollutants, 2)
	assert.Equal(t, "pm25", view.Pollutants[0].Code)
	assert.Equal(t, "o3", view.Pollutants[1].Code)
}

func TestPipeline_Run_NormalizesDateOrder(t *testing.T) {
	source := healthySource()
	source.dates = []string{"", "2026-08-27", "2026-08-28", "2026-08-27"}
	pipeline := newTestPipeline(source)

	view, err := pipeline.Run(context.Background(), "", "")
	require.NoError(t, err)

	// Defaulting must land on the most recent date even when the source
	// hands back an unordered list with duplicates and blanks.
	assert.Equal(t, "2026-08-28", view.Selection.Date)
	assert.Equal(t, []string{"2026-08-28", "2026-08-27"}, view.Dates)
}

func TestPipeline_Run_EmptyResult(t *testing.T) {
	source := healthySource()
	pipeline := newTestPipeline(source)

	view, err := pipeline.Run(context.Background(), "o3", "2026-08-27")
	require.NoError(t, err)

	assert.Equal(t, dashboard.StateEmpty, view.State)
	assert.Equal(t, "No data found for Ozone (O₃) on 2026-08-27.", view.Message)

	// Nothing rendered for an empty table.
	assert.Nil(t, view.Summary)
	assert.Nil(t, view.Metrics)
	assert.Nil(t, view.Map)
	assert.Nil(t, view.Table)
}

func TestPipeline_Run_EmptyCatalogIntersection(t *testing.T) {
	source := healthySource()
	source.parameters = []string{"noise", "radon"}
	pipeline := newTestPipeline(source)

	view, err := pipeline.Run(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, dashboard.StateEmpty, view.State)
	assert.NotEmpty(t, view.Message)
	assert.Empty(t, view.Pollutants)
	assert.Equal(t, 0, source.measurementsCalls)

	// The candidate lists serialize as empty arrays, not null, so the
	// view keeps the same contract as the metadata endpoints.
	encoded, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"pollutants":[]`)
	assert.Contains(t, string(encoded), `"dates":["2026-08-28","2026-08-27"]`)
}

func TestPipeline_Run_ConnectionFailure(t *testing.T) {
	source := healthySource()
	source.datesErr = fmt.Errorf("%w: dial tcp: connection refused", warehouse.ErrConnection)
	pipeline := newTestPipeline(source)

	view, err := pipeline.Run(context.Background(), "", "")
	require.Error(t, err)
	assert.Nil(t, view, "no partial view on failure")

	var passErr *dashboard.PassError
	require.ErrorAs(t, err, &passErr)
	assert.Equal(t, dashboard.StageConnecting, passErr.Stage)
	assert.ErrorIs(t, err, warehouse.ErrConnection)
	assert.Contains(t, passErr.UserMessage(), "Make sure the SQL warehouse is running")
}

func TestPipeline_Run_QueryFailureDuringLoad(t *testing.T) {
	source := healthySource()
	source.measurementsErr = fmt.Errorf("%w: warehouse suspended", warehouse.ErrQuery)
	pipeline := newTestPipeline(source)

	view, err := pipeline.Run(context.Background(), "", "")
	require.Error(t, err)
	assert.Nil(t, view)

	var passErr *dashboard.PassError
	require.ErrorAs(t, err, &passErr)
	assert.Equal(t, dashboard.StageLoading, passErr.Stage)
	assert.Contains(t, passErr.UserMessage(), "Make sure the SQL warehouse is running")
}

func TestPipeline_Run_UnknownSelection(t *testing.T) {
	pipeline := newTestPipeline(healthySource())

	_, err := pipeline.Run(context.Background(), "so2", "")
	require.Error(t, err)
	assert.True(t, dashboard.IsSelectionError(err))

	var passErr *dashboard.PassError
	require.ErrorAs(t, err, &passErr)
	assert.Equal(t, dashboard.StageSelecting, passErr.Stage)
	assert.NotContains(t, passErr.UserMessage(), "SQL warehouse")

	_, err = pipeline.Run(context.Background(), "", "1999-01-01")
	assert.True(t, dashboard.IsSelectionError(err))
}
