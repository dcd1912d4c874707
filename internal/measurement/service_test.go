package measurement_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/cache"
	"github.com/airsight/airsight/internal/measurement"
)

// countingRepository records warehouse round-trips per operation.
type countingRepository struct {
	dates      []string
	parameters []string
	rows       []measurement.Measurement
	err        error

	datesCalls        int
	parametersCalls   int
	measurementsCalls int
}

func (r *countingRepository) AvailableDates(context.Context) ([]string, error) {
	r.datesCalls++
	return r.dates, r.err
}

func (r *countingRepository) AvailableParameters(context.Context) ([]string, error) {
	r.parametersCalls++
	return r.parameters, r.err
}

func (r *countingRepository) Measurements(_ context.Context, _, _ string) ([]measurement.Measurement, error) {
	r.measurementsCalls++
	return r.rows, r.err
}

func sampleRows() []measurement.Measurement {
	at := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	return []measurement.Measurement{
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
	}
}

func TestService_Measurements_CacheHitSkipsWarehouse(t *testing.T) {
	repo := &countingRepository{rows: sampleRows()}
	service := measurement.NewService(measurement.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})

	ctx := context.Background()

	first, err := service.Measurements(ctx, "pm25", "2026-08-28")
	require.NoError(t, err)

	second, err := service.Measurements(ctx, "pm25", "2026-08-28")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.measurementsCalls, "second call within the freshness window must not hit the warehouse")
	assert.Equal(t, first, second)

	// A hit serves the stored encoding, so the results are identical
	// byte for byte, not just structurally equal.
	firstEncoded, err := json.Marshal(first)
	require.NoError(t, err)
	secondEncoded, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstEncoded, secondEncoded)
}

func TestService_Measurements_DistinctParamsAreDistinctEntries(t *testing.T) {
	repo := &countingRepository{rows: sampleRows()}
	service := measurement.NewService(measurement.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})

	ctx := context.Background()

	_, err := service.Measurements(ctx, "pm25", "2026-08-28")
	require.NoError(t, err)
	_, err = service.Measurements(ctx, "o3", "2026-08-28")
	require.NoError(t, err)
	_, err = service.Measurements(ctx, "pm25", "2026-08-27")
	require.NoError(t, err)

	assert.Equal(t, 3, repo.measurementsCalls)
}

func TestService_Measurements_ExpiryForcesRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	store := cache.NewMemoryWithClock(func() time.Time { return now })

	repo := &countingRepository{rows: sampleRows()}
	service := measurement.NewService(measurement.ServiceConfig{
		Repository: repo,
		Store:      store,
		Logger:     zerolog.Nop(),
	})

	ctx := context.Background()

	_, err := service.Measurements(ctx, "pm25", "2026-08-28")
	require.NoError(t, err)

	// Within the window: served from cache.
	now = now.Add(299 * time.Second)
	_, err = service.Measurements(ctx, "pm25", "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.measurementsCalls)

	// Window elapsed: warehouse queried again.
	now = now.Add(2 * time.Second)
	_, err = service.Measurements(ctx, "pm25", "2026-08-28")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.measurementsCalls)
}

func TestService_AvailableDates_Cached(t *testing.T) {
	repo := &countingRepository{dates: []string{"2026-08-28", "2026-08-27"}}
	service := measurement.NewService(measurement.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})

	ctx := context.Background()

	first, err := service.AvailableDates(ctx)
	require.NoError(t, err)
	second, err := service.AvailableDates(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.datesCalls)
	assert.Equal(t, []string{"2026-08-28", "2026-08-27"}, first)
	assert.Equal(t, first, second)
}

func TestService_AvailableParameters_Cached(t *testing.T) {
	repo := &countingRepository{parameters: []string{"pm25", "o3"}}
	service := measurement.NewService(measurement.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})

	ctx := context.Background()

	_, err := service.AvailableParameters(ctx)
	require.NoError(t, err)
	_, err = service.AvailableParameters(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.parametersCalls)
}

func TestService_ErrorsAreNotCached(t *testing.T) {
	repo := &countingRepository{err: errors.New("warehouse suspended")}
	service := measurement.NewService(measurement.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})

	ctx := context.Background()

	_, err := service.AvailableDates(ctx)
	require.Error(t, err)
	_, err = service.AvailableDates(ctx)
	require.Error(t, err)

	assert.Equal(t, 2, repo.datesCalls, "failures must not be memoized")
}

// failingStore simulates a broken cache backend.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("cache down")
}

func TestService_CacheFailureFallsThroughToWarehouse(t *testing.T) {
	repo := &countingRepository{dates: []string{"2026-08-28"}}
	service := measurement.NewService(measurement.ServiceConfig{
		Repository: repo,
		Store:      failingStore{},
		Logger:     zerolog.Nop(),
	})

	dates, err := service.AvailableDates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-28"}, dates)
	assert.Equal(t, 1, repo.datesCalls)
}
