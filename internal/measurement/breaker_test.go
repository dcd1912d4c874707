package measurement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsight/airsight/internal/measurement"
)

func TestBreakerRepository_PassesThrough(t *testing.T) {
	repo := &countingRepository{
		dates: []string{"2026-08-28"},
		rows:  sampleRows(),
	}
	breaker := measurement.NewBreakerRepository(repo, measurement.BreakerConfig{})

	ctx := context.Background()

	dates, err := breaker.AvailableDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-28"}, dates)

	rows, err := breaker.Measurements(ctx, "pm25", "2026-08-28")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestBreakerRepository_OpensAfterRepeatedFailures(t *testing.T) {
	repo := &countingRepository{err: errors.New("dial tcp: connection refused")}
	breaker := measurement.NewBreakerRepository(repo, measurement.BreakerConfig{
		Timeout: time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := breaker.AvailableDates(ctx)
		require.Error(t, err)
	}
	calls := repo.datesCalls

	// Circuit open: the warehouse is no longer touched.
	_, err := breaker.AvailableDates(ctx)
	assert.ErrorIs(t, err, measurement.ErrWarehouseCircuitOpen)
	assert.Equal(t, calls, repo.datesCalls)
}

func TestBreakerRepository_CandidateListsShareBreaker(t *testing.T) {
	repo := &countingRepository{err: errors.New("boom")}
	breaker := measurement.NewBreakerRepository(repo, measurement.BreakerConfig{
		Timeout: time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	})

	ctx := context.Background()

	_, err := breaker.AvailableDates(ctx)
	require.Error(t, err)

	// Dates and parameters ride the same candidate-list breaker, so once
	// it opens the parameters query never reaches the repository.
	_, err = breaker.AvailableParameters(ctx)
	assert.ErrorIs(t, err, measurement.ErrWarehouseCircuitOpen)
	assert.Equal(t, 0, repo.parametersCalls)
}

func TestBreakerRepository_MeasurementsIndependentOfListBreaker(t *testing.T) {
	repo := &countingRepository{err: errors.New("boom")}
	breaker := measurement.NewBreakerRepository(repo, measurement.BreakerConfig{
		Timeout: time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	})

	ctx := context.Background()

	_, err := breaker.AvailableDates(ctx)
	require.Error(t, err)
	_, err = breaker.AvailableDates(ctx)
	assert.ErrorIs(t, err, measurement.ErrWarehouseCircuitOpen)

	// The measurements breaker has seen no failures yet, so the first
	// call still reaches the repository.
	_, err = breaker.Measurements(ctx, "pm25", "2026-08-28")
	require.Error(t, err)
	assert.NotErrorIs(t, err, measurement.ErrWarehouseCircuitOpen)
	assert.Equal(t, 1, repo.measurementsCalls)
}
