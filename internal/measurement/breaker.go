package measurement

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrWarehouseCircuitOpen is returned while the breaker is rejecting
// warehouse calls after repeated failures.
var ErrWarehouseCircuitOpen = errors.New("warehouse circuit open")

// BreakerConfig holds configuration for the warehouse circuit breaker.
type BreakerConfig struct {
	// Name identifies this breaker for logging.
	Name string

	// MaxRequests is the number of probe requests allowed half-open.
	// Default: 1
	MaxRequests uint32

	// Timeout is the open period before probing again.
	// Default: 60 seconds
	Timeout time.Duration

	// ReadyToTrip decides when to open. If nil, opens at 5+ requests
	// with a 50% failure rate.
	ReadyToTrip func(counts gobreaker.Counts) bool
}

func defaultReadyToTrip(counts gobreaker.Counts) bool {
	failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
	return counts.Requests >= 5 && failureRatio >= 0.5
}

// BreakerRepository wraps a Repository with a circuit breaker so a
// suspended or unreachable warehouse fails fast instead of holding every
// dashboard pass for a full timeout. It never retries: an open circuit
// surfaces to the orchestrator like any other query failure.
type BreakerRepository struct {
	inner Repository

	// lists guards both candidate-list queries (dates and parameters);
	// measurements gets its own breaker so a failing candidate query
	// cannot blackhole measurement reads, and vice versa.
	lists        *gobreaker.CircuitBreaker[[]string]
	measurements *gobreaker.CircuitBreaker[[]Measurement]
}

// NewBreakerRepository wraps inner with a circuit breaker.
func NewBreakerRepository(inner Repository, cfg BreakerConfig) *BreakerRepository {
	if cfg.Name == "" {
		cfg.Name = "warehouse"
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = defaultReadyToTrip
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: cfg.ReadyToTrip,
	}

	return &BreakerRepository{
		inner:        inner,
		lists:        gobreaker.NewCircuitBreaker[[]string](settings),
		measurements: gobreaker.NewCircuitBreaker[[]Measurement](settings),
	}
}

// AvailableDates delegates through the breaker.
func (r *BreakerRepository) AvailableDates(ctx context.Context) ([]string, error) {
	dates, err := r.lists.Execute(func() ([]string, error) {
		return r.inner.AvailableDates(ctx)
	})
	return dates, wrapBreakerErr(err)
}

// AvailableParameters delegates through the breaker.
func (r *BreakerRepository) AvailableParameters(ctx context.Context) ([]string, error) {
	parameters, err := r.lists.Execute(func() ([]string, error) {
		return r.inner.AvailableParameters(ctx)
	})
	return parameters, wrapBreakerErr(err)
}

// Measurements delegates through the breaker.
func (r *BreakerRepository) Measurements(ctx context.Context, parameterName, dateID string) ([]Measurement, error) {
	measurements, err := r.measurements.Execute(func() ([]Measurement, error) {
		return r.inner.Measurements(ctx, parameterName, dateID)
	})
	return measurements, wrapBreakerErr(err)
}

func wrapBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrWarehouseCircuitOpen
	}
	return err
}

var _ Repository = (*BreakerRepository)(nil)
