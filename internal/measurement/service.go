package measurement

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/cache"
)

// FreshnessWindow is how long a cached query result stays live. It
// applies uniformly to all cached operations.
const FreshnessWindow = 300 * time.Second

// Cache keys per query identity.
const (
	keyDates        = "dates"
	keyParameters   = "parameters"
	keyMeasurements = "measurements"
)

// Observer receives query and cache outcomes for instrumentation.
// Implemented by middleware.WarehouseMetrics.
type Observer interface {
	RecordQuery(operation string, duration time.Duration, err error)
	RecordCacheHit(operation string)
	RecordCacheMiss(operation string)
}

// ServiceConfig holds configuration for the measurement service.
type ServiceConfig struct {
	// Repository is the warehouse-backed query layer.
	Repository Repository

	// Store holds memoized results. Defaults to an in-memory store.
	Store cache.Store

	// Logger for service operations.
	Logger zerolog.Logger

	// TTL is the freshness window (default: FreshnessWindow).
	TTL time.Duration

	// Metrics is optional instrumentation for queries and the cache.
	Metrics Observer
}

// Service memoizes the warehouse queries behind a freshness window.
// A live entry is returned without touching the warehouse; an expired
// entry is treated as absent and recomputed. Results are stored encoded,
// so a hit returns byte-identical data regardless of backend. Concurrent
// callers racing on the same expired key may both hit the warehouse;
// both compute the same result and last write wins.
type Service struct {
	repo    Repository
	store   cache.Store
	logger  zerolog.Logger
	ttl     time.Duration
	metrics Observer
}

// NewService creates a measurement service.
func NewService(cfg ServiceConfig) *Service {
	store := cfg.Store
	if store == nil {
		store = cache.NewMemory()
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = FreshnessWindow
	}

	return &Service{
		repo:    cfg.Repository,
		store:   store,
		logger:  cfg.Logger,
		ttl:     ttl,
		metrics: cfg.Metrics,
	}
}

// AvailableDates returns the distinct measurement dates, most recent
// first, from cache or the warehouse.
func (s *Service) AvailableDates(ctx context.Context) ([]string, error) {
	key := cache.Key(keyDates)

	var dates []string
	if s.lookup(ctx, keyDates, key, &dates) {
		return dates, nil
	}

	start := time.Now()
	dates, err := s.repo.AvailableDates(ctx)
	s.observeQuery(keyDates, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.memoize(ctx, key, dates)

	return dates, nil
}

// AvailableParameters returns the warehouse's reported parameter names,
// from cache or the warehouse.
func (s *Service) AvailableParameters(ctx context.Context) ([]string, error) {
	key := cache.Key(keyParameters)

	var parameters []string
	if s.lookup(ctx, keyParameters, key, &parameters) {
		return parameters, nil
	}

	start := time.Now()
	parameters, err := s.repo.AvailableParameters(ctx)
	s.observeQuery(keyParameters, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.memoize(ctx, key, parameters)

	return parameters, nil
}

// Measurements returns all readings for a parameter on a date, from
// cache or the warehouse.
func (s *Service) Measurements(ctx context.Context, parameterName, dateID string) ([]Measurement, error) {
	key := cache.Key(keyMeasurements, parameterName, dateID)

	var measurements []Measurement
	if s.lookup(ctx, keyMeasurements, key, &measurements) {
		return measurements, nil
	}

	start := time.Now()
	measurements, err := s.repo.Measurements(ctx, parameterName, dateID)
	s.observeQuery(keyMeasurements, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.memoize(ctx, key, measurements)

	return measurements, nil
}

// lookup decodes a live cache entry into out, reporting whether one was
// found. Cache infrastructure failures are logged and treated as misses
// so they never fail a dashboard pass.
func (s *Service) lookup(ctx context.Context, op, key string, out interface{}) bool {
	data, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, falling through to warehouse")
		s.observeCacheMiss(op)
		return false
	}
	if !ok {
		s.observeCacheMiss(op)
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache entry undecodable, falling through to warehouse")
		s.observeCacheMiss(op)
		return false
	}

	s.logger.Debug().Str("key", key).Msg("cache hit")
	if s.metrics != nil {
		s.metrics.RecordCacheHit(op)
	}
	return true
}

func (s *Service) observeCacheMiss(op string) {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(op)
	}
}

func (s *Service) observeQuery(op string, duration time.Duration, err error) {
	if s.metrics != nil {
		s.metrics.RecordQuery(op, duration, err)
	}
}

// memoize stores a freshly computed result under key.
func (s *Service) memoize(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed, result not memoized")
		return
	}
	if err := s.store.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed, result not memoized")
	}
}
