// Package warehouse provides connection management for the air quality
// SQL warehouse.
package warehouse

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds warehouse connection configuration.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ConfigFromEnv creates a Config from environment variables.
// Credentials are expected to be injected by the deployment's secret store.
func ConfigFromEnv() Config {
	port, _ := strconv.Atoi(getEnvOrDefault("WAREHOUSE_PORT", "5432"))
	maxOpen, _ := strconv.Atoi(getEnvOrDefault("WAREHOUSE_MAX_OPEN_CONNS", "10"))
	maxIdle, _ := strconv.Atoi(getEnvOrDefault("WAREHOUSE_MAX_IDLE_CONNS", "5"))
	lifetime, _ := time.ParseDuration(getEnvOrDefault("WAREHOUSE_CONN_MAX_LIFETIME", "5m"))

	return Config{
		Host:            getEnvOrDefault("WAREHOUSE_HOST", "localhost"),
		Port:            port,
		User:            getEnvOrDefault("WAREHOUSE_USER", "airsight"),
		Password:        getEnvOrDefault("WAREHOUSE_PASSWORD", "localdev"),
		Database:        getEnvOrDefault("WAREHOUSE_DB", "airquality"),
		SSLMode:         getEnvOrDefault("WAREHOUSE_SSL_MODE", "disable"),
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: lifetime,
	}
}

// ConnectionString returns the warehouse connection string.
func (c Config) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Connect creates the process-wide warehouse connection pool. The pool is
// created once in main and passed by handle to the query layer; all
// dashboard queries share it read-only.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns) //nolint:gosec // MaxOpenConns is bounded by config validation
	poolConfig.MinConns = int32(cfg.MaxIdleConns) //nolint:gosec // MaxIdleConns is bounded by config validation
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	// Verify the warehouse is reachable and credentials are accepted
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return pool, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
