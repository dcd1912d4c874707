// Package cache provides TTL-based memoization stores for query results.
//
// A store holds opaque byte values keyed by query identity and parameters.
// An entry older than its TTL is treated as absent; there is no manual
// invalidation.
package cache

import (
	"context"
	"strings"
	"time"
)

// Store is a TTL-keyed byte store. Get returns the cached value and true
// only while the entry is fresh. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key builds a cache key from a query identity and its parameters.
func Key(op string, params ...string) string {
	if len(params) == 0 {
		return op
	}
	return op + ":" + strings.Join(params, ":")
}
