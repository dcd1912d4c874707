package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// Failure taxonomy for a dashboard pass. Both classes are fatal for the
// pass and are never retried automatically; the orchestrator converts
// them to a single user-visible message.
var (
	// ErrConnection indicates the warehouse is unreachable or rejected
	// the credentials.
	ErrConnection = errors.New("warehouse unavailable")

	// ErrQuery indicates a warehouse-side execution failure, such as a
	// malformed statement, a missing table, or a suspended warehouse.
	ErrQuery = errors.New("warehouse query failed")
)

// ClassifyError wraps a query-layer error as ErrConnection or ErrQuery.
// Errors raised by the warehouse itself (bad SQL, missing relations) are
// query failures; transport-level faults are connection failures. A
// connection that breaks mid-query classifies as a query failure, which
// is how it surfaces to the orchestrator.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrConnection) || errors.Is(err, ErrQuery) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s", ErrQuery, pgErr.Message)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return fmt.Errorf("%w: %v", ErrQuery, err)
}
