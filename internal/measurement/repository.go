package measurement

import "context"

// Repository defines read access to the warehouse star schema. All three
// operations are read-only and idempotent for a fixed warehouse state;
// each may observe a different snapshot, which the dashboard tolerates.
type Repository interface {
	// AvailableDates returns the distinct non-null date identifiers that
	// have measurements, most recent first.
	AvailableDates(ctx context.Context) ([]string, error)

	// AvailableParameters returns the distinct parameter names reported
	// by the parameter dimension.
	AvailableParameters(ctx context.Context) ([]string, error)

	// Measurements returns all readings for a parameter on a date,
	// ordered by timestamp ascending.
	Measurements(ctx context.Context, parameterName, dateID string) ([]Measurement, error)
}
