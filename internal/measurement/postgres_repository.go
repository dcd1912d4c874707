package measurement

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airsight/airsight/internal/warehouse"
)

// PostgresRepository reads the star schema through the shared warehouse
// pool. Pollutant and date always arrive as bound parameters, never
// interpolated into the statement text.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a warehouse-backed measurement repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// AvailableDates returns distinct non-null date identifiers, descending.
func (r *PostgresRepository) AvailableDates(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT date_id
		FROM fact_measurements
		WHERE date_id IS NOT NULL
		ORDER BY date_id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, warehouse.ClassifyError(err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, warehouse.ClassifyError(err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ClassifyError(err)
	}

	return NormalizeDates(dates), nil
}

// AvailableParameters returns the distinct parameter names from the
// parameter dimension.
func (r *PostgresRepository) AvailableParameters(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT parameter_name FROM dim_parameters`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, warehouse.ClassifyError(err)
	}
	defer rows.Close()

	var parameters []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, warehouse.ClassifyError(err)
		}
		parameters = append(parameters, name)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ClassifyError(err)
	}

	return parameters, nil
}

// Measurements returns all readings for a parameter on a date, joined
// against the location and parameter dimensions, ordered by timestamp
// ascending. The time-window bucket is derived from the UTC timestamp
// after scanning.
func (r *PostgresRepository) Measurements(ctx context.Context, parameterName, dateID string) ([]Measurement, error) {
	query := `
		SELECT
			l.location_name,
			l.locality,
			l.latitude,
			l.longitude,
			p.parameter_units,
			f.datetime_utc,
			f.value
		FROM fact_measurements f
		JOIN dim_locations l ON f.location_id = l.location_id
		JOIN dim_parameters p ON f.parameter_id = p.parameter_id
		WHERE p.parameter_name = $1
		  AND f.date_id = $2
		ORDER BY f.datetime_utc
	`

	rows, err := r.pool.Query(ctx, query, parameterName, dateID)
	if err != nil {
		return nil, warehouse.ClassifyError(err)
	}
	defer rows.Close()

	var measurements []Measurement
	for rows.Next() {
		var m Measurement
		err := rows.Scan(
			&m.StationName,
			&m.Locality,
			&m.Latitude,
			&m.Longitude,
			&m.Units,
			&m.MeasuredAt,
			&m.Value,
		)
		if err != nil {
			return nil, warehouse.ClassifyError(err)
		}
		m.TimeWindow = HourWindow(m.MeasuredAt)
		measurements = append(measurements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ClassifyError(err)
	}

	return measurements, nil
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
