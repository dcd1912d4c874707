// Package measurement provides access to per-station air quality readings
// from the warehouse, with TTL-based result caching.
package measurement

import (
	"fmt"
	"sort"
	"time"
)

// Measurement is one station reading: the fact row joined against the
// location and parameter dimensions. Rows are immutable once fetched;
// the table is rebuilt on every new filter selection.
type Measurement struct {
	StationName string    `json:"stationName"`
	Locality    string    `json:"locality"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Units       string    `json:"units"`
	MeasuredAt  time.Time `json:"measuredAt"`
	Value       float64   `json:"value"`

	// TimeWindow is the hour-of-day bucket derived from the UTC hour of
	// MeasuredAt, formatted "HH:00". The zero-padding makes lexicographic
	// order equal chronological order, which the map animation relies on.
	TimeWindow string `json:"timeWindow"`
}

// HourWindow derives the time-window bucket for a timestamp.
func HourWindow(t time.Time) string {
	return fmt.Sprintf("%02d:00", t.UTC().Hour())
}

// NormalizeDates returns date identifiers most recent first, with
// duplicates and empty entries removed. Consumers default the selection
// to the first element, so the ordering is asserted here rather than
// trusted to whichever source produced the list.
func NormalizeDates(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	normalized := make([]string, 0, len(dates))
	for _, d := range dates {
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		normalized = append(normalized, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(normalized)))
	return normalized
}
