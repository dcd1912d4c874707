package dashboard

import (
	"fmt"
	"sort"

	"github.com/airsight/airsight/internal/measurement"
)

// BuildSummary computes the header line for a non-empty table.
func BuildSummary(rows []measurement.Measurement, date, units string) *Summary {
	stations := make(map[string]struct{})
	for _, row := range rows {
		stations[row.StationName] = struct{}{}
	}

	return &Summary{
		Date:     date,
		Stations: len(stations),
		Readings: len(rows),
		Units:    units,
	}
}

// BuildMetrics computes the lowest, median, and highest value across all
// rows, formatted to three decimal places. The input must be non-empty;
// metrics over an empty table are undefined and the pipeline never asks
// for them.
func BuildMetrics(rows []measurement.Measurement, units string) []Metric {
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.Value
	}
	sort.Float64s(values)

	return []Metric{
		{Label: "Lowest", Value: formatValue(values[0]), Units: units},
		{Label: "Median", Value: formatValue(median(values)), Units: units},
		{Label: "Highest", Value: formatValue(values[len(values)-1]), Units: units},
	}
}

// median expects values sorted ascending. An even count averages the two
// middle values.
func median(values []float64) float64 {
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// BuildMapFigure groups rows into animation frames keyed by time window.
// Frames are ordered by the window's string sort, which is chronological
// because the windows are zero-padded. Within a frame, markers keep the
// rows' timestamp-ascending order.
func BuildMapFigure(rows []measurement.Measurement, units string) *MapFigure {
	byWindow := make(map[string][]Marker)
	for _, row := range rows {
		byWindow[row.TimeWindow] = append(byWindow[row.TimeWindow], Marker{
			Lat:   row.Latitude,
			Lon:   row.Longitude,
			Value: row.Value,
			Hover: Hover{
				Title:      row.StationName,
				Locality:   row.Locality,
				Value:      formatValue(row.Value),
				MeasuredAt: row.MeasuredAt,
				Units:      row.Units,
			},
		})
	}

	windows := make([]string, 0, len(byWindow))
	for window := range byWindow {
		windows = append(windows, window)
	}
	sort.Strings(windows)

	frames := make([]Frame, 0, len(windows))
	for _, window := range windows {
		frames = append(frames, Frame{TimeWindow: window, Markers: byWindow[window]})
	}

	return &MapFigure{
		Center:        Point{Lat: MapCenterLat, Lon: MapCenterLon},
		Zoom:          MapZoom,
		Style:         MapStyle,
		Height:        MapHeight,
		MarkerSize:    MapMarkerSize,
		MarkerOpacity: MapMarkerOpacity,
		ColorScale:    MapColorScale,
		ColorBarTitle: units,
		Frames:        frames,
	}
}

// BuildTable projects rows to the display columns and sorts them
// descending by value. No synthetic index column is added.
func BuildTable(rows []measurement.Measurement) *Table {
	table := &Table{
		Headers: TableHeaders(),
		Rows:    make([]TableRow, len(rows)),
	}

	for i, row := range rows {
		table.Rows[i] = TableRow{
			Location:   row.StationName,
			City:       row.Locality,
			Value:      row.Value,
			TimeWindow: row.TimeWindow,
			MeasuredAt: row.MeasuredAt,
			Units:      row.Units,
		}
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		return table.Rows[i].Value > table.Rows[j].Value
	})

	return table
}
