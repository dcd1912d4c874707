// Package dashboard assembles the air quality dashboard view: summary
// metrics, the time-animated map figure, and the data table. It owns the
// per-request pipeline that sequences warehouse access, filter selection,
// and rendering.
package dashboard

import (
	"time"

	"github.com/airsight/airsight/internal/catalog"
)

// State is the terminal state of a dashboard pass.
type State string

const (
	// StateDone means the full view rendered.
	StateDone State = "done"

	// StateEmpty means the selection was valid but matched no readings;
	// nothing was rendered.
	StateEmpty State = "empty"
)

// Fixed visual parameters for the map figure, matching the dashboard's
// full-country default view.
const (
	MapZoom          = 2.5
	MapCenterLat     = 55.0
	MapCenterLon     = -95.0
	MapStyle         = "open-street-map"
	MapHeight        = 600
	MapMarkerSize    = 12
	MapMarkerOpacity = 0.7

	// MapColorScale is a red-yellow-green scale reversed so low values
	// read green and high values read red.
	MapColorScale = "RdYlGn_r"
)

// View is the complete dashboard payload consumed by the rendering host.
// For an empty pass only State, Message, and the candidate lists are set.
type View struct {
	State   State  `json:"state"`
	Message string `json:"message,omitempty"`

	// Candidate lists the selectors are populated from.
	Pollutants []catalog.Pollutant `json:"pollutants"`
	Dates      []string            `json:"dates"`

	Selection *Selection `json:"selection,omitempty"`
	Summary   *Summary   `json:"summary,omitempty"`
	Metrics   []Metric   `json:"metrics,omitempty"`
	Map       *MapFigure `json:"map,omitempty"`
	Table     *Table     `json:"table,omitempty"`
}

// Selection echoes the resolved filter pair.
type Selection struct {
	Pollutant catalog.Pollutant `json:"pollutant"`
	Date      string            `json:"date"`
}

// Summary is the header line above the metrics.
type Summary struct {
	Date     string `json:"date"`
	Stations int    `json:"stations"`
	Readings int    `json:"readings"`
	Units    string `json:"units"`
}

// Metric is one summary statistic with its formatted value.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Units string `json:"units"`
}

// MapFigure describes the animated scatter map: one frame per time
// window, one marker per reading, value mapped onto the color scale.
type MapFigure struct {
	Center        Point   `json:"center"`
	Zoom          float64 `json:"zoom"`
	Style         string  `json:"style"`
	Height        int     `json:"height"`
	MarkerSize    int     `json:"markerSize"`
	MarkerOpacity float64 `json:"markerOpacity"`
	ColorScale    string  `json:"colorScale"`
	ColorBarTitle string  `json:"colorBarTitle"`
	Frames        []Frame `json:"frames"`
}

// Point is a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Frame is one animation step, keyed by time window.
type Frame struct {
	TimeWindow string   `json:"timeWindow"`
	Markers    []Marker `json:"markers"`
}

// Marker is one station reading positioned on the map.
type Marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Value float64 `json:"value"`
	Hover Hover   `json:"hover"`
}

// Hover is the marker hover card. Coordinates are deliberately absent;
// they are already encoded by the marker position.
type Hover struct {
	Title      string    `json:"title"`
	Locality   string    `json:"locality"`
	Value      string    `json:"value"`
	MeasuredAt time.Time `json:"measuredAt"`
	Units      string    `json:"units"`
}

// Table is the sortable tabular view, pre-sorted descending by value.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    []TableRow `json:"rows"`
}

// TableRow is one display row of the data table.
type TableRow struct {
	Location   string    `json:"location"`
	City       string    `json:"city"`
	Value      float64   `json:"value"`
	TimeWindow string    `json:"timeWindow"`
	MeasuredAt time.Time `json:"measuredAt"`
	Units      string    `json:"units"`
}

// TableHeaders are the human-readable column headers, in display order.
func TableHeaders() []string {
	return []string{"Location", "City", "Value", "Time Window", "Measurement Time", "Units"}
}
