// Package catalog provides the static pollutant catalog and filter
// selection for the dashboard.
package catalog

// Pollutant describes one entry of the static pollutant catalog: a short
// parameter code plus a human-readable name and health-effect summary.
// The catalog is process-wide constant state and is never sourced from
// the warehouse.
type Pollutant struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Default returns the built-in pollutant catalog, in display order.
func Default() []Pollutant {
	return []Pollutant{
		{
			Code:        "pm25",
			Name:        "PM2.5",
			Description: "Fine particles smaller than 2.5 micrometers. Can penetrate deep into lungs and bloodstream, causing respiratory and cardiovascular problems.",
		},
		{
			Code:        "pm10",
			Name:        "PM10",
			Description: "Coarse particles smaller than 10 micrometers. Can irritate eyes, nose, and throat. Aggravates asthma and breathing difficulties.",
		},
		{
			Code:        "o3",
			Name:        "Ozone (O₃)",
			Description: "Ground-level ozone formed by sunlight reacting with pollutants. Triggers chest pain, coughing, and worsens asthma.",
		},
		{
			Code:        "no2",
			Name:        "Nitrogen Dioxide (NO₂)",
			Description: "Produced by vehicle emissions and power plants. Irritates airways and contributes to smog and acid rain.",
		},
		{
			Code:        "so2",
			Name:        "Sulfur Dioxide (SO₂)",
			Description: "Released from burning fossil fuels. Causes breathing difficulties and contributes to acid rain.",
		},
		{
			Code:        "co",
			Name:        "Carbon Monoxide (CO)",
			Description: "Colorless, odorless gas from incomplete combustion. Reduces oxygen delivery in the body.",
		},
	}
}

// Intersect returns the catalog entries whose codes the warehouse actually
// reports, preserving catalog order. Only these pollutants are offered to
// the user, so a selection can never name a parameter the warehouse does
// not know.
func Intersect(catalog []Pollutant, available []string) []Pollutant {
	reported := make(map[string]struct{}, len(available))
	for _, name := range available {
		reported[name] = struct{}{}
	}

	var offered []Pollutant
	for _, p := range catalog {
		if _, ok := reported[p.Code]; ok {
			offered = append(offered, p)
		}
	}
	return offered
}
