package catalog

import "errors"

// Selection errors.
var (
	// ErrNoPollutants indicates the catalog intersection with the
	// warehouse's reported parameters is empty, so the selector has no
	// valid option.
	ErrNoPollutants = errors.New("no catalog pollutants reported by the warehouse")

	// ErrNoDates indicates the warehouse reports no measurement dates.
	ErrNoDates = errors.New("no measurement dates available")

	// ErrUnknownPollutant indicates the requested pollutant is not offered.
	ErrUnknownPollutant = errors.New("unknown pollutant")

	// ErrUnknownDate indicates the requested date is not available.
	ErrUnknownDate = errors.New("unknown date")
)

// Selection is a validated (pollutant, date) pair. It is the only input
// to the measurements query and to the renderer.
type Selection struct {
	Pollutant Pollutant
	Date      string
}

// Resolve validates a requested pollutant code and date against the
// offered candidate lists, applying defaults when a value is omitted:
// the first offered pollutant, and the most recent date (dates arrive
// already descending). Candidates are the only accepted values, so a
// resolved Selection can never carry free-text input into a query.
func Resolve(pollutants []Pollutant, dates []string, code, date string) (Selection, error) {
	if len(pollutants) == 0 {
		return Selection{}, ErrNoPollutants
	}
	if len(dates) == 0 {
		return Selection{}, ErrNoDates
	}

	selected := pollutants[0]
	if code != "" {
		found := false
		for _, p := range pollutants {
			if p.Code == code {
				selected = p
				found = true
				break
			}
		}
		if !found {
			return Selection{}, ErrUnknownPollutant
		}
	}

	selectedDate := dates[0]
	if date != "" {
		found := false
		for _, d := range dates {
			if d == date {
				selectedDate = d
				found = true
				break
			}
		}
		if !found {
			return Selection{}, ErrUnknownDate
		}
	}

	return Selection{Pollutant: selected, Date: selectedDate}, nil
}
