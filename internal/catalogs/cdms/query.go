package cdms

import (
	"fmt"

	"astrocat/internal/catalogs"
	"astrocat/internal/units"
)

// LineQuery is a spectral line search. Use NewLineQuery to get the
// defaults of the search form.
type LineQuery struct {
	// Both bounds must be set for the frequency range to be sent.
	MinFrequency *units.Frequency
	MaxFrequency *units.Frequency
	// MinStrength is in catalog units (log10 of the intensity).
	MinStrength float64
	// Molecules are sent as is, or when ParseNameLocally is set, treated as
	// regular expressions over the species directory where each one selects
	// its first match in directory order. Nil sends no selector.
	Molecules []string
	// Temperature (K) the intensity column is computed at. Zero asks the
	// service for Einstein A coefficients instead.
	Temperature      float64
	ParseNameLocally bool
	CaseInsensitive  bool
	SkipCache        bool
}

func NewLineQuery(min, max units.Frequency) LineQuery {
	return LineQuery{
		MinFrequency: &min,
		MaxFrequency: &max,
		MinStrength:  -500,
		Molecules:    []string{"All"},
		Temperature:  300,
	}
}

// Payload builds the form sent to the search page. lookup is only used,
// and then required, when ParseNameLocally is set.
func (q LineQuery) Payload(lookup *Lookup) (catalogs.Payload, error) {
	var payload catalogs.Payload

	if q.MinFrequency != nil && q.MaxFrequency != nil {
		min, max := q.MinFrequency.GHz(), q.MaxFrequency.GHz()
		if min > max {
			min, max = max, min
		}
		payload.AddFloat("MinNu", min)
		payload.AddFloat("MaxNu", max)
	}

	payload.Add("UnitNu", "GHz")
	payload.AddFloat("StrLim", q.MinStrength)
	payload.AddFloat("temp", q.Temperature)
	payload.Add("logscale", "yes")
	payload.Add("mol_sort_query", "tag")
	payload.Add("sort", "frequency")
	payload.Add("output", "text")
	payload.Add("but_action", "Submit")

	if !q.ParseNameLocally {
		for _, molecule := range q.Molecules {
			payload.Add("Molecules", molecule)
		}
		return payload, nil
	}

	if lookup == nil {
		return nil, fmt.Errorf("parsing names locally needs a species lookup: %w", catalogs.ErrInvalidQuery)
	}
	for _, pattern := range q.Molecules {
		matches, err := lookup.Find(pattern, q.CaseInsensitive)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			closest, _ := lookup.Closest(pattern)
			return nil, fmt.Errorf(
				"no matching species found for '%s' (closest is '%s'), refine the search: %w",
				pattern, closest.Name, catalogs.ErrInvalidQuery,
			)
		}
		payload.Add("Molecules", matches[0].Selector())
	}
	return payload, nil
}
