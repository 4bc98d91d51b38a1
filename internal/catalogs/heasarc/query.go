package heasarc

import (
	"fmt"
	"sort"
	"strings"

	"astrocat/internal/catalogs"
	"astrocat/internal/units"
	"astrocat/pkg/textutil"

	"dario.cat/mergo"
)

// Coordinate systems accepted by the query form.
const (
	FK5      = "fk5"
	FK4      = "fk4"
	Galactic = "galactic"
	Ecliptic = "ecliptic"
)

const (
	FieldsStandard = "Standard"
	FieldsAll      = "All"
)

// DefaultRadius is used when a query does not set one.
var DefaultRadius = units.FromArcmin(3)

// Options are the parameters shared by object and region queries.
type Options struct {
	Mission string
	// CoordinateSystem is one of FK5 (the default), FK4, Galactic or Ecliptic.
	CoordinateSystem string
	Equinox          string
	// Fields is FieldsStandard, FieldsAll or a comma separated list of columns.
	// Empty leaves the choice to the server.
	Fields    string
	Radius    *units.Angle
	ResultMax int
	SortBy    string
	// Time is a range like "2020-09-01 .. 2020-12-01".
	Time string
	// Filters are column constraints like {"good_isgri": ">1000"}. Column
	// names are matched against the mission's columns ignoring case.
	Filters   map[string]string
	SkipCache bool
}

// ObjectQuery searches around a named object, the server resolves the name.
type ObjectQuery struct {
	Object string
	Options
}

// RegionQuery searches around a position given in the coordinate system
// of the query, for example "187.27 2.05".
type RegionQuery struct {
	Position string
	Options
}

// withDefaults fills every option left at its zero value from defaults.
// Filters are combined, a filter set on o wins over a default one for the
// same column.
func (o Options) withDefaults(defaults Options) (Options, error) {
	out := o
	if len(defaults.Filters) > 0 {
		filters := make(map[string]string, len(o.Filters)+len(defaults.Filters))
		for k, v := range defaults.Filters {
			filters[textutil.NormalizeName(k)] = v
		}
		for k, v := range o.Filters {
			filters[textutil.NormalizeName(k)] = v
		}
		out.Filters = filters
	}
	err := mergo.Merge(&out, defaults)
	if err != nil {
		return o, fmt.Errorf("apply query defaults: %w", err)
	}
	return out, nil
}

func coordinates(system string) (string, bool, error) {
	switch strings.ToLower(system) {
	case "", FK5:
		return "Equatorial: R.A. Dec", false, nil
	case FK4:
		return "Equatorial: R.A. Dec", true, nil
	case Galactic:
		return "Galactic: LII BII", false, nil
	case Ecliptic:
		return "Ecliptic: Lambda Beta", false, nil
	}
	return "", false, fmt.Errorf("unknown coordinate system '%s': %w", system, catalogs.ErrInvalidQuery)
}

// payload builds the form of a data query for entry. Filters are added
// separately once they have been validated.
func (o Options) payload(entry string) (catalogs.Payload, error) {
	if o.Mission == "" {
		return nil, fmt.Errorf("no mission: %w", catalogs.ErrInvalidQuery)
	}

	var payload catalogs.Payload
	payload.Add("tablehead", "name=BATCHRETRIEVALCATALOG_2.0 "+o.Mission)
	payload.Add("Entry", entry)
	payload.Add("Action", "Query")
	payload.Add("displaymode", "BatchDisplay")

	coords, b1950, err := coordinates(o.CoordinateSystem)
	if err != nil {
		return nil, err
	}
	payload.Add("Coordinates", coords)
	if b1950 {
		payload.Add("equinox", "B1950")
	}
	if o.Equinox != "" {
		payload.Add("Equinox", o.Equinox)
	}

	switch strings.ToLower(o.Fields) {
	case "":
	case "standard":
		payload.Add("Fields", FieldsStandard)
	case "all":
		payload.Add("Fields", FieldsAll)
	default:
		for _, field := range strings.Split(o.Fields, ",") {
			field = strings.ToLower(strings.TrimSpace(field))
			if field != "" {
				payload.Add("varon", field)
			}
		}
	}

	radius := DefaultRadius
	if o.Radius != nil {
		radius = *o.Radius
	}
	payload.AddFloat("Radius", radius.Arcmin())

	if o.ResultMax > 0 {
		payload.AddInt("ResultMax", o.ResultMax)
	}
	if o.SortBy != "" {
		payload.Add("sortvar", strings.ToLower(o.SortBy))
	}
	if o.Time != "" {
		payload.Add("Time", o.Time)
	}
	return payload, nil
}

// addFilters appends one bparam_<column> per filter, in name order, and
// fails on the first name that is not one of columns.
func addFilters(payload *catalogs.Payload, filters map[string]string, columns []string) error {
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[textutil.NormalizeName(c)] = struct{}{}
	}

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lower := textutil.NormalizeName(name)
		if _, ok := known[lower]; !ok {
			return fmt.Errorf("'%s' is not a column of this mission: %w", name, catalogs.ErrInvalidQuery)
		}
		payload.Add("bparam_"+lower, filters[name])
	}
	return nil
}
