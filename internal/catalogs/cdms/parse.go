package cdms

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"astrocat/internal/catalogs"
	"astrocat/internal/tabular"
	"astrocat/internal/units"
	"astrocat/pkg/htmlutil"
)

// LineSchema is the card image of one spectral line. It follows the JPL
// catalog layout (FREQ, ERR, LGINT, DR, ELO, GUP, TAG, QNFMT, QN', QN")
// with a hyperfine block and the species name appended.
var LineSchema = tabular.Schema{
	{Name: "FREQ", Start: 0, Kind: tabular.Float},
	{Name: "ERR", Start: 14, Kind: tabular.Float},
	{Name: "LGINT", Start: 25, Kind: tabular.Float},
	{Name: "DR", Start: 36, Kind: tabular.Int},
	{Name: "ELO", Start: 38, Kind: tabular.Float},
	{Name: "GUP", Start: 48, Kind: tabular.Int},
	{Name: "TAG", Start: 51, Kind: tabular.Int},
	{Name: "QNFMT", Start: 57, Kind: tabular.Int},
	{Name: "Ju", Start: 61, Kind: tabular.QuantumNumber},
	{Name: "Ku", Start: 63, Kind: tabular.QuantumNumber},
	{Name: "vu", Start: 65, Kind: tabular.QuantumNumber},
	{Name: "Jl", Start: 67, Kind: tabular.QuantumNumber},
	{Name: "Kl", Start: 69, Kind: tabular.QuantumNumber},
	{Name: "vl", Start: 71, Kind: tabular.QuantumNumber},
	{Name: "F", Start: 73, Kind: tabular.String},
	{Name: "name", Start: 89, Kind: tabular.String},
}

// CommentPattern drops the result banner ("THIS ...") and the per species
// header lines (an indented species tag) from a listing.
var CommentPattern = regexp.MustCompile(`THIS|^\s{12,14}\d{4,6}.*`)

// IntensityKind is what the LGINT column of a listing holds.
type IntensityKind int

const (
	// LogIntensity is log10 of the integrated intensity in nm^2 MHz.
	LogIntensity IntensityKind = iota
	// LogEinsteinA is log10 of the Einstein A coefficient in 1/s.
	LogEinsteinA
)

func (k IntensityKind) Column() string {
	if k == LogEinsteinA {
		return "LGAIJ"
	}
	return "LGINT"
}

func (k IntensityKind) Unit() string {
	if k == LogEinsteinA {
		return units.PerSecond
	}
	return units.MHzNm2
}

// QuantumNumber is a possibly blank quantum number.
type QuantumNumber struct {
	Value int
	Valid bool
}

func (q QuantumNumber) String() string {
	if !q.Valid {
		return ""
	}
	return strconv.Itoa(q.Value)
}

// Record is one spectral line.
type Record struct {
	// Frequency and Error are in MHz.
	Frequency float64
	Error     float64
	// Intensity is a log10 value, what of is given by LineTable.Intensity.
	Intensity        float64
	DegreesOfFreedom int
	// LowerEnergy is in 1/cm relative to the ground state.
	LowerEnergy     float64
	UpperDegeneracy int
	// Tag is negative for lines whose frequency was measured in the laboratory.
	Tag       int
	QNFormat  int
	Ju        QuantumNumber
	Ku        QuantumNumber
	Vu        QuantumNumber
	Jl        QuantumNumber
	Kl        QuantumNumber
	Vl        QuantumNumber
	Hyperfine string
	Name      string
}

// Species is the species tag without the measured flag.
func (r Record) Species() int {
	if r.Tag < 0 {
		return -r.Tag
	}
	return r.Tag
}

// Measured reports whether the frequency is a laboratory measurement.
func (r Record) Measured() bool {
	return r.Tag < 0
}

// Mass is the mass number coded in the three most significant digits of the tag.
func (r Record) Mass() int {
	return r.Species() / 1000
}

// LineTable is a parsed listing.
type LineTable struct {
	Table       tabular.Table
	Records     []Record
	Temperature float64
	Intensity   IntensityKind
}

// ParseLines parses the listing returned for a query made at the given
// intensity temperature. The temperature only decides how the intensity
// column is labelled, values are never recomputed.
func ParseLines(ctx context.Context, body []byte, temperature float64) (LineTable, error) {
	if bytes.Contains(body, []byte(zeroLinesMessage)) {
		return LineTable{}, fmt.Errorf(
			"response was empty; message was '%s': %w",
			strings.TrimSpace(string(body)), catalogs.ErrNoData,
		)
	}

	text := string(body)
	if looksLikeHtml(body) {
		pre, ok, err := htmlutil.PreText(ctx, body)
		if err != nil {
			return LineTable{}, err
		}
		if !ok {
			return LineTable{}, fmt.Errorf("no <pre> block in response: %w", catalogs.ErrNoData)
		}
		text = pre
	}

	table, err := tabular.ParseFixedWidth(text, LineSchema, CommentPattern)
	if err != nil {
		return LineTable{}, err
	}

	intensity, err := annotate(&table, temperature)
	if err != nil {
		return LineTable{}, err
	}

	records := make([]Record, len(table.Rows))
	for i, row := range table.Rows {
		records[i], err = recordFromRow(row)
		if err != nil {
			return LineTable{}, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	return LineTable{
		Table:       table,
		Records:     records,
		Temperature: temperature,
		Intensity:   intensity,
	}, nil
}

// annotate attaches units, and at a temperature of zero relabels LGINT as
// the Einstein A coefficient.
func annotate(table *tabular.Table, temperature float64) (IntensityKind, error) {
	intensity := LogIntensity
	if temperature == 0 {
		intensity = LogEinsteinA
		err := table.Rename(LogIntensity.Column(), LogEinsteinA.Column())
		if err != nil {
			return intensity, err
		}
	}

	for column, unit := range map[string]string{
		"FREQ":             units.MHz,
		"ERR":              units.MHz,
		"ELO":              units.PerCentimetre,
		intensity.Column(): intensity.Unit(),
	} {
		err := table.SetUnit(column, unit)
		if err != nil {
			return intensity, err
		}
	}
	return intensity, nil
}

const (
	colFreq = iota
	colErr
	colLgint
	colDr
	colElo
	colGup
	colTag
	colQnfmt
	colJu
	colKu
	colVu
	colJl
	colKl
	colVl
	colF
	colName
)

func requireFloat(row tabular.Row, idx int) (float64, error) {
	v := row[idx]
	if v.Null {
		return math.NaN(), fmt.Errorf("column %s is blank", LineSchema[idx].Name)
	}
	return v.Float, nil
}

func requireInt(row tabular.Row, idx int) (int, error) {
	v := row[idx]
	if v.Null {
		return 0, fmt.Errorf("column %s is blank", LineSchema[idx].Name)
	}
	return int(v.Int), nil
}

func quantumNumber(v tabular.Value) QuantumNumber {
	if v.Null {
		return QuantumNumber{}
	}
	return QuantumNumber{Value: int(v.Int), Valid: true}
}

func recordFromRow(row tabular.Row) (Record, error) {
	var (
		r   Record
		err error
	)
	floats := []struct {
		idx int
		out *float64
	}{
		{colFreq, &r.Frequency},
		{colErr, &r.Error},
		{colLgint, &r.Intensity},
		{colElo, &r.LowerEnergy},
	}
	for _, f := range floats {
		*f.out, err = requireFloat(row, f.idx)
		if err != nil {
			return Record{}, err
		}
	}

	ints := []struct {
		idx int
		out *int
	}{
		{colDr, &r.DegreesOfFreedom},
		{colGup, &r.UpperDegeneracy},
		{colTag, &r.Tag},
		{colQnfmt, &r.QNFormat},
	}
	for _, i := range ints {
		*i.out, err = requireInt(row, i.idx)
		if err != nil {
			return Record{}, err
		}
	}

	r.Ju = quantumNumber(row[colJu])
	r.Ku = quantumNumber(row[colKu])
	r.Vu = quantumNumber(row[colVu])
	r.Jl = quantumNumber(row[colJl])
	r.Kl = quantumNumber(row[colKl])
	r.Vl = quantumNumber(row[colVl])
	r.Hyperfine = row[colF].Str
	r.Name = row[colName].Str
	return r, nil
}
