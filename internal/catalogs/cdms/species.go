package cdms

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"astrocat/internal/catalogs"
	"astrocat/internal/tabular"
	"astrocat/pkg/textutil"

	"github.com/antzucaro/matchr"
)

//go:embed data/catdir.cat
var embeddedCatdir []byte

// PartitionTemperatures are the temperatures (K) of the lg(Q(T)) columns of catdir.cat.
var PartitionTemperatures = [11]float64{1000, 500, 300, 225, 150, 75, 37.5, 18.75, 9.375, 5.0, 2.725}

var partitionColumns = [11]string{
	"lg(Q(1000))", "lg(Q(500))", "lg(Q(300))", "lg(Q(225))", "lg(Q(150))", "lg(Q(75))",
	"lg(Q(37.5))", "lg(Q(18.75))", "lg(Q(9.375))", "lg(Q(5.000))", "lg(Q(2.725))",
}

// Species is one entry of the catalog directory.
type Species struct {
	Tag   int
	Name  string
	Lines int
	// LogQ is the base 10 logarithm of the partition function at each of
	// PartitionTemperatures, NaN where the directory has no value.
	LogQ [11]float64
}

// Selector is the value the search form expects for a species.
func (s Species) Selector() string {
	return fmt.Sprintf("%06d %s", s.Tag, s.Name)
}

type SpeciesTable struct {
	Species []Species
}

func tryFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// ParseSpeciesTable reads a pipe-delimited catdir.cat directory.
func ParseSpeciesTable(r io.Reader) (SpeciesTable, error) {
	reader := csv.NewReader(r)
	reader.Comma = '|'
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return SpeciesTable{}, fmt.Errorf("read catdir header: %w", err)
	}
	index := map[string]int{}
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"tag", "molecule", "#lines"} {
		if _, ok := index[required]; !ok {
			return SpeciesTable{}, fmt.Errorf("catdir header is missing '%s'", required)
		}
	}

	var table SpeciesTable
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return SpeciesTable{}, fmt.Errorf("read catdir: %w", err)
		}

		tag, err := strconv.Atoi(strings.TrimSpace(record[index["tag"]]))
		if err != nil {
			return SpeciesTable{}, fmt.Errorf("catdir line %d: tag: %w", line, err)
		}
		lines, err := strconv.Atoi(strings.TrimSpace(record[index["#lines"]]))
		if err != nil {
			return SpeciesTable{}, fmt.Errorf("catdir line %d: #lines: %w", line, err)
		}

		species := Species{
			Tag:   tag,
			Name:  strings.TrimSpace(record[index["molecule"]]),
			Lines: lines,
		}
		for i, column := range partitionColumns {
			species.LogQ[i] = math.NaN()
			idx, ok := index[column]
			if ok && idx < len(record) {
				species.LogQ[i] = tryFloat(record[idx])
			}
		}
		table.Species = append(table.Species, species)
	}
	return table, nil
}

// LoadSpeciesTable reads the directory at path, or the embedded snapshot when
// path is empty. The snapshot only holds a subset of the CDMS species (32
// common molecules); point cdms.catdir at a downloaded catdir.cat to resolve
// the full directory.
func LoadSpeciesTable(path string) (SpeciesTable, error) {
	if path == "" {
		return ParseSpeciesTable(bytes.NewReader(embeddedCatdir))
	}
	f, err := os.Open(path)
	if err != nil {
		return SpeciesTable{}, err
	}
	defer f.Close()
	return ParseSpeciesTable(f)
}

// Table renders the directory as a generic table, partition function
// columns carry their temperature in Meta["Temperature (K)"].
func (s SpeciesTable) Table() tabular.Table {
	table := tabular.Table{
		Columns: []tabular.Column{
			{Name: "tag", Kind: tabular.Int},
			{Name: "molecule", Kind: tabular.String},
			{Name: "#lines", Kind: tabular.Int},
		},
		Meta: map[string]any{"Temperature (K)": PartitionTemperatures[:]},
	}
	for i, name := range partitionColumns {
		table.Columns = append(table.Columns, tabular.Column{
			Name: name,
			Kind: tabular.Float,
			Meta: map[string]any{"Temperature (K)": PartitionTemperatures[i]},
		})
	}

	for _, species := range s.Species {
		row := tabular.Row{
			tabular.IntValue(int64(species.Tag)),
			tabular.StringValue(species.Name),
			tabular.IntValue(int64(species.Lines)),
		}
		for _, q := range species.LogQ {
			if math.IsNaN(q) {
				row = append(row, tabular.Value{Kind: tabular.Float, Null: true})
				continue
			}
			row = append(row, tabular.FloatValue(q))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func (s SpeciesTable) Lookup() Lookup {
	return Lookup{species: s.Species}
}

// Lookup resolves species names to tags.
type Lookup struct {
	species []Species
}

// Tag returns the tag of the species with exactly this name.
func (l Lookup) Tag(name string) (int, bool) {
	for _, s := range l.species {
		if s.Name == name {
			return s.Tag, true
		}
	}
	return 0, false
}

// Find returns every species whose name matches pattern, in directory order.
func (l Lookup) Find(pattern string, caseInsensitive bool) ([]Species, error) {
	if caseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("species pattern '%s': %w: %w", pattern, err, catalogs.ErrInvalidQuery)
	}

	var out []Species
	for _, s := range l.species {
		if re.MatchString(s.Name) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Closest returns the species whose name is most similar to name.
func (l Lookup) Closest(name string) (Species, float64) {
	var (
		best      Species
		bestScore = -1.0
	)
	name = textutil.NormalizeName(name)
	for _, s := range l.species {
		score := matchr.JaroWinkler(name, textutil.NormalizeName(s.Name), false)
		if score > bestScore {
			best = s
			bestScore = score
		}
	}
	return best, bestScore
}
