package tabular

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"astrocat/internal/catalogs"
)

// Field is a column of a fixed-width record, it spans from Start up to the
// Start of the next field (the last field runs to the end of the line).
type Field struct {
	Name  string
	Start int
	Kind  Kind
}

// Schema is the ordered list of fields of a fixed-width record.
type Schema []Field

// Validate checks that every field is named and that offsets strictly increase.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no fields")
	}
	seen := map[string]bool{}
	for i, f := range s {
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("field '%s' appears twice", f.Name)
		}
		seen[f.Name] = true
		if f.Start < 0 {
			return fmt.Errorf("field '%s' starts at a negative offset", f.Name)
		}
		if i > 0 && f.Start <= s[i-1].Start {
			return fmt.Errorf("field '%s' does not start after '%s'", f.Name, s[i-1].Name)
		}
	}
	return nil
}

// Spans returns the character range of every field.
func (s Schema) Spans() []Span {
	starts := make([]int, len(s))
	for i, f := range s {
		starts[i] = f.Start
	}
	return SpansFromStarts(starts)
}

func (s Schema) Columns() []Column {
	columns := make([]Column, len(s))
	for i, f := range s {
		columns[i] = Column{Name: f.Name, Kind: f.Kind}
	}
	return columns
}

// Span is a half open range of characters, End < 0 means the end of the line.
type Span struct {
	Start int
	End   int
}

func SpansFromStarts(starts []int) []Span {
	spans := make([]Span, len(starts))
	for i, start := range starts {
		end := -1
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		spans[i] = Span{Start: start, End: end}
	}
	return spans
}

// SplitSpans slices a line into one string per span. Offsets count
// characters, not bytes. Spans past the end of the line yield "".
func SplitSpans(line string, spans []Span) []string {
	runes := []rune(line)
	out := make([]string, len(spans))
	for i, span := range spans {
		start := span.Start
		end := span.End
		if end < 0 || end > len(runes) {
			end = len(runes)
		}
		if start >= end {
			continue
		}
		out[i] = string(runes[start:end])
	}
	return out
}

// ParseError is a cell that could not be coerced to its column's kind.
type ParseError struct {
	// Line is 1-indexed within the parsed text.
	Line   int
	Column string
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %s: cannot parse '%s': %s", e.Line, e.Column, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	errQuantumNumber = errors.New("invalid quantum number")
	errNonFinite     = errors.New("non-finite number")
)

// ParseValue coerces raw (surrounding whitespace is ignored) into a value of
// the given kind. Blank numeric cells are null. NaN and infinite floats are
// rejected.
//
// Quantum numbers use the catalog two-character encoding: plain integers
// as-is, an upper case letter followed by a digit for 100 and up (A0 = 100,
// B5 = 115) and a lower case letter followed by a digit for -10 and down
// (a0 = -10, b3 = -23).
func ParseValue(raw string, kind Kind) (Value, error) {
	text := strings.TrimSpace(raw)
	if kind == String {
		return StringValue(text), nil
	}
	if text == "" {
		return Value{Kind: kind, Null: true}, nil
	}

	switch kind {
	case Float:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, errNonFinite
		}
		return FloatValue(f), nil
	case Int:
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, err
		}
		return IntValue(i), nil
	case QuantumNumber:
		i, err := parseQuantumNumber(text)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: QuantumNumber, Int: i}, nil
	}
	return Value{}, fmt.Errorf("unknown kind %d", kind)
}

func parseQuantumNumber(text string) (int64, error) {
	i, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return i, nil
	}
	if len(text) != 2 || text[1] < '0' || text[1] > '9' {
		return 0, errQuantumNumber
	}
	digit := int64(text[1] - '0')
	switch c := text[0]; {
	case c >= 'A' && c <= 'Z':
		return (int64(c-'A')+10)*10 + digit, nil
	case c >= 'a' && c <= 'z':
		return -((int64(c-'a')+1)*10 + digit), nil
	}
	return 0, errQuantumNumber
}

// IsComment reports whether comment matches at the very start of line.
func IsComment(comment *regexp.Regexp, line string) bool {
	if comment == nil {
		return false
	}
	// the leftmost match starts at 0 whenever any match starting at 0 exists
	loc := comment.FindStringIndex(line)
	return loc != nil && loc[0] == 0
}

// ParseFixedWidth decodes every line of text into a row of the schema.
// Blank lines and lines matched by comment (at their start) are dropped
// before slicing. A cell that does not parse as its field's kind fails the
// whole table with a *ParseError, and text without a single data line fails
// with catalogs.ErrNoData.
func ParseFixedWidth(text string, schema Schema, comment *regexp.Regexp) (Table, error) {
	err := schema.Validate()
	if err != nil {
		return Table{}, fmt.Errorf("invalid schema: %w", err)
	}
	spans := schema.Spans()

	table := Table{Columns: schema.Columns()}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || IsComment(comment, line) {
			continue
		}

		cells := SplitSpans(line, spans)
		row := make(Row, len(schema))
		for j, field := range schema {
			value, err := ParseValue(cells[j], field.Kind)
			if err != nil {
				return Table{}, &ParseError{
					Line:   i + 1,
					Column: field.Name,
					Text:   cells[j],
					Err:    err,
				}
			}
			row[j] = value
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return Table{}, fmt.Errorf("no data lines in fixed width text: %w", catalogs.ErrNoData)
	}
	return table, nil
}
