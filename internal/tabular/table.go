// Package tabular decodes the plain text tables returned by catalog services
// (fixed-width card images, dashed "two line" listings and pipe-delimited
// batch output) into typed tables.
package tabular

import (
	"fmt"
	"strconv"
)

// Kind is the type a cell is coerced to.
type Kind int

const (
	String Kind = iota
	Float
	Int
	// QuantumNumber is an integer stored in the two-character catalog
	// encoding, see ParseValue.
	QuantumNumber
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case QuantumNumber:
		return "quantum_number"
	default:
		return "string"
	}
}

// Numeric reports whether cells of this kind hold a number.
func (k Kind) Numeric() bool {
	return k != String
}

// Value is a single typed cell. Blank numeric cells are Null rather than zero.
type Value struct {
	Kind  Kind
	Null  bool
	Float float64
	Int   int64
	Str   string
}

func FloatValue(f float64) Value { return Value{Kind: Float, Float: f} }
func IntValue(i int64) Value     { return Value{Kind: Int, Int: i} }
func StringValue(s string) Value { return Value{Kind: String, Str: s} }

// Any returns the Go value of the cell, nil for null cells.
func (v Value) Any() any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case Float:
		return v.Float
	case Int, QuantumNumber:
		return v.Int
	default:
		return v.Str
	}
}

func (v Value) String() string {
	if v.Null {
		return ""
	}
	switch v.Kind {
	case Float:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case Int, QuantumNumber:
		return strconv.FormatInt(v.Int, 10)
	default:
		return v.Str
	}
}

// Column describes one column of a Table.
type Column struct {
	Name string
	Kind Kind
	Unit string
	Meta map[string]any
}

type Row []Value

// Table is an ordered set of rows sharing one set of columns.
type Table struct {
	Columns []Column
	Rows    []Row
	Meta    map[string]any
}

func (t Table) Len() int {
	return len(t.Rows)
}

// Names returns the column names in order.
func (t Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of a column, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns every value of the named column.
func (t Table) Column(name string) ([]Value, error) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, fmt.Errorf("no column named '%s'", name)
	}
	out := make([]Value, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Rename changes the name of a column in place.
func (t *Table) Rename(from, to string) error {
	idx := t.Index(from)
	if idx < 0 {
		return fmt.Errorf("no column named '%s'", from)
	}
	if t.Index(to) >= 0 {
		return fmt.Errorf("column '%s' already exists", to)
	}
	t.Columns[idx].Name = to
	return nil
}

// SetUnit annotates a column with a physical unit.
func (t *Table) SetUnit(name, unit string) error {
	idx := t.Index(name)
	if idx < 0 {
		return fmt.Errorf("no column named '%s'", name)
	}
	t.Columns[idx].Unit = unit
	return nil
}
