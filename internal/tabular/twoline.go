package tabular

import (
	"fmt"
	"strings"

	"astrocat/internal/catalogs"
)

// TwoLineOptions describes a "two line" fixed-width listing: a header line,
// a position line made of PositionChar runs (optionally separated by
// Delimiter) and data lines aligned under it.
type TwoLineOptions struct {
	PositionChar rune
	Delimiter    rune
	// DropFooter discards the last data line (a row count or similar trailer).
	DropFooter bool
}

func (o TwoLineOptions) isPositionLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || !strings.ContainsRune(trimmed, o.PositionChar) {
		return false
	}
	for _, r := range trimmed {
		if r != o.PositionChar && r != o.Delimiter && r != ' ' {
			return false
		}
	}
	return true
}

// spans returns one span per run of position characters, the last span
// runs to the end of the line.
func (o TwoLineOptions) spans(position string) []Span {
	var spans []Span
	start := -1
	for i, r := range []rune(position) {
		if r == o.PositionChar {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, Span{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: -1})
	}
	if len(spans) > 0 {
		spans[len(spans)-1].End = -1
	}
	return spans
}

// ParseTwoLine parses a two line listing into a table of string cells.
// Column boundaries come from the position line, cells are trimmed of
// whitespace and delimiter characters.
func ParseTwoLine(text string, opts TwoLineOptions) (Table, error) {
	if opts.PositionChar == 0 {
		opts.PositionChar = '-'
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	position := -1
	for i, line := range lines {
		if opts.isPositionLine(line) {
			position = i
			break
		}
	}
	if position < 0 {
		return Table{}, fmt.Errorf("no position line: %w", catalogs.ErrNoData)
	}

	header := -1
	for i := position - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			header = i
			break
		}
	}
	if header < 0 {
		return Table{}, fmt.Errorf("no header line above position line: %w", catalogs.ErrNoData)
	}

	spans := opts.spans(lines[position])
	cutset := " \t"
	if opts.Delimiter != 0 {
		cutset += string(opts.Delimiter)
	}

	table := Table{}
	for i, name := range SplitSpans(lines[header], spans) {
		name = strings.Trim(name, cutset)
		if name == "" {
			name = fmt.Sprintf("col%d", i+1)
		}
		table.Columns = append(table.Columns, Column{Name: name, Kind: String})
	}

	var data []string
	for _, line := range lines[position+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		data = append(data, line)
	}
	if opts.DropFooter && len(data) > 0 {
		data = data[:len(data)-1]
	}

	for _, line := range data {
		cells := SplitSpans(line, spans)
		row := make(Row, len(cells))
		for i, cell := range cells {
			row[i] = StringValue(strings.Trim(cell, cutset))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
