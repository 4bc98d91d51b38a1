package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"astrocat/internal/catalogs"
)

// ParseDelimited parses a table whose rows are lines wrapped in and
// separated by delim, like `|name |ra  |dec |`. Lines that do not start with
// delim are ignored. The first row is the header, every cell is a trimmed
// string.
func ParseDelimited(text string, delim rune) (Table, error) {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, string(delim)) {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("no delimited rows: %w", catalogs.ErrNoData)
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(rows, "\n")))
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read delimited row: %w", err)
		}
		records = append(records, unwrapRecord(record))
	}

	table := Table{}
	for _, name := range records[0] {
		table.Columns = append(table.Columns, Column{Name: name, Kind: String})
	}
	for _, record := range records[1:] {
		row := make(Row, len(table.Columns))
		for i := range row {
			cell := ""
			if i < len(record) {
				cell = record[i]
			}
			row[i] = StringValue(cell)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// unwrapRecord drops the empty cells produced by the leading and trailing
// delimiters and trims the rest.
func unwrapRecord(record []string) []string {
	if len(record) > 0 && strings.TrimSpace(record[0]) == "" {
		record = record[1:]
	}
	if len(record) > 0 && strings.TrimSpace(record[len(record)-1]) == "" {
		record = record[:len(record)-1]
	}
	out := make([]string, len(record))
	for i, cell := range record {
		out[i] = strings.TrimSpace(cell)
	}
	return out
}
