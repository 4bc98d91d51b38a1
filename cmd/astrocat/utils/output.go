package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"astrocat/internal/tabular"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	FormatTable    = "table"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

var Formats = []string{FormatTable, FormatCSV, FormatMarkdown, FormatJSON}

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func header(columns []tabular.Column) table.Row {
	row := make(table.Row, len(columns))
	for i, c := range columns {
		if c.Unit != "" {
			row[i] = fmt.Sprintf("%s (%s)", c.Name, c.Unit)
			continue
		}
		row[i] = c.Name
	}
	return row
}

// columnConfigs right aligns numeric columns.
func columnConfigs(columns []tabular.Column) []table.ColumnConfig {
	var configs []table.ColumnConfig
	for i, c := range columns {
		if c.Kind.Numeric() {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	return configs
}

// Render writes t to out in the given format.
func Render(out io.Writer, t tabular.Table, format string) error {
	if format == FormatJSON {
		return renderJSON(out, t)
	}

	w := NewTable()
	w.SetOutputMirror(out)
	w.AppendHeader(header(t.Columns))
	w.SetColumnConfigs(columnConfigs(t.Columns))
	for _, row := range t.Rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = v.String()
		}
		w.AppendRow(r)
	}

	switch format {
	case FormatTable, "":
		w.Render()
	case FormatCSV:
		w.RenderCSV()
	case FormatMarkdown:
		w.RenderMarkdown()
	default:
		return fmt.Errorf("unknown format '%s', expected one of %v", format, Formats)
	}
	return nil
}

func renderJSON(out io.Writer, t tabular.Table) error {
	records := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		record := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			if j < len(row) {
				record[c.Name] = row[j].Any()
			}
		}
		records[i] = record
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}
