package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Tabular values know how to render themselves as a table.
type Tabular interface {
	Table() *Table
}

// TableFormatter renders Tabular values, *Table, and string maps. Other
// values fall back to YAML.
type TableFormatter struct {
	NoHeaders bool
}

// Format implements Formatter.
func (f TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		return v.render(w, f.NoHeaders)
	case Tabular:
		return v.Table().render(w, f.NoHeaders)
	case map[string]string:
		return KeyValues(v).render(w, f.NoHeaders)
	default:
		return YAMLFormatter{}.Format(w, data)
	}
}

// Table is tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable returns a table with headers.
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends a row. Empty cells render as "-".
func (t *Table) AddRow(cells ...string) *Table {
	row := make([]string, len(cells))
	for i, c := range cells {
		if c == "" {
			c = "-"
		}
		row[i] = c
	}
	t.Rows = append(t.Rows, row)
	return t
}

// Render writes the table with headers.
func (t *Table) Render(w io.Writer) error {
	return t.render(w, false)
}

func (t *Table) render(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// KeyValues returns a FIELD/VALUE table of m sorted by key.
func KeyValues(m map[string]string) *Table {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := NewTable("FIELD", "VALUE")
	for _, k := range keys {
		t.AddRow(k, m[k])
	}
	return t
}
