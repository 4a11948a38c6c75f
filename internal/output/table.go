package output

import (
	"bytes"
	"strings"
	"text/tabwriter"
)

// TableWriter renders rows as kubectl-style aligned columns.
type TableWriter struct {
	buf  bytes.Buffer
	w    *tabwriter.Writer
	rows int
}

// NewTableWriter creates a TableWriter with the given header row.
// Columns are separated by at least three spaces.
func NewTableWriter(columns ...string) *TableWriter {
	t := &TableWriter{}
	t.w = tabwriter.NewWriter(&t.buf, 0, 0, 3, ' ', 0)
	if len(columns) > 0 {
		t.write(columns)
	}
	return t
}

func (t *TableWriter) write(cells []string) {
	_, _ = t.w.Write([]byte(strings.Join(cells, "\t") + "\n"))
}

// Row writes a data row. Tabs and newlines inside values are replaced by
// spaces so they cannot break the layout.
func (t *TableWriter) Row(values ...string) {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = strings.Map(func(r rune) rune {
			if r == '\t' || r == '\n' {
				return ' '
			}
			return r
		}, v)
	}
	t.rows++
	t.write(cells)
}

// String flushes the writer and returns the table. A table without data
// rows renders as an empty string.
func (t *TableWriter) String() string {
	if t.rows == 0 {
		return ""
	}
	_ = t.w.Flush()
	return strings.TrimSuffix(t.buf.String(), "\n")
}
