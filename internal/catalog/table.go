package catalog

import "strings"

// Table is a validated snapshot of one catalog table
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string // every row is exactly len(Columns) wide

	index map[string]int
}

// newTable normalizes raw store rows (header first) into a Table.
// Header cells are trimmed; data rows are padded or cut to the header width.
func newTable(name string, raw [][]string) *Table {
	if len(raw) == 0 {
		return &Table{Name: name, index: map[string]int{}}
	}

	cols := make([]string, len(raw[0]))
	for i, c := range raw[0] {
		cols[i] = strings.TrimSpace(c)
	}

	rows := make([][]string, 0, len(raw)-1)
	for _, r := range raw[1:] {
		if isBlankRow(r) {
			continue
		}
		row := make([]string, len(cols))
		copy(row, r)
		rows = append(rows, row)
	}

	return withIndex(&Table{Name: name, Columns: cols, Rows: rows})
}

// emptyTable is a zero-row table shaped with exactly columns
func emptyTable(name string, columns []string) *Table {
	return withIndex(&Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    [][]string{},
	})
}

func withIndex(t *Table) *Table {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		// First occurrence wins for duplicated headers
		if _, ok := t.index[c]; !ok {
			t.index[c] = i
		}
	}
	return t
}

// Len returns the number of data rows
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether the normalized header contains col
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Value returns the cell of row i in column col, or "" if the column is absent
func (t *Table) Value(i int, col string) string {
	j, ok := t.index[col]
	if !ok || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return t.Rows[i][j]
}

// Records returns each row keyed by column name
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for col, j := range t.index {
			rec[col] = t.Rows[i][j]
		}
		out[i] = rec
	}
	return out
}

// missing returns the required columns absent from the header, in order
func (t *Table) missing(required []string) []string {
	var out []string
	for _, col := range required {
		if !t.HasColumn(col) {
			out = append(out, col)
		}
	}
	return out
}

// Spreadsheet exports pad the sheet with fully empty rows
func isBlankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
