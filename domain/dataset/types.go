package dataset

import (
	"strings"
)

// RawTable is a table exactly as read from a source: a header row plus
// string cells. Short rows are padded with empty cells by the readers.
type RawTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Column returns the index of a header, or -1
func (t *RawTable) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Row is one stratum of the dataset, aligned with the dataset's columns.
type Row []Value

// Dataset is an immutable, ordered collection of typed rows. Every operation
// that narrows or extends it returns a new Dataset; rows are shared, never mutated.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// New builds a dataset from columns and rows. Rows shorter than the column
// list are padded with missing values.
func New(columns []string, rows []Row) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}

	for i, r := range rows {
		if len(r) < len(cols) {
			padded := make(Row, len(cols))
			copy(padded, r)
			for j := len(r); j < len(cols); j++ {
				padded[j] = NewMissingValue()
			}
			rows[i] = padded
		}
	}

	return &Dataset{columns: cols, index: index, rows: rows}
}

// Columns returns the column names in header order
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasColumn reports whether the named column exists (case-sensitive)
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Row returns the i-th row
func (d *Dataset) Row(i int) Row {
	return d.rows[i]
}

// Value returns the cell at row i for the named column. A missing column
// yields a missing value and false.
func (d *Dataset) Value(i int, column string) (Value, bool) {
	j, ok := d.index[column]
	if !ok {
		return NewMissingValue(), false
	}
	return d.rows[i][j], true
}

// ColumnValues returns every cell of a column in row order
func (d *Dataset) ColumnValues(column string) ([]Value, bool) {
	j, ok := d.index[column]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(d.rows))
	for i, r := range d.rows {
		out[i] = r[j]
	}
	return out, true
}

// Floats returns a column's numeric readings; missing cells are NaN.
func (d *Dataset) Floats(column string) ([]float64, bool) {
	vals, ok := d.ColumnValues(column)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i], _ = v.Float()
	}
	return out, true
}

// ColumnsWithPrefix returns, in header order, all columns whose name starts
// with prefix. Matching is exact and case-sensitive.
func (d *Dataset) ColumnsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range d.columns {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Subset returns a new dataset with the rows at the given indices, in the
// order given. Callers pass ascending indices to keep original row order.
func (d *Dataset) Subset(indices []int) *Dataset {
	rows := make([]Row, len(indices))
	for i, idx := range indices {
		rows[i] = d.rows[idx]
	}
	return &Dataset{columns: d.columns, index: d.index, rows: rows}
}

// Where keeps the rows for which keep returns true, preserving order.
func (d *Dataset) Where(keep func(i int) bool) *Dataset {
	indices := make([]int, 0, len(d.rows))
	for i := range d.rows {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	return d.Subset(indices)
}

// WithColumn returns a new dataset with an extra column computed per row.
// If the column already exists its values are replaced.
func (d *Dataset) WithColumn(name string, compute func(i int) Value) *Dataset {
	cols := d.columns
	j, exists := d.index[name]
	if !exists {
		cols = append(append(make([]string, 0, len(d.columns)+1), d.columns...), name)
		j = len(cols) - 1
	}

	rows := make([]Row, len(d.rows))
	for i, r := range d.rows {
		nr := make(Row, len(cols))
		copy(nr, r)
		nr[j] = compute(i)
		rows[i] = nr
	}
	return New(cols, rows)
}

// Slice returns rows [offset, offset+limit) as a new dataset. limit <= 0 means all.
func (d *Dataset) Slice(offset, limit int) *Dataset {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.rows) {
		offset = len(d.rows)
	}
	end := len(d.rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return &Dataset{columns: d.columns, index: d.index, rows: d.rows[offset:end]}
}

// Records renders rows as column->value maps for tabular display.
func (d *Dataset) Records() []map[string]interface{} {
	out := make([]map[string]interface{}, len(d.rows))
	for i, r := range d.rows {
		rec := make(map[string]interface{}, len(d.columns))
		for j, c := range d.columns {
			rec[c] = r[j].Interface()
		}
		out[i] = rec
	}
	return out
}
