// Package aggregate turns prefix groups of count columns into chart-ready
// breakdowns.
//
// A group is every column whose name starts with a prefix; each column's
// label is its name with the prefix removed. Values are summed over the
// row-set with missing cells counted as zero. Categories with a non-positive
// total are dropped before percentages are computed, so the displayed
// percentages sum to 100 (up to rounding).
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"gradscope/domain/dataset"
)

// Status says whether a breakdown can be charted
type Status string

const (
	StatusOK             Status = "ok"
	StatusNoData         Status = "no_data"
	StatusColumnsMissing Status = "columns_missing"
)

// Slice is one category of a breakdown
type Slice struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// Breakdown is the input for one chart
type Breakdown struct {
	Title   string  `json:"title"`
	Prefix  string  `json:"prefix,omitempty"`
	Status  Status  `json:"status"`
	Message string  `json:"message,omitempty"`
	Slices  []Slice `json:"slices,omitempty"`
	Total   float64 `json:"total"`
}

// OK reports whether the breakdown has something to draw
func (b Breakdown) OK() bool {
	return b.Status == StatusOK
}

// Labels returns the slice labels in order
func (b Breakdown) Labels() []string {
	out := make([]string, len(b.Slices))
	for i, s := range b.Slices {
		out[i] = s.Label
	}
	return out
}

// SortByValue orders slices largest first, keeping label order among ties.
func (b Breakdown) SortByValue() Breakdown {
	sorted := append([]Slice(nil), b.Slices...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })
	b.Slices = sorted
	return b
}

// FromValues builds a breakdown from parallel label/value lists. It returns
// a no-data breakdown when there are no labels, the values sum to zero, or
// no value is positive.
func FromValues(title string, labels []string, values []float64) Breakdown {
	b := Breakdown{Title: title}
	if len(labels) == 0 || len(labels) != len(values) {
		return noData(b)
	}

	clean := make([]float64, len(values))
	for i, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean[i] = v
		}
	}
	if floats.Sum(clean) == 0 {
		return noData(b)
	}

	var slices []Slice
	var positive []float64
	for i, v := range clean {
		if v > 0 {
			slices = append(slices, Slice{Label: labels[i], Value: v})
			positive = append(positive, v)
		}
	}
	if len(slices) == 0 {
		return noData(b)
	}

	total := floats.Sum(positive)
	for i := range slices {
		slices[i].Percent = Round1(slices[i].Value / total * 100)
	}
	b.Status = StatusOK
	b.Slices = slices
	b.Total = total
	return b
}

func noData(b Breakdown) Breakdown {
	b.Status = StatusNoData
	b.Message = fmt.Sprintf("No %s data to display for the current filter.", strings.ToLower(b.Title))
	return b
}

// Group sums the prefix group over ds and builds its breakdown. If no column
// matches the status is StatusColumnsMissing, which callers show differently
// from an empty selection.
func Group(ds *dataset.Dataset, title, prefix string) Breakdown {
	cols := ds.ColumnsWithPrefix(prefix)
	if len(cols) == 0 {
		return Breakdown{
			Title:   title,
			Prefix:  prefix,
			Status:  StatusColumnsMissing,
			Message: fmt.Sprintf("%s columns not found in dataset.", title),
		}
	}

	labels := make([]string, len(cols))
	values := make([]float64, len(cols))
	for i, col := range cols {
		labels[i] = strings.TrimPrefix(col, prefix)
		values[i] = ColumnTotal(ds, col)
	}

	b := FromValues(title, labels, values)
	b.Prefix = prefix
	return b
}

// ColumnTotal sums one column over ds, missing cells as zero. An absent
// column sums to zero.
func ColumnTotal(ds *dataset.Dataset, column string) float64 {
	vals, ok := ds.ColumnValues(column)
	if !ok {
		return 0
	}
	sums := make([]float64, len(vals))
	for i, v := range vals {
		sums[i] = v.SumFloat()
	}
	return floats.Sum(sums)
}

// PrefixTotal sums every column of a prefix group over every row.
func PrefixTotal(ds *dataset.Dataset, prefix string) (float64, bool) {
	cols := ds.ColumnsWithPrefix(prefix)
	if len(cols) == 0 {
		return 0, false
	}
	totals := make([]float64, len(cols))
	for i, col := range cols {
		totals[i] = ColumnTotal(ds, col)
	}
	return floats.Sum(totals), true
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
