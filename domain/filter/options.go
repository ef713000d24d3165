package filter

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gradscope/domain/dataset"
)

// Policy decides which row-set each dimension's option list is drawn from.
type Policy string

const (
	// PolicyBase draws every option list from the unfiltered dataset, so lists
	// stay put while other selections change.
	PolicyBase Policy = "base"
	// PolicyChained draws each list from the dataset already narrowed by the
	// dimensions earlier in the chain. Count-encoded dimensions then only offer
	// labels with a positive total in that narrowed set.
	PolicyChained Policy = "chained"
)

// ParsePolicy maps a config string to a Policy; unknown values are base.
func ParsePolicy(s string) Policy {
	if Policy(strings.ToLower(strings.TrimSpace(s))) == PolicyChained {
		return PolicyChained
	}
	return PolicyBase
}

// Options are the legal choices for every dimension.
type Options struct {
	Policy     Policy   `json:"policy"`
	Majors     []string `json:"majors"`
	Degrees    []string `json:"degrees"`
	StartYears []string `json:"start_years"`
	EndYears   []string `json:"end_years"`
	// EndYearEnabled is false until a start year is chosen
	EndYearEnabled bool     `json:"end_year_enabled"`
	Genders        []string `json:"genders"`
	Employment     []string `json:"employment"`
}

// Narrower restricts a dataset by the criteria on the given dimensions only.
// The filtering engine implements it.
type Narrower interface {
	Narrow(ds *dataset.Dataset, c Criteria, dims []Dimension) *dataset.Dataset
}

// OptionBuilder computes Options for a variant's dimension chain
type OptionBuilder struct {
	schema   Schema
	policy   Policy
	narrower Narrower
}

// NewOptionBuilder creates a builder. A nil narrower forces PolicyBase.
func NewOptionBuilder(schema Schema, policy Policy, narrower Narrower) *OptionBuilder {
	if narrower == nil {
		policy = PolicyBase
	}
	return &OptionBuilder{schema: schema, policy: policy, narrower: narrower}
}

// Policy returns the effective policy
func (b *OptionBuilder) Policy() Policy {
	return b.policy
}

// Build computes option lists for the dimensions in chain. Dimensions not in
// chain get no list. Year lists always come from the base dataset; the end
// year list depends on the selected start year.
func (b *OptionBuilder) Build(base *dataset.Dataset, c Criteria, chain []Dimension) Options {
	opts := Options{Policy: b.policy}

	for i, dim := range chain {
		source := base
		if b.policy == PolicyChained && dim != DimensionYear && i > 0 {
			source = b.narrower.Narrow(base, c, withoutYear(chain[:i]))
		}
		positiveOnly := b.policy == PolicyChained

		switch dim {
		case DimensionMajor:
			opts.Majors = MajorOptions(source, b.schema.MajorColumn)
		case DimensionYear:
			years := PresentYears(base, b.schema.YearColumn)
			opts.StartYears = YearOptions(years)
			opts.EndYears = EndYearOptions(years, c.StartYear)
			opts.EndYearEnabled = strings.TrimSpace(c.StartYear) != ""
		case DimensionDegree:
			opts.Degrees = LabelOptions(source, b.schema.DegreePrefix, positiveOnly)
		case DimensionGender:
			opts.Genders = LabelOptions(source, b.schema.GenderPrefix, positiveOnly)
		case DimensionEmployment:
			opts.Employment = LabelOptions(source, b.schema.EmploymentPrefix, positiveOnly)
		}
	}
	return opts
}

func withoutYear(dims []Dimension) []Dimension {
	out := make([]Dimension, 0, len(dims))
	for _, d := range dims {
		if d != DimensionYear {
			out = append(out, d)
		}
	}
	return out
}

// MajorOptions returns "All" followed by the sorted distinct majors present.
// A missing column yields just "All".
func MajorOptions(ds *dataset.Dataset, column string) []string {
	out := []string{All}
	values, ok := ds.ColumnValues(column)
	if !ok {
		return out
	}
	seen := make(map[string]struct{})
	var majors []string
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		m := v.Text()
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		majors = append(majors, m)
	}
	sort.Strings(majors)
	return append(out, majors...)
}

// PresentYears returns the sorted distinct years that parse in the column
func PresentYears(ds *dataset.Dataset, column string) []int64 {
	values, ok := ds.ColumnValues(column)
	if !ok {
		return nil
	}
	seen := make(map[int64]struct{})
	var years []int64
	for _, v := range values {
		y, ok := YearOf(v)
		if !ok {
			continue
		}
		if _, dup := seen[y]; dup {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] < years[j] })
	return years
}

// YearOptions returns "" followed by the years as strings
func YearOptions(years []int64) []string {
	out := make([]string, 0, len(years)+1)
	out = append(out, "")
	for _, y := range years {
		out = append(out, strconv.FormatInt(y, 10))
	}
	return out
}

// EndYearOptions returns "" followed by the years not earlier than start.
// With no start, or a start that does not parse, every year is offered.
func EndYearOptions(years []int64, start string) []string {
	start = strings.TrimSpace(start)
	if start == "" {
		return YearOptions(years)
	}
	s, err := strconv.ParseInt(start, 10, 64)
	if err != nil {
		return YearOptions(years)
	}
	var later []int64
	for _, y := range years {
		if y >= s {
			later = append(later, y)
		}
	}
	return YearOptions(later)
}

// LabelOptions returns the category labels of a prefix group in header order.
// With positiveOnly, labels whose column sums to zero over ds are dropped.
func LabelOptions(ds *dataset.Dataset, prefix string, positiveOnly bool) []string {
	var out []string
	for _, col := range ds.ColumnsWithPrefix(prefix) {
		if positiveOnly {
			values, _ := ds.ColumnValues(col)
			total := 0.0
			for _, v := range values {
				total += v.SumFloat()
			}
			if total <= 0 {
				continue
			}
		}
		out = append(out, strings.TrimPrefix(col, prefix))
	}
	return out
}

// YearOf reads a cell as a whole year. Integer cells and integral numbers qualify.
func YearOf(v dataset.Value) (int64, bool) {
	if y, ok := v.Int(); ok {
		return y, true
	}
	f, ok := v.Float()
	if !ok && v.Type == dataset.ValueTypeString {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
		f, ok = parsed, err == nil
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
