package filtering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradscope/domain/dataset"
	"gradscope/domain/filter"
	"gradscope/internal"
	"gradscope/internal/errors"
)

var cols = []string{
	"Year", "Education.Major",
	"Education.Degrees.Bachelors", "Education.Degrees.Masters", "Education.Degrees.Doctorates",
	"Demographics.Gender.Female", "Demographics.Gender.Male",
	"Employment.Status.Employed", "Employment.Status.Unemployed",
}

func row(year dataset.Value, major string, counts ...float64) dataset.Row {
	r := dataset.Row{year, dataset.NewStringValue(major)}
	for _, c := range counts {
		r = append(r, dataset.NewNumericValue(c))
	}
	return r
}

func yr(y int64) dataset.Value { return dataset.NewIntegerValue(y) }

func fixture() *dataset.Dataset {
	return dataset.New(cols, []dataset.Row{
		row(yr(2010), "Biology", 10, 3, 0, 8, 5, 12, 1),
		row(yr(2012), "History", 7, 0, 2, 0, 9, 6, 3),
		row(yr(2015), "Biology", 0, 4, 1, 3, 0, 4, 0),
		row(dataset.NewMissingValue(), "Physics", 5, 1, 1, 2, 4, 5, 1),
		row(yr(2013), "", 2, 0, 0, 1, 1, 0, 2),
	})
}

func newEngine() *Engine {
	return NewEngine(filter.DefaultSchema(), nil, internal.NewNopLogger())
}

func majors(ds *dataset.Dataset) []string {
	out := make([]string, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		v, _ := ds.Value(i, "Education.Major")
		out[i] = v.Text()
	}
	return out
}

func years(ds *dataset.Dataset) []string {
	out := make([]string, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		v, _ := ds.Value(i, "Year")
		out[i] = v.Text()
	}
	return out
}

func TestDefaultCriteriaKeepsEverything(t *testing.T) {
	res := newEngine().Apply(fixture(), filter.DefaultCriteria())
	assert.Equal(t, 5, res.Rows.Len())
	assert.Empty(t, res.Applied)
	assert.Empty(t, res.Warnings)
}

func TestMajorFilter(t *testing.T) {
	c := filter.DefaultCriteria()
	c.Majors = []string{"Biology", "Physics"}
	res := newEngine().Apply(fixture(), c)

	assert.Equal(t, []string{"Biology", "Biology", "Physics"}, majors(res.Rows))
	assert.Equal(t, []filter.Dimension{filter.DimensionMajor}, res.Applied)

	c.Majors = []string{"Biology", filter.All}
	assert.Equal(t, 5, newEngine().Apply(fixture(), c).Rows.Len(), "All keeps universal semantics")
}

func TestMajorFilterMatchesMissingAsEmpty(t *testing.T) {
	c := filter.DefaultCriteria()
	c.Majors = []string{""}
	res := newEngine().Apply(fixture(), c)
	assert.Equal(t, []string{"2013"}, years(res.Rows))
}

func TestDegreePresenceFilter(t *testing.T) {
	ds := dataset.New(
		[]string{"Education.Degrees.Masters", "Education.Degrees.Doctorates"},
		[]dataset.Row{{dataset.NewNumericValue(3), dataset.NewNumericValue(0)}},
	)

	c := filter.DefaultCriteria()
	c.Degree = "Masters"
	assert.Equal(t, 1, newEngine().Apply(ds, c).Rows.Len())

	c.Degree = "Doctorates"
	assert.Equal(t, 0, newEngine().Apply(ds, c).Rows.Len())
}

func TestYearExactMatch(t *testing.T) {
	c := filter.DefaultCriteria()
	c.StartYear = "2012"
	res := newEngine().Apply(fixture(), c)
	assert.Equal(t, []string{"2012"}, years(res.Rows))
}

func TestYearRangeIsOrderIndependent(t *testing.T) {
	e := newEngine()
	forward := filter.DefaultCriteria()
	forward.StartYear, forward.EndYear = "2010", "2013"
	backward := filter.DefaultCriteria()
	backward.StartYear, backward.EndYear = "2013", "2010"

	f := e.Apply(fixture(), forward)
	b := e.Apply(fixture(), backward)

	assert.Equal(t, []string{"2010", "2012", "2013"}, years(f.Rows))
	assert.Equal(t, years(f.Rows), years(b.Rows))
}

func TestYearFilterExcludesMissingYears(t *testing.T) {
	c := filter.DefaultCriteria()
	c.StartYear, c.EndYear = "2000", "2030"
	res := newEngine().Apply(fixture(), c)
	assert.Equal(t, 4, res.Rows.Len())
	assert.NotContains(t, majors(res.Rows), "Physics")
}

func TestEndYearWithoutStartIsIgnored(t *testing.T) {
	c := filter.DefaultCriteria()
	c.EndYear = "2012"
	res := newEngine().Apply(fixture(), c)
	assert.Equal(t, 5, res.Rows.Len())
	assert.Empty(t, res.Warnings)
}

func TestMalformedYearIsSkippedWithWarning(t *testing.T) {
	c := filter.DefaultCriteria()
	c.StartYear = "twenty-ten"
	c.Gender = "Female"
	res := newEngine().Apply(fixture(), c)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, errors.CodeInvalidFilter, res.Warnings[0].Code)
	assert.Equal(t, filter.DimensionYear, res.Warnings[0].Dimension)
	assert.Equal(t, []filter.Dimension{filter.DimensionYear}, res.Skipped)
	assert.Equal(t, 4, res.Rows.Len(), "gender filter still applied")
}

func TestMissingColumnIsNoOpWithWarning(t *testing.T) {
	ds := fixture()
	tests := []struct {
		name string
		mod  func(c *filter.Criteria)
		dim  filter.Dimension
	}{
		{"degree", func(c *filter.Criteria) { c.Degree = "Associates" }, filter.DimensionDegree},
		{"gender", func(c *filter.Criteria) { c.Gender = "Nonbinary" }, filter.DimensionGender},
		{"employment", func(c *filter.Criteria) { c.Employment = "Retired" }, filter.DimensionEmployment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := filter.DefaultCriteria()
			tt.mod(&c)
			res := newEngine().Apply(ds, c)

			assert.Equal(t, ds.Len(), res.Rows.Len())
			require.Len(t, res.Warnings, 1)
			assert.Equal(t, errors.CodeMissingColumn, res.Warnings[0].Code)
			assert.Equal(t, tt.dim, res.Warnings[0].Dimension)
			assert.True(t, errors.GetCode(res.Warnings[0].Err()) == errors.CodeMissingColumn)
		})
	}
}

func TestMissingMajorAndYearColumns(t *testing.T) {
	ds := dataset.New([]string{"Demographics.Gender.Female"}, []dataset.Row{
		{dataset.NewNumericValue(1)}, {dataset.NewNumericValue(0)},
	})
	c := filter.DefaultCriteria()
	c.Majors = []string{"Biology"}
	c.StartYear = "2010"

	res := newEngine().Apply(ds, c)
	assert.Equal(t, 2, res.Rows.Len())
	assert.Len(t, res.Warnings, 2)
}

// The sequential result equals the intersection of each predicate applied alone.
func TestFilteringEqualsIntersection(t *testing.T) {
	ds := fixture()
	c := filter.Criteria{
		Majors:     []string{"Biology", "History"},
		Degree:     "Bachelors",
		StartYear:  "2015",
		EndYear:    "2010",
		Gender:     "Female",
		Employment: "Employed",
	}
	e := newEngine()
	combined := e.Apply(ds, c)

	keep := make([]bool, ds.Len())
	for i := range keep {
		keep[i] = true
	}
	for _, dim := range filter.DefaultOrder {
		pred, warn := e.Predicate(ds, c, dim)
		require.Nil(t, warn)
		for i := range keep {
			keep[i] = keep[i] && pred(i)
		}
	}
	var want []string
	for i, k := range keep {
		if k {
			v, _ := ds.Value(i, "Year")
			want = append(want, v.Text())
		}
	}

	assert.Equal(t, want, years(combined.Rows))
	assert.Equal(t, []string{"2010"}, want)
}

func TestNarrowAppliesOnlyListedDimensions(t *testing.T) {
	c := filter.DefaultCriteria()
	c.Majors = []string{"History"}
	c.Gender = "Female"

	out := newEngine().Narrow(fixture(), c, []filter.Dimension{filter.DimensionMajor})
	assert.Equal(t, []string{"History"}, majors(out))
}

func TestCustomOrder(t *testing.T) {
	e := NewEngine(filter.DefaultSchema(), []filter.Dimension{filter.DimensionYear, filter.DimensionMajor}, internal.NewNopLogger())
	c := filter.DefaultCriteria()
	c.Majors = []string{"Biology"}
	c.StartYear = "2015"
	c.Gender = "Female"

	res := e.Apply(fixture(), c)
	assert.Equal(t, []filter.Dimension{filter.DimensionYear, filter.DimensionMajor}, res.Applied)
	assert.Equal(t, 1, res.Rows.Len())
}
