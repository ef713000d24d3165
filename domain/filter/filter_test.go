package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gradscope/domain/dataset"
)

func graduates() *dataset.Dataset {
	num := dataset.NewNumericValue
	return dataset.New(
		[]string{"Year", "Education.Major", "Education.Degrees.Bachelors", "Education.Degrees.Masters", "Demographics.Gender.Female", "Demographics.Gender.Male"},
		[]dataset.Row{
			{dataset.NewIntegerValue(2015), dataset.NewStringValue("Physics"), num(4), num(0), num(1), num(3)},
			{dataset.NewIntegerValue(2010), dataset.NewStringValue("Biology"), num(2), num(5), num(6), num(1)},
			{dataset.NewIntegerValue(2012), dataset.NewStringValue("Biology"), num(0), num(1), num(0), num(1)},
			{dataset.NewMissingValue(), dataset.NewMissingValue(), num(1), num(0), num(1), num(0)},
		},
	)
}

// majorOnly narrows by major membership; enough to exercise chaining here.
type majorOnly struct{}

func (majorOnly) Narrow(ds *dataset.Dataset, c Criteria, dims []Dimension) *dataset.Dataset {
	for _, d := range dims {
		if d == DimensionMajor && c.Active(DimensionMajor) {
			return ds.Where(func(i int) bool {
				v, _ := ds.Value(i, "Education.Major")
				for _, m := range c.Majors {
					if v.Text() == m {
						return true
					}
				}
				return false
			})
		}
	}
	return ds
}

func TestEndYearOptions(t *testing.T) {
	years := []int64{2010, 2012, 2015}

	assert.Equal(t, []string{"", "2012", "2015"}, EndYearOptions(years, "2012"))
	assert.Equal(t, []string{"", "2010", "2012", "2015"}, EndYearOptions(years, ""))
	assert.Equal(t, []string{"", "2010", "2012", "2015"}, EndYearOptions(years, "soon"))
	assert.Equal(t, []string{""}, EndYearOptions(years, "2016"))
}

func TestMajorOptions(t *testing.T) {
	assert.Equal(t, []string{All, "Biology", "Physics"}, MajorOptions(graduates(), "Education.Major"))
	assert.Equal(t, []string{All}, MajorOptions(graduates(), "Major"))
}

func TestPresentYears(t *testing.T) {
	assert.Equal(t, []int64{2010, 2012, 2015}, PresentYears(graduates(), "Year"))

	text := dataset.New([]string{"Year"}, []dataset.Row{
		{dataset.NewStringValue("2011")}, {dataset.NewStringValue("2011.0")}, {dataset.NewStringValue("x")},
	})
	assert.Equal(t, []int64{2011}, PresentYears(text, "Year"))
	assert.Nil(t, PresentYears(graduates(), "Cohort"))
}

func TestBuildBasePolicy(t *testing.T) {
	b := NewOptionBuilder(DefaultSchema(), PolicyBase, majorOnly{})
	c := DefaultCriteria()
	c.Majors = []string{"Physics"}
	c.StartYear = "2012"

	opts := b.Build(graduates(), c, []Dimension{DimensionMajor, DimensionDegree, DimensionYear, DimensionGender})

	assert.Equal(t, PolicyBase, opts.Policy)
	assert.Equal(t, []string{All, "Biology", "Physics"}, opts.Majors)
	assert.Equal(t, []string{"Bachelors", "Masters"}, opts.Degrees, "base lists ignore other selections")
	assert.Equal(t, []string{"", "2010", "2012", "2015"}, opts.StartYears)
	assert.Equal(t, []string{"", "2012", "2015"}, opts.EndYears)
	assert.True(t, opts.EndYearEnabled)
	assert.Equal(t, []string{"Female", "Male"}, opts.Genders)
	assert.Nil(t, opts.Employment, "dimension not in chain")
}

func TestBuildChainedPolicy(t *testing.T) {
	b := NewOptionBuilder(DefaultSchema(), PolicyChained, majorOnly{})
	c := DefaultCriteria()
	c.Majors = []string{"Physics"}

	opts := b.Build(graduates(), c, []Dimension{DimensionMajor, DimensionDegree, DimensionGender})

	assert.Equal(t, []string{All, "Biology", "Physics"}, opts.Majors, "first dimension comes from the base set")
	assert.Equal(t, []string{"Bachelors"}, opts.Degrees, "Physics has no masters graduates")
	assert.Equal(t, []string{"Female", "Male"}, opts.Genders)
	assert.False(t, opts.EndYearEnabled)
}

func TestNilNarrowerFallsBackToBase(t *testing.T) {
	b := NewOptionBuilder(DefaultSchema(), PolicyChained, nil)
	assert.Equal(t, PolicyBase, b.Policy())
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyChained, ParsePolicy(" Chained "))
	assert.Equal(t, PolicyBase, ParsePolicy(""))
	assert.Equal(t, PolicyBase, ParsePolicy("whatever"))
}

func TestCriteriaSemantics(t *testing.T) {
	c := DefaultCriteria()
	assert.True(t, c.AllMajors())
	assert.Equal(t, All, c.MajorsLabel())
	for _, d := range DefaultOrder {
		assert.False(t, c.Active(d), d)
	}

	c.Majors = []string{"Biology", "History"}
	c.Degree = All
	c.Gender = "Female"
	c.EndYear = "2015"
	assert.Equal(t, "Biology, History", c.MajorsLabel())
	assert.True(t, c.Active(DimensionMajor))
	assert.False(t, c.Active(DimensionDegree))
	assert.True(t, c.Active(DimensionGender))
	assert.False(t, c.Active(DimensionYear), "end year alone does not filter")
}

func TestFingerprint(t *testing.T) {
	a := Criteria{Majors: []string{"History", "Biology"}, Degree: ""}
	b := Criteria{Majors: []string{"Biology", "History"}, Degree: All}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	assert.Equal(t, DefaultCriteria().Fingerprint(), Criteria{}.Fingerprint())

	b.StartYear = "2010"
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestRestrict(t *testing.T) {
	c := Criteria{Majors: []string{"Biology"}, Degree: "Masters", StartYear: "2010", EndYear: "2012", Gender: "Males", Employment: "Employed"}

	r := c.Restrict([]Dimension{DimensionMajor, DimensionYear})
	assert.Equal(t, Criteria{Majors: []string{"Biology"}, StartYear: "2010", EndYear: "2012"}, r)

	assert.Equal(t, DefaultCriteria(), Criteria{}.Restrict(DefaultOrder))
	assert.Equal(t, c, c.Restrict(DefaultOrder))
}
