package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() *Dataset {
	cols := []string{"Year", "Education.Major", "Demographics.Gender.Male", "Demographics.Gender.Female", "Demographics.GenderRatio"}
	rows := []Row{
		{NewIntegerValue(2010), NewStringValue("Biology"), NewNumericValue(3), NewNumericValue(4), NewNumericValue(0.7)},
		{NewIntegerValue(2012), NewStringValue("History"), NewMissingValue(), NewNumericValue(2)},
		{NewMissingValue(), NewMissingValue(), NewNumericValue(1), NewNumericValue(0), NewNumericValue(1)},
	}
	return New(cols, rows)
}

func TestValueReadings(t *testing.T) {
	f, ok := NewNumericValue(2.5).Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	f, ok = NewMissingValue().Float()
	assert.False(t, ok)
	assert.True(t, math.IsNaN(f))
	assert.Equal(t, 0.0, NewMissingValue().SumFloat())

	assert.True(t, NewNumericValue(math.NaN()).IsMissing())
	assert.True(t, NewStringValue("").IsMissing())
	assert.Equal(t, "", NewMissingValue().Text())
	assert.Equal(t, "2015", NewIntegerValue(2015).Text())
	assert.Equal(t, "50000", NewNumericValue(50000).Text())
	assert.Nil(t, NewMissingValue().Interface())
}

func TestShortRowsArePadded(t *testing.T) {
	ds := sample()
	v, ok := ds.Value(1, "Demographics.GenderRatio")
	assert.True(t, ok)
	assert.True(t, v.IsMissing())
}

func TestColumnsWithPrefixIsExactSubstring(t *testing.T) {
	ds := sample()

	// "Demographics.Gender" without the trailing dot also matches GenderRatio
	assert.Equal(t, []string{"Demographics.Gender.Male", "Demographics.Gender.Female", "Demographics.GenderRatio"},
		ds.ColumnsWithPrefix("Demographics.Gender"))
	assert.Equal(t, []string{"Demographics.Gender.Male", "Demographics.Gender.Female"},
		ds.ColumnsWithPrefix("Demographics.Gender."))
	assert.Empty(t, ds.ColumnsWithPrefix("demographics."))
}

func TestWherePreservesOrderAndDoesNotMutate(t *testing.T) {
	ds := sample()
	sub := ds.Where(func(i int) bool { return i != 1 })

	require.Equal(t, 2, sub.Len())
	assert.Equal(t, 3, ds.Len())
	v, _ := sub.Value(0, "Education.Major")
	assert.Equal(t, "Biology", v.Text())
	v, _ = sub.Value(1, "Education.Major")
	assert.True(t, v.IsMissing())
}

func TestWithColumn(t *testing.T) {
	ds := sample()
	out := ds.WithColumn("Double", func(i int) Value {
		v, _ := ds.Value(i, "Demographics.Gender.Female")
		return NewNumericValue(v.SumFloat() * 2)
	})

	assert.False(t, ds.HasColumn("Double"))
	require.True(t, out.HasColumn("Double"))
	floats, _ := out.Floats("Double")
	assert.Equal(t, []float64{8, 4, 0}, floats)
}

func TestSliceAndRecords(t *testing.T) {
	ds := sample()
	page := ds.Slice(1, 1)
	require.Equal(t, 1, page.Len())

	recs := page.Records()
	assert.Equal(t, "History", recs[0]["Education.Major"])
	assert.Nil(t, recs[0]["Demographics.Gender.Male"])

	assert.Equal(t, 0, ds.Slice(10, 5).Len())
	assert.Equal(t, 3, ds.Slice(0, 0).Len())
}
