package salary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradscope/domain/dataset"
)

func medians(values ...float64) *dataset.Dataset {
	rows := make([]dataset.Row, len(values))
	for i, v := range values {
		rows[i] = dataset.Row{dataset.NewNumericValue(v)}
	}
	return dataset.New([]string{MedianColumn}, rows)
}

func TestMedianIgnoresZeroSalaries(t *testing.T) {
	m, ok := Median(medians(0, 50000, 60000, 0))
	require.True(t, ok)
	assert.Equal(t, 55000.0, m)
}

func TestMedianIgnoresMissing(t *testing.T) {
	m, ok := Median(medians(math.NaN(), 40000, 45000, 90000))
	require.True(t, ok)
	assert.Equal(t, 45000.0, m)
}

func TestMedianNotAvailable(t *testing.T) {
	tests := []struct {
		name string
		ds   *dataset.Dataset
	}{
		{"all zero", medians(0, 0)},
		{"all missing", medians(math.NaN())},
		{"no rows", medians()},
		{"column absent", dataset.New([]string{"Year"}, nil)},
		{"nil dataset", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Median(tt.ds)
			assert.False(t, ok)
			assert.Equal(t, NotAvailable, FormatMedian(m, ok))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$55,000", FormatMedian(55000, true))
	assert.Equal(t, "$1,234,568", FormatCurrency(1234567.6))
	assert.Equal(t, "$900", FormatCurrency(900))
}

func TestEstimate(t *testing.T) {
	assert.InDelta(t, 50000-0.67449*10000, Estimate(50000, 10000, Z25), 1e-9)
	assert.Equal(t, 50000.0, Estimate(50000, 10000, Z50))
	assert.True(t, math.IsNaN(Estimate(math.NaN(), 10000, Z90)))
	assert.True(t, math.IsNaN(Estimate(50000, math.NaN(), Z90)))
}

func TestZConstantsMatchNormalQuantiles(t *testing.T) {
	cases := map[float64]float64{0.25: Z25, 0.5: Z50, 0.75: Z75, 0.90: Z90, 0.95: Z95}
	for p, z := range cases {
		assert.InDelta(t, ZScore(p), z, 1e-5, "p=%v", p)
	}
}

func TestSummarize(t *testing.T) {
	ds := dataset.New(
		[]string{MedianColumn, "Salary.P75"},
		[]dataset.Row{
			{dataset.NewNumericValue(50000), dataset.NewNumericValue(60000)},
			{dataset.NewNumericValue(70000), dataset.NewNumericValue(80000)},
		},
	)
	s := Summarize(ds)

	require.NotNil(t, s.Median)
	assert.Equal(t, 60000.0, *s.Median)
	assert.Equal(t, "$60,000", s.Display)
	assert.Equal(t, map[string]float64{"Salary.P75": 70000}, s.Percentiles)

	empty := Summarize(medians(0))
	assert.Nil(t, empty.Median)
	assert.Equal(t, NotAvailable, empty.Display)
}
