// Package salary derives salary statistics from graduate strata.
//
// Percentile columns are estimated from each stratum's mean and standard
// deviation under a normal approximation: p_k = mean + z_k * std. Salaries are
// usually right-skewed, so the upper cutoffs understate reality; treat them
// as indicative, not exact.
package salary

import (
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"

	"gradscope/domain/dataset"
)

// Source columns
const (
	MedianColumn = "Salaries.Median"
	MeanColumn   = "Salaries.Mean"
	StdDevColumn = "Salaries.Standard Deviation"
)

// Inverse normal CDF values, rounded to five places.
const (
	Z25 = -0.67449
	Z50 = 0.0
	Z75 = 0.67449
	Z90 = 1.28155
	Z95 = 1.64485
)

// NotAvailable is shown when no median salary can be computed.
const NotAvailable = "Median salary not available for the selection."

// Percentile names a derived column and the z-score it is computed with.
type Percentile struct {
	Column string  `json:"column"`
	Label  string  `json:"label"`
	Z      float64 `json:"z"`
}

// Percentiles are the derived columns added by the normalizer, lowest first.
var Percentiles = []Percentile{
	{Column: "Salary.P25", Label: "25th percentile", Z: Z25},
	{Column: "Salary.P50", Label: "50th percentile", Z: Z50},
	{Column: "Salary.P75", Label: "75th percentile", Z: Z75},
	{Column: "Salary.Top10.Cutoff", Label: "Top 10% cutoff", Z: Z90},
	{Column: "Salary.Top5.Cutoff", Label: "Top 5% cutoff", Z: Z95},
}

// Estimate returns mean + z*std. Any non-finite input yields NaN.
func Estimate(mean, std, z float64) float64 {
	if math.IsNaN(mean) || math.IsNaN(std) || math.IsInf(mean, 0) || math.IsInf(std, 0) {
		return math.NaN()
	}
	return mean + z*std
}

// ZScore returns the standard normal quantile for p in (0,1), for callers
// that want a percentile outside the fixed table.
func ZScore(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// Median is the median of per-stratum medians. Zero salaries mean "not
// reported" and are dropped along with missing cells. The result is not
// weighted by stratum size.
func Median(ds *dataset.Dataset) (float64, bool) {
	return MedianOf(ds, MedianColumn)
}

// MedianOf computes the same statistic over any salary column.
func MedianOf(ds *dataset.Dataset, column string) (float64, bool) {
	if ds == nil {
		return math.NaN(), false
	}
	values, ok := ds.Floats(column)
	if !ok {
		return math.NaN(), false
	}

	reported := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
			continue
		}
		reported = append(reported, v)
	}

	m, err := stats.Median(reported)
	if err != nil || math.IsNaN(m) || math.IsInf(m, 0) {
		return math.NaN(), false
	}
	return m, true
}

var printer = message.NewPrinter(language.English)

// FormatMedian renders a median as "$55,000", or the not-available sentinel.
func FormatMedian(v float64, ok bool) string {
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return FormatCurrency(v)
}

// FormatCurrency renders whole dollars with thousands separators.
func FormatCurrency(v float64) string {
	return printer.Sprintf("$%d", int64(math.Round(v)))
}

// Summary is the salary block shown next to the employment chart.
type Summary struct {
	Median      *float64           `json:"median,omitempty"`
	Display     string             `json:"display"`
	Percentiles map[string]float64 `json:"percentiles,omitempty"`
}

// Summarize computes the median and, when the derived columns are present,
// the median of each percentile estimate across the row-set.
func Summarize(ds *dataset.Dataset) Summary {
	m, ok := Median(ds)
	s := Summary{Display: FormatMedian(m, ok)}
	if ok {
		s.Median = &m
	}

	for _, p := range Percentiles {
		if ds == nil || !ds.HasColumn(p.Column) {
			continue
		}
		if v, ok := MedianOf(ds, p.Column); ok {
			if s.Percentiles == nil {
				s.Percentiles = make(map[string]float64, len(Percentiles))
			}
			s.Percentiles[p.Column] = v
		}
	}
	return s
}
