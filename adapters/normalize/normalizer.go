package normalize

import (
	"fmt"
	"sort"
	"time"

	"gradscope/domain/dataset"
	"gradscope/internal"
	"gradscope/internal/salary"
)

// Config names the columns with special handling
type Config struct {
	// NonNumericColumns are kept as categorical text. YearColumn is listed here
	// too in the defaults; it is re-coerced to a nullable integer afterwards.
	NonNumericColumns []string       `json:"non_numeric_columns"`
	YearColumn        string         `json:"year_column"`
	TotalColumn       string         `json:"total_column"`
	MeanColumn        string         `json:"mean_column"`
	StdDevColumn      string         `json:"std_dev_column"`
	Coercion          CoercionConfig `json:"coercion"`
}

// DefaultConfig matches the recent graduates table
func DefaultConfig() Config {
	return Config{
		NonNumericColumns: []string{"Year", "Education.Major"},
		YearColumn:        "Year",
		TotalColumn:       "Demographics.Total",
		MeanColumn:        salary.MeanColumn,
		StdDevColumn:      salary.StdDevColumn,
		Coercion:          DefaultCoercionConfig(),
	}
}

// Report describes what normalization did to the raw table
type Report struct {
	RowsIn         int            `json:"rows_in"`
	RowsOut        int            `json:"rows_out"`
	ZeroTotalRows  int            `json:"zero_total_rows"`
	Unparseable    map[string]int `json:"unparseable,omitempty"`
	DerivedColumns []string       `json:"derived_columns,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
	DurationMs     int64          `json:"duration_ms"`
}

// Normalizer turns a RawTable into a typed Dataset
type Normalizer struct {
	config  Config
	coercer *TypeCoercer
	logger  *internal.Logger
}

// NewNormalizer creates a normalizer. A nil logger uses the default.
func NewNormalizer(config Config, logger *internal.Logger) *Normalizer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Normalizer{
		config:  config,
		coercer: NewTypeCoercer(config.Coercion),
		logger:  logger,
	}
}

// Coercer exposes the value coercer used by this normalizer
func (n *Normalizer) Coercer() *TypeCoercer {
	return n.coercer
}

// Normalize coerces every cell, drops zero-total strata and appends the
// salary percentile estimates. It never fails on bad cells; problems are
// counted in the report.
func (n *Normalizer) Normalize(raw *dataset.RawTable) (*dataset.Dataset, Report) {
	start := time.Now()
	report := Report{Unparseable: map[string]int{}}
	if raw == nil {
		report.Warnings = append(report.Warnings, "no table to normalize")
		return dataset.New(nil, nil), report
	}
	report.RowsIn = len(raw.Rows)

	nonNumeric := make(map[string]bool, len(n.config.NonNumericColumns))
	for _, c := range n.config.NonNumericColumns {
		nonNumeric[c] = true
	}

	totalIdx := raw.Column(n.config.TotalColumn)
	if n.config.TotalColumn != "" && totalIdx < 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("total column %q not found; zero-total strata were not dropped", n.config.TotalColumn))
	}

	rows := make([]dataset.Row, 0, len(raw.Rows))
	for _, rawRow := range raw.Rows {
		if totalIdx >= 0 && totalIdx < len(rawRow) {
			if total, ok := n.coercer.ParseNumeric(rawRow[totalIdx]); ok && total == 0 {
				report.ZeroTotalRows++
				continue
			}
		}

		row := make(dataset.Row, len(raw.Headers))
		for j, col := range raw.Headers {
			cell := ""
			if j < len(rawRow) {
				cell = rawRow[j]
			}
			row[j] = n.coerceCell(col, cell, nonNumeric, &report)
		}
		rows = append(rows, row)
	}

	ds := dataset.New(raw.Headers, rows)
	ds = n.addPercentiles(ds, &report)

	for col, count := range report.Unparseable {
		if count == 0 {
			delete(report.Unparseable, col)
		}
	}
	report.RowsOut = ds.Len()
	report.DurationMs = time.Since(start).Milliseconds()

	n.logger.Info("[Normalizer] %d rows in, %d out (%d zero-total dropped), %d columns with unparseable cells",
		report.RowsIn, report.RowsOut, report.ZeroTotalRows, len(report.Unparseable))
	for _, w := range report.Warnings {
		n.logger.Warn("[Normalizer] %s", w)
	}
	return ds, report
}

func (n *Normalizer) coerceCell(col, cell string, nonNumeric map[string]bool, report *Report) dataset.Value {
	var v dataset.Value
	switch {
	case col == n.config.YearColumn:
		v = n.coercer.Year(cell)
	case nonNumeric[col]:
		return n.coercer.Categorical(cell)
	default:
		v = n.coercer.Numeric(cell)
	}
	if v.IsMissing() && !n.coercer.isMissingToken(cell) {
		report.Unparseable[col]++
	}
	return v
}

// addPercentiles appends the z-score estimates. If either source column is
// absent the percentile columns are left out entirely.
func (n *Normalizer) addPercentiles(ds *dataset.Dataset, report *Report) *dataset.Dataset {
	var missing []string
	for _, c := range []string{n.config.MeanColumn, n.config.StdDevColumn} {
		if !ds.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("salary percentile columns omitted; missing %v", missing))
		return ds
	}

	mean, _ := ds.Floats(n.config.MeanColumn)
	std, _ := ds.Floats(n.config.StdDevColumn)
	for _, p := range salary.Percentiles {
		z := p.Z
		ds = ds.WithColumn(p.Column, func(i int) dataset.Value {
			return dataset.NewNumericValue(salary.Estimate(mean[i], std[i], z))
		})
		report.DerivedColumns = append(report.DerivedColumns, p.Column)
	}
	return ds
}
