package filtering

import (
	"fmt"
	"strconv"
	"strings"

	"gradscope/domain/dataset"
	"gradscope/domain/filter"
	"gradscope/internal"
	"gradscope/internal/errors"
)

// Warning is a recoverable problem met while filtering. The filter it names
// was skipped and every row passed it.
type Warning struct {
	Code      string           `json:"code"`
	Dimension filter.Dimension `json:"dimension"`
	Message   string           `json:"message"`
}

func (w Warning) Error() string {
	return w.Message
}

// Err converts the warning into an AppError carrying its code.
func (w Warning) Err() error {
	return errors.New(w.Code, w.Message)
}

// Result is the filtered row-set plus what happened on the way
type Result struct {
	Rows     *dataset.Dataset   `json:"-"`
	Applied  []filter.Dimension `json:"applied"`
	Skipped  []filter.Dimension `json:"skipped,omitempty"`
	Warnings []Warning          `json:"warnings,omitempty"`
}

// Predicate is a pass/fail test for the row at index i of the dataset it was built for.
type Predicate func(i int) bool

// Engine applies the active predicates of a criteria snapshot in a fixed order.
type Engine struct {
	schema filter.Schema
	order  []filter.Dimension
	logger *internal.Logger
}

// NewEngine creates an engine. An empty order uses filter.DefaultOrder.
func NewEngine(schema filter.Schema, order []filter.Dimension, logger *internal.Logger) *Engine {
	if len(order) == 0 {
		order = filter.DefaultOrder
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{schema: schema, order: append([]filter.Dimension(nil), order...), logger: logger}
}

// Order returns the dimensions this engine filters on, in application order
func (e *Engine) Order() []filter.Dimension {
	return append([]filter.Dimension(nil), e.order...)
}

// Apply filters ds by every active dimension of c. Predicates compose by
// AND and row order is preserved. A predicate that cannot be built (missing
// column, malformed year) is skipped with a warning; Apply never fails.
func (e *Engine) Apply(ds *dataset.Dataset, c filter.Criteria) Result {
	return e.apply(ds, c, e.order)
}

// Narrow implements filter.Narrower: it applies only the listed dimensions
// and discards warnings.
func (e *Engine) Narrow(ds *dataset.Dataset, c filter.Criteria, dims []filter.Dimension) *dataset.Dataset {
	return e.apply(ds, c, dims).Rows
}

func (e *Engine) apply(ds *dataset.Dataset, c filter.Criteria, dims []filter.Dimension) Result {
	res := Result{Rows: ds}
	for _, dim := range dims {
		if !c.Active(dim) {
			continue
		}
		keep, warn := e.Predicate(res.Rows, c, dim)
		if warn != nil {
			e.logger.Warn("[Filter] %s filter skipped: %s", dim, warn.Message)
			res.Warnings = append(res.Warnings, *warn)
			res.Skipped = append(res.Skipped, dim)
			continue
		}
		before := res.Rows.Len()
		res.Rows = res.Rows.Where(keep)
		res.Applied = append(res.Applied, dim)
		e.logger.Debug("[Filter] %s: %d -> %d rows", dim, before, res.Rows.Len())
	}
	return res
}

// Predicate builds the test for one dimension against ds. It returns a
// warning instead of a predicate when the filter cannot be applied.
func (e *Engine) Predicate(ds *dataset.Dataset, c filter.Criteria, dim filter.Dimension) (Predicate, *Warning) {
	switch dim {
	case filter.DimensionMajor:
		return e.majorPredicate(ds, c)
	case filter.DimensionYear:
		return e.yearPredicate(ds, c)
	case filter.DimensionDegree, filter.DimensionGender, filter.DimensionEmployment:
		return e.presencePredicate(ds, dim, c.Selection(dim))
	}
	return nil, &Warning{
		Code:      errors.CodeInvalidFilter,
		Dimension: dim,
		Message:   fmt.Sprintf("unknown filter dimension %q", dim),
	}
}

func (e *Engine) majorPredicate(ds *dataset.Dataset, c filter.Criteria) (Predicate, *Warning) {
	col := e.schema.MajorColumn
	values, ok := ds.ColumnValues(col)
	if !ok {
		return nil, &Warning{
			Code:      errors.CodeMissingColumn,
			Dimension: filter.DimensionMajor,
			Message:   fmt.Sprintf("Major column %s not found in dataset. Showing all rows.", col),
		}
	}
	selected := make(map[string]struct{}, len(c.Majors))
	for _, m := range c.Majors {
		selected[m] = struct{}{}
	}
	return func(i int) bool {
		// missing majors compare as ""
		_, in := selected[values[i].Text()]
		return in
	}, nil
}

func (e *Engine) yearPredicate(ds *dataset.Dataset, c filter.Criteria) (Predicate, *Warning) {
	invalid := func(msg string) (Predicate, *Warning) {
		return nil, &Warning{Code: errors.CodeInvalidFilter, Dimension: filter.DimensionYear, Message: msg}
	}

	start, err := strconv.ParseInt(strings.TrimSpace(c.StartYear), 10, 64)
	if err != nil {
		return invalid(fmt.Sprintf("Could not apply year filter: start year %q is not a year.", c.StartYear))
	}
	lo, hi := start, start
	if end := strings.TrimSpace(c.EndYear); end != "" {
		endYear, err := strconv.ParseInt(end, 10, 64)
		if err != nil {
			return invalid(fmt.Sprintf("Could not apply year filter: end year %q is not a year.", c.EndYear))
		}
		lo, hi = min(start, endYear), max(start, endYear)
	}

	values, ok := ds.ColumnValues(e.schema.YearColumn)
	if !ok {
		return nil, &Warning{
			Code:      errors.CodeMissingColumn,
			Dimension: filter.DimensionYear,
			Message:   fmt.Sprintf("Year column %s not found in dataset. Showing all rows.", e.schema.YearColumn),
		}
	}
	return func(i int) bool {
		y, ok := filter.YearOf(values[i])
		return ok && y >= lo && y <= hi
	}, nil
}

// presencePredicate keeps rows whose count column for the selected label is > 0.
func (e *Engine) presencePredicate(ds *dataset.Dataset, dim filter.Dimension, label string) (Predicate, *Warning) {
	prefix, _ := e.schema.PrefixFor(dim)
	col := prefix + strings.TrimSpace(label)
	values, ok := ds.ColumnValues(col)
	if !ok {
		return nil, &Warning{
			Code:      errors.CodeMissingColumn,
			Dimension: dim,
			Message:   fmt.Sprintf("Column %s not found in dataset; %s filter ignored. Showing all rows.", col, dim),
		}
	}
	return func(i int) bool {
		f, ok := values[i].Float()
		return ok && f > 0
	}, nil
}
