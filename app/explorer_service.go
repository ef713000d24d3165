package app

import (
	"context"
	"fmt"
	"time"

	"gradscope/domain/dataset"
	"gradscope/domain/drilldown"
	"gradscope/domain/filter"
	"gradscope/internal"
	"gradscope/internal/aggregate"
	"gradscope/internal/datastore"
	"gradscope/internal/errors"
	"gradscope/internal/filtering"
	"gradscope/internal/metrics"
	"gradscope/internal/salary"
)

// SnapshotProvider hands out the current base dataset
type SnapshotProvider interface {
	Current() (*datastore.Snapshot, error)
}

// Chart prefixes of the graduates table
const (
	EthnicityPrefix = "Demographics.Ethnicity."
	GenderPrefix    = "Demographics.Gender."
	DegreePrefix    = "Education.Degrees."
)

// ExplorerRequest is one interaction: the widget state, the selection the
// caller kept from the previous run and an optional chart click.
type ExplorerRequest struct {
	Variant   string              `json:"variant"`
	Criteria  filter.Criteria     `json:"criteria"`
	Selection drilldown.Selection `json:"selection"`
	Event     *drilldown.Event    `json:"event,omitempty"`
}

// Charts groups the breakdowns of one run. A nil chart is not shown by the
// variant.
type Charts struct {
	Employment *aggregate.Breakdown  `json:"employment,omitempty"`
	Ethnicity  *aggregate.Breakdown  `json:"ethnicity,omitempty"`
	Gender     *aggregate.Breakdown  `json:"gender,omitempty"`
	Degree     *aggregate.Breakdown  `json:"degree,omitempty"`
	Reasons    *aggregate.Breakdown  `json:"unemployment_reasons,omitempty"`
	DrillDown  []aggregate.Breakdown `json:"drill_down,omitempty"`
}

// ExplorerView is everything the rendering layer needs for one run
type ExplorerView struct {
	Variant      Variant             `json:"variant"`
	SnapshotID   string              `json:"snapshot_id"`
	Criteria     filter.Criteria     `json:"criteria"`
	Options      filter.Options      `json:"options"`
	MajorsLabel  string              `json:"majors_label"`
	RowCount     int                 `json:"row_count"`
	BaseRowCount int                 `json:"base_row_count"`
	Applied      []filter.Dimension  `json:"applied"`
	Warnings     []filtering.Warning `json:"warnings,omitempty"`
	Charts       Charts              `json:"charts"`
	Salary       *salary.Summary     `json:"salary,omitempty"`
	Selection    drilldown.Selection `json:"selection"`
	Context      string              `json:"context"`
	DurationMs   float64             `json:"duration_ms"`

	Rows *dataset.Dataset `json:"-"`
}

// ExplorerService runs the filter and aggregation pipeline. It is stateless
// between calls; the drill-down selection travels in the request and view.
type ExplorerService struct {
	store    SnapshotProvider
	variants *VariantRegistry
	schema   filter.Schema
	table    drilldown.Table
	policy   filter.Policy
	logger   *internal.Logger
}

// ExplorerOption customises an ExplorerService
type ExplorerOption func(*ExplorerService)

// WithPolicy overrides every variant's option policy
func WithPolicy(p filter.Policy) ExplorerOption {
	return func(s *ExplorerService) { s.policy = p }
}

// WithSchema replaces the default column schema
func WithSchema(schema filter.Schema) ExplorerOption {
	return func(s *ExplorerService) { s.schema = schema }
}

// WithDrillDownTable replaces the default drill-down lookup
func WithDrillDownTable(t drilldown.Table) ExplorerOption {
	return func(s *ExplorerService) { s.table = t }
}

// NewExplorerService creates the service
func NewExplorerService(store SnapshotProvider, variants *VariantRegistry, logger *internal.Logger, opts ...ExplorerOption) *ExplorerService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &ExplorerService{
		store:    store,
		variants: variants,
		schema:   filter.DefaultSchema(),
		table:    drilldown.DefaultTable(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Variants lists the configured variants
func (s *ExplorerService) Variants() []Variant {
	return s.variants.List()
}

// DefaultVariant names the variant used when a request names none
func (s *ExplorerService) DefaultVariant() string {
	return s.variants.Default()
}

// Run executes one interaction cycle: filter the base dataset, rebuild option
// lists, advance the drill-down state and compute every chart the variant
// shows. Only a missing dataset is an error; everything else degrades to
// warnings and no-data charts.
func (s *ExplorerService) Run(ctx context.Context, req ExplorerRequest) (*ExplorerView, error) {
	start := time.Now()
	prep, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	variant, criteria, rows := prep.variant, prep.criteria, prep.result.Rows

	view := &ExplorerView{
		Variant:      variant,
		SnapshotID:   prep.snapshot.ID.String(),
		Criteria:     criteria,
		Options:      prep.options,
		MajorsLabel:  criteria.MajorsLabel(),
		RowCount:     rows.Len(),
		BaseRowCount: prep.snapshot.Data.Len(),
		Applied:      prep.result.Applied,
		Warnings:     prep.warnings,
		Context:      prep.context,
		Rows:         rows,
	}

	charts := []struct {
		id  ChartID
		dst **aggregate.Breakdown
		fn  func(*dataset.Dataset) aggregate.Breakdown
	}{
		{ChartEmployment, &view.Charts.Employment, aggregate.EmploymentStatus},
		{ChartEthnicity, &view.Charts.Ethnicity, groupChart("Ethnicity", EthnicityPrefix)},
		{ChartGender, &view.Charts.Gender, groupChart("Gender", GenderPrefix)},
		{ChartDegree, &view.Charts.Degree, groupChart("Degree type", DegreePrefix)},
		{ChartReasons, &view.Charts.Reasons, aggregate.UnemploymentReasons},
	}
	for _, c := range charts {
		if !variant.Shows(c.id) {
			continue
		}
		b := c.fn(rows)
		s.observeChart(string(c.id), b)
		*c.dst = &b
	}

	if variant.Shows(ChartSalary) {
		summary := salary.Summarize(rows)
		view.Salary = &summary
	}

	if variant.DrillDown {
		view.Selection = s.table.Apply(req.Selection, req.Event, prep.context)
		view.Charts.DrillDown = s.drillDown(rows, view.Selection)
	}

	elapsed := time.Since(start)
	view.DurationMs = float64(elapsed.Microseconds()) / 1000
	metrics.PipelineRuns.WithLabelValues(variant.Name).Inc()
	metrics.PipelineDuration.WithLabelValues(variant.Name).Observe(elapsed.Seconds())
	metrics.FilteredRows.Observe(float64(rows.Len()))

	s.logger.Debug("[Explorer] %s: %d of %d rows, %d warnings, selection=%q in %s",
		variant.Name, view.RowCount, view.BaseRowCount, len(view.Warnings), view.Selection.Status, elapsed)
	return view, nil
}

// Filter returns only the filtered row-set, for tables and exports.
func (s *ExplorerService) Filter(ctx context.Context, req ExplorerRequest) (*filtering.Result, error) {
	prep, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	res := prep.result
	res.Warnings = prep.warnings
	return &res, nil
}

// Options computes the option lists without running the aggregations.
func (s *ExplorerService) Options(ctx context.Context, variantName string, c filter.Criteria) (filter.Options, error) {
	prep, err := s.prepare(ctx, ExplorerRequest{Variant: variantName, Criteria: c})
	if err != nil {
		return filter.Options{}, err
	}
	return prep.options, nil
}

type prepared struct {
	snapshot *datastore.Snapshot
	variant  Variant
	criteria filter.Criteria
	result   filtering.Result
	options  filter.Options
	warnings []filtering.Warning
	context  string
}

func (s *ExplorerService) prepare(ctx context.Context, req ExplorerRequest) (*prepared, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := s.store.Current()
	if err != nil {
		return nil, errors.Wrap(err, "dataset not loaded")
	}

	var warnings []filtering.Warning
	variant, ok := s.variants.Lookup(req.Variant)
	if !ok {
		w := filtering.Warning{
			Code:    errors.CodeInvalidInput,
			Message: fmt.Sprintf("Unknown dashboard variant %q; showing %s.", req.Variant, variant.Name),
		}
		s.logger.Warn("[Explorer] %s", w.Message)
		warnings = append(warnings, w)
	}

	policy := variant.Policy
	if s.policy != "" {
		policy = s.policy
	}

	criteria := req.Criteria.Restrict(variant.Dimensions)
	engine := filtering.NewEngine(s.schema, variant.Dimensions, s.logger)
	result := engine.Apply(snap.Data, criteria)
	warnings = append(warnings, result.Warnings...)
	for _, w := range result.Warnings {
		metrics.FilterWarnings.WithLabelValues(w.Code, string(w.Dimension)).Inc()
	}

	options := filter.NewOptionBuilder(s.schema, policy, engine).Build(snap.Data, criteria, variant.Dimensions)

	return &prepared{
		snapshot: snap,
		variant:  variant,
		criteria: criteria,
		result:   result,
		options:  options,
		warnings: warnings,
		context:  variant.Name + ":" + criteria.Fingerprint().Short(),
	}, nil
}

func (s *ExplorerService) drillDown(rows *dataset.Dataset, sel drilldown.Selection) []aggregate.Breakdown {
	specs := s.table.Charts(sel)
	if len(specs) == 0 {
		return nil
	}
	out := make([]aggregate.Breakdown, 0, len(specs))
	for _, spec := range specs {
		var b aggregate.Breakdown
		switch spec.Kind {
		case drilldown.KindFieldAlignment:
			b = aggregate.FieldAlignment(rows)
		default:
			b = aggregate.Group(rows, spec.Title, spec.Prefix)
		}
		s.observeChart("drill_down", b)
		out = append(out, b)
	}
	return out
}

func (s *ExplorerService) observeChart(chart string, b aggregate.Breakdown) {
	if b.OK() {
		return
	}
	metrics.NoDataCharts.WithLabelValues(chart, string(b.Status)).Inc()
	s.logger.Debug("[Explorer] %s chart: %s", chart, b.Message)
}

func groupChart(title, prefix string) func(*dataset.Dataset) aggregate.Breakdown {
	return func(ds *dataset.Dataset) aggregate.Breakdown {
		return aggregate.Group(ds, title, prefix)
	}
}
