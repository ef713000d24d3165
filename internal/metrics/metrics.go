// Package metrics holds the Prometheus collectors for the explorer. They are
// registered on the default registry and served by the ops router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gradscope"

var (
	// Dataset metrics
	DatasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_rows",
		Help:      "Rows in the normalized base dataset",
	})

	DatasetDroppedRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_dropped_rows",
		Help:      "Rows dropped by the last normalization because their total was zero",
	})

	DatasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dataset_loads_total",
		Help:      "Dataset load attempts",
	}, []string{"result"}) // "ok", "error"

	DatasetLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "dataset_load_seconds",
		Help:      "Time to read and normalize the dataset",
		Buckets:   prometheus.DefBuckets,
	})

	// Pipeline metrics
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Filter and aggregation runs",
	}, []string{"variant"})

	PipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_seconds",
		Help:      "Latency of one filter and aggregation run",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"variant"})

	FilteredRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "filtered_rows",
		Help:      "Rows remaining after filtering",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	FilterWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "filter_warnings_total",
		Help:      "Filters skipped with a recoverable warning",
	}, []string{"code", "dimension"})

	NoDataCharts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chart_no_data_total",
		Help:      "Charts returned without data",
	}, []string{"chart", "status"})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "API requests by route and status",
	}, []string{"method", "route", "status"})
)
