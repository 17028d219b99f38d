// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the common labels (job, step, status, table) onto Prometheus
//     labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint (a batch job has nothing to scrape
//     once it exits).
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog, StatsD) without changes to the
// pipeline.
package prompush

import (
	"fmt"

	"lakeetl/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // "lake_step_total"
	stepDuration *prometheus.SummaryVec // "lake_step_duration_seconds"

	tableRows  *prometheus.CounterVec // "lake_table_rows_total"
	sourceRows *prometheus.CounterVec // "lake_source_rows_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name (usually the pipeline job).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "lakeetl"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key, so collectors carry only the
	// remaining dynamic labels.
	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lake_step_total",
			Help: "Total number of batch step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "lake_step_duration_seconds",
			Help:       "Duration of batch steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	tableRows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lake_table_rows_total",
			Help: "Rows materialized per output table for this run.",
		},
		[]string{"table"},
	)
	sourceRows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lake_source_rows_total",
			Help: "Raw records loaded per source family for this run.",
		},
		[]string{"family"},
	)

	for _, c := range []prometheus.Collector{stepCounter, stepDuration, tableRows, sourceRows} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		stepCounter:  stepCounter,
		stepDuration: stepDuration,
		tableRows:    tableRows,
		sourceRows:   sourceRows,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "lake_step_total":
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case "lake_table_rows_total":
		b.tableRows.WithLabelValues(labels["table"]).Add(delta)

	case "lake_source_rows_total":
		b.sourceRows.WithLabelValues(labels["family"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "lake_step_duration_seconds" {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
