// Package datadog implements a DogStatsD backend for the metrics package.
//
// Prometheus-style snake_case metric names are rewritten into Datadog's
// dotted convention ("lake_step_total" becomes "lake.step.total") and
// labels become tags of the form "key:value". Everything else is delegated
// to the official statsd client, which buffers and flushes to a local or
// remote Datadog agent.
package datadog

import (
	"fmt"
	"strings"

	"lakeetl/internal/metrics"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// Config holds DogStatsD backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///path/to/socket".
	Addr string

	// GlobalTags are applied to every metric this backend emits,
	// e.g. []string{"env:prod","service:lakeetl"}.
	GlobalTags []string
}

// Backend forwards counter and histogram observations to a Datadog agent.
// One instance is installed process-wide via metrics.SetBackend.
type Backend struct {
	client *statsd.Client
}

// NewBackend constructs a DogStatsD backend. Addr is required.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	var opts []statsd.Option
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	// DogStatsD counts are integral; the recorded deltas are row counts
	// and step increments, so truncation never loses anything.
	b.client.Count(dotName(name), int64(delta), labelsToTags(labels), 1)
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	b.client.Histogram(dotName(name), value, labelsToTags(labels), 1)
}

// Flush drains buffered samples. Close is the statsd client's flush point
// and this backend is only flushed once, at process shutdown.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// dotName maps "lake_step_total" to "lake.step.total".
func dotName(name string) string {
	return strings.ReplaceAll(name, "_", ".")
}

// labelsToTags converts labels into Datadog "key:value" tags.
func labelsToTags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		out = append(out, k+":"+v)
	}
	return out
}
