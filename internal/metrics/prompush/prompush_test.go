// Package prompush tests exercise the Pushgateway backend against an
// in-memory registry and an httptest Pushgateway stand-in.
package prompush

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lakeetl/internal/metrics"

	dto "github.com/prometheus/client_model/go"
)

// gatherMetric finds a metric family by name and returns its samples.
func gatherMetric(t *testing.T, b *Backend, name string) []*dto.Metric {
	t.Helper()

	fams, err := b.reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range fams {
		if f.GetName() == name {
			return f.GetMetric()
		}
	}
	return nil
}

// labelValue pulls a label's value out of a gathered metric sample.
func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{
			name:        "full config",
			jobName:     "sparkify",
			gatewayURL:  "http://pushgateway:9091",
			wantJobName: "sparkify",
		},
		{
			name:        "empty job name falls back to default",
			jobName:     "",
			gatewayURL:  "http://pushgateway:9091",
			wantJobName: "lakeetl",
		},
		{
			name:       "missing gateway URL",
			jobName:    "sparkify",
			gatewayURL: "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewBackend() error = nil; want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewBackend() error = %v", err)
			}
			if b.jobName != tt.wantJobName {
				t.Errorf("jobName = %q; want %q", b.jobName, tt.wantJobName)
			}
			if b.gatewayURL != tt.gatewayURL {
				t.Errorf("gatewayURL = %q; want %q", b.gatewayURL, tt.gatewayURL)
			}
			if b.reg == nil {
				t.Errorf("registry not initialized")
			}
		})
	}
}

func TestIncCounterRouting(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("job", "http://localhost:9091")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.IncCounter("lake_step_total", 1, metrics.Labels{"step": "read_catalog", "status": "success"})
	b.IncCounter("lake_step_total", 1, metrics.Labels{"step": "read_catalog", "status": "success"})
	b.IncCounter("lake_table_rows_total", 42, metrics.Labels{"table": "songs"})
	b.IncCounter("lake_source_rows_total", 7, metrics.Labels{"family": "log_data"})
	b.IncCounter("unknown_metric", 99, nil) // silently ignored

	steps := gatherMetric(t, b, "lake_step_total")
	if len(steps) != 1 {
		t.Fatalf("lake_step_total samples = %d; want 1", len(steps))
	}
	if got := steps[0].GetCounter().GetValue(); got != 2 {
		t.Errorf("lake_step_total = %v; want 2", got)
	}
	if got := labelValue(steps[0], "step"); got != "read_catalog" {
		t.Errorf("step label = %q; want read_catalog", got)
	}

	rows := gatherMetric(t, b, "lake_table_rows_total")
	if len(rows) != 1 || rows[0].GetCounter().GetValue() != 42 {
		t.Fatalf("lake_table_rows_total = %v; want one sample of 42", rows)
	}
	if got := labelValue(rows[0], "table"); got != "songs" {
		t.Errorf("table label = %q; want songs", got)
	}

	src := gatherMetric(t, b, "lake_source_rows_total")
	if len(src) != 1 || src[0].GetCounter().GetValue() != 7 {
		t.Fatalf("lake_source_rows_total = %v; want one sample of 7", src)
	}
	if got := labelValue(src[0], "family"); got != "log_data" {
		t.Errorf("family label = %q; want log_data", got)
	}
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("job", "http://localhost:9091")
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}

	b.ObserveHistogram("lake_step_duration_seconds", 1.5, metrics.Labels{"step": "write_songs", "status": "success"})
	b.ObserveHistogram("lake_step_duration_seconds", 2.5, metrics.Labels{"step": "write_songs", "status": "success"})
	b.ObserveHistogram("some_other_metric", 9.0, nil) // ignored

	samples := gatherMetric(t, b, "lake_step_duration_seconds")
	if len(samples) != 1 {
		t.Fatalf("lake_step_duration_seconds samples = %d; want 1", len(samples))
	}
	sum := samples[0].GetSummary()
	if sum == nil {
		t.Fatalf("metric did not contain Summary value")
	}
	if got := sum.GetSampleCount(); got != 2 {
		t.Errorf("sample count = %d; want 2", got)
	}
	if got := sum.GetSampleSum(); got < 4.0-0.001 || got > 4.0+0.001 {
		t.Errorf("sample sum = %v; want ~4.0", got)
	}
}

func TestFlushPushesToGateway(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b, err := NewBackend("sparkify", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	b.IncCounter("lake_step_total", 1, metrics.Labels{"step": "read_catalog", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if gotPath != "/metrics/job/sparkify" {
		t.Errorf("push path = %q; want /metrics/job/sparkify", gotPath)
	}
}

func TestFlushGatewayError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, err := NewBackend("sparkify", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend() error = %v", err)
	}
	if err := b.Flush(); err == nil {
		t.Fatalf("Flush() error = nil; want error from gateway")
	}
}
