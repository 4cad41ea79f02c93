package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsRecordsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	m.ObserveRun("ledger_audit", nil, 250*time.Millisecond)
	m.ObserveRun("ledger_audit", errors.New("violations"), time.Second)
	m.IncSkipped("outbox_retention")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	runs := findMetricFamily(mfs, "handwerk_cron_runs_total")
	if runs == nil {
		t.Fatal("runs counter not exported")
	}
	want := map[string]float64{
		"ledger_audit/success":     1,
		"ledger_audit/failure":     1,
		"outbox_retention/skipped": 1,
	}
	for _, metric := range runs.GetMetric() {
		key := labelValue(metric.GetLabel(), "job") + "/" + labelValue(metric.GetLabel(), "result")
		if metric.GetCounter().GetValue() != want[key] {
			t.Fatalf("unexpected count for %s: %v", key, metric.GetCounter().GetValue())
		}
		delete(want, key)
	}
	if len(want) != 0 {
		t.Fatalf("missing series: %v", want)
	}

	if got, err := fetchHistogramSum(mfs, "handwerk_cron_run_duration_seconds", "job", "ledger_audit"); err != nil || got < 1.25 {
		t.Fatalf("expected duration sum >= 1.25, got %v err=%v", got, err)
	}
	last := findMetricFamily(mfs, "handwerk_cron_last_success_timestamp_seconds")
	if last == nil || len(last.GetMetric()) != 1 || last.GetMetric()[0].GetGauge().GetValue() <= 0 {
		t.Fatal("expected one last-success timestamp for ledger_audit")
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveRun("x", nil, time.Second)
	m.IncSkipped("x")
	NewCronJobMetrics(nil).ObserveRun("x", nil, time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if labelValue(metric.GetLabel(), label) == value {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if labelValue(metric.GetLabel(), label) == value {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func labelValue(labels []*dto.LabelPair, name string) string {
	for _, label := range labels {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}
