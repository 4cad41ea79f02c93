package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestLedgerMetricsCountsOutcomesAndCredits(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.IncUnlock(OutcomeCreated)
	m.IncUnlock(OutcomeCreated)
	m.IncUnlock(OutcomeReplayed)
	m.AddDebited(4)
	m.AddDebited(-1)
	m.AddCredited("purchase", 115)
	m.ObserveTransact(20*time.Millisecond, nil)
	m.ObserveTransact(5*time.Millisecond, errors.New("boom"))
	m.IncAuditViolation("journal_sum")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "ledger_unlocks_total", "outcome", OutcomeCreated); err != nil || got != 2 {
		t.Fatalf("expected created=2, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "ledger_unlocks_total", "outcome", OutcomeReplayed); err != nil || got != 1 {
		t.Fatalf("expected replayed=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "ledger_credits_credited_total", "source", "purchase"); err != nil || got != 115 {
		t.Fatalf("expected credited=115, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "ledger_audit_violations_total", "check", "journal_sum"); err != nil || got != 1 {
		t.Fatalf("expected one audit violation, got %f err=%v", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "ledger_transact_duration_seconds", "result", "error"); err != nil || got <= 0 {
		t.Fatalf("expected error duration recorded, got %f err=%v", got, err)
	}

	debited := findMetricFamily(mfs, "ledger_credits_debited_total")
	if debited == nil || debited.GetMetric()[0].GetCounter().GetValue() != 4 {
		t.Fatalf("expected debited=4")
	}
}

func TestLedgerMetricsNilSafe(t *testing.T) {
	var m *LedgerMetrics
	m.IncUnlock(OutcomeCreated)
	m.AddDebited(1)
	NewLedgerMetrics(nil).AddCredited("purchase", 1)
}
