package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Unlock outcomes reported by the unlock engine.
const (
	OutcomeCreated      = "created"
	OutcomeReplayed     = "replayed"
	OutcomeInsufficient = "insufficient"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// LedgerMetrics tracks credit movements and unlock outcomes.
type LedgerMetrics struct {
	unlocks     *prometheus.CounterVec
	debited     prometheus.Counter
	credited    *prometheus.CounterVec
	transact    *prometheus.HistogramVec
	auditIssues *prometheus.CounterVec
}

func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	m := &LedgerMetrics{
		unlocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_unlocks_total",
			Help: "Contact unlock attempts by outcome.",
		}, []string{"outcome"}),
		debited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_credits_debited_total",
			Help: "Credits spent on contact unlocks.",
		}),
		credited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_credits_credited_total",
			Help: "Credits added to balances by source.",
		}, []string{"source"}),
		transact: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_transact_duration_seconds",
			Help:    "Duration of account state transactions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"result"}),
		auditIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_audit_violations_total",
			Help: "Ledger audit violations by check.",
		}, []string{"check"}),
	}
	reg.MustRegister(m.unlocks, m.debited, m.credited, m.transact, m.auditIssues)
	return m
}

func (m *LedgerMetrics) IncUnlock(outcome string) {
	if m == nil || m.unlocks == nil {
		return
	}
	m.unlocks.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *LedgerMetrics) AddDebited(credits int64) {
	if m == nil || m.debited == nil || credits <= 0 {
		return
	}
	m.debited.Add(float64(credits))
}

func (m *LedgerMetrics) AddCredited(source string, credits int64) {
	if m == nil || m.credited == nil || credits <= 0 {
		return
	}
	m.credited.WithLabelValues(normalizeLabel(source)).Add(float64(credits))
}

func (m *LedgerMetrics) ObserveTransact(duration time.Duration, err error) {
	if m == nil || m.transact == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.transact.WithLabelValues(result).Observe(duration.Seconds())
}

func (m *LedgerMetrics) IncAuditViolation(check string) {
	if m == nil || m.auditIssues == nil {
		return
	}
	m.auditIssues.WithLabelValues(normalizeLabel(check)).Inc()
}
