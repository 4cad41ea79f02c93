package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/ledger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/metrics"
)

const (
	defaultAuditBatchSize = 200

	checkNegativeBalance = "negative_balance"
	checkJournalSum      = "journal_sum"
	checkUnlockEntries   = "unlock_entries"
)

// LedgerAuditJobParams configures the ledger consistency audit.
type LedgerAuditJobParams struct {
	Logger    *logger.Logger
	Auditor   ledger.Auditor
	Metrics   *metrics.LedgerMetrics
	BatchSize int
}

// NewLedgerAuditJob builds a job that cross-checks every stored account
// against its journal: the balance is never negative, the journal sums to the
// balance and every unlock record is backed by exactly one matching debit.
func NewLedgerAuditJob(params LedgerAuditJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Auditor == nil {
		return nil, fmt.Errorf("ledger auditor required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultAuditBatchSize
	}
	return &ledgerAuditJob{
		logg:    params.Logger,
		auditor: params.Auditor,
		metrics: params.Metrics,
		batch:   batch,
	}, nil
}

type ledgerAuditJob struct {
	logg    *logger.Logger
	auditor ledger.Auditor
	metrics *metrics.LedgerMetrics
	batch   int
}

func (j *ledgerAuditJob) Name() string { return "ledger-audit" }

func (j *ledgerAuditJob) Run(ctx context.Context) error {
	var (
		after    uuid.UUID
		checked  int
		problems error
	)
	for {
		states, err := j.auditor.ListStates(ctx, after, j.batch)
		if err != nil {
			return fmt.Errorf("list account states: %w", err)
		}
		for _, state := range states {
			entries, err := j.auditor.EntriesFor(ctx, state.BusinessID)
			if err != nil {
				return fmt.Errorf("load journal for %s: %w", state.BusinessID, err)
			}
			for _, v := range auditAccount(state, entries) {
				j.metrics.IncAuditViolation(v.check)
				logCtx := j.logg.WithFields(j.logg.WithBusinessID(ctx, state.BusinessID.String()), map[string]any{
					"check": v.check,
				})
				j.logg.Warn(logCtx, v.Error())
				problems = multierr.Append(problems, v)
			}
			checked++
		}
		if len(states) < j.batch {
			break
		}
		after = states[len(states)-1].BusinessID
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"accounts_checked": checked,
		"violations":       len(multierr.Errors(problems)),
	})
	j.logg.Info(logCtx, "ledger audit complete")
	return problems
}

type violation struct {
	check      string
	businessID uuid.UUID
	detail     string
}

func (v violation) Error() string {
	return fmt.Sprintf("ledger audit %s failed for %s: %s", v.check, v.businessID, v.detail)
}

func auditAccount(state *ledger.State, entries []ledger.Entry) []violation {
	var out []violation
	add := func(check, format string, args ...any) {
		out = append(out, violation{check: check, businessID: state.BusinessID, detail: fmt.Sprintf(format, args...)})
	}

	if state.Balance < 0 {
		add(checkNegativeBalance, "balance is %d", state.Balance)
	}

	var sum int64
	debits := make(map[string][]ledger.Entry)
	for _, e := range entries {
		sum += e.Amount
		if e.Type == enums.LedgerEntryUnlock {
			debits[e.Reference] = append(debits[e.Reference], e)
		}
	}
	if sum != state.Balance {
		add(checkJournalSum, "journal sums to %d but balance is %d", sum, state.Balance)
	}

	seen := make(map[string]struct{}, len(state.Unlocks))
	for _, record := range state.Unlocks {
		ref := record.ProjectID.String()
		seen[ref] = struct{}{}
		matched := debits[ref]
		switch {
		case len(matched) != 1:
			add(checkUnlockEntries, "project %s has %d unlock debits", ref, len(matched))
		case -matched[0].Amount != record.CreditsSpent:
			add(checkUnlockEntries, "project %s debited %d but record says %d", ref, -matched[0].Amount, record.CreditsSpent)
		}
	}
	for ref := range debits {
		if _, ok := seen[ref]; !ok {
			add(checkUnlockEntries, "debit for project %s has no unlock record", ref)
		}
	}
	return out
}
