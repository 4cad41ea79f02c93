package credits

import (
	"context"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/ledger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/metrics"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/outbox/payloads"
)

// Unlock grants businessID access to the project's contact details.
//
// The registry check, price, debit and record append run inside one
// Transact call, so two concurrent unlocks of the same project produce one
// record and one debit. A repeated unlock returns the original record with
// created=false and costs nothing.
func (s *service) Unlock(ctx context.Context, businessID, projectID uuid.UUID) (*ledger.UnlockRecord, bool, error) {
	ctx = s.logg.WithProjectID(s.logg.WithBusinessID(ctx, businessID.String()), projectID.String())

	if _, err := s.accounts.RequireBusiness(ctx, businessID); err != nil {
		return nil, false, err
	}
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			s.metrics.IncUnlock(metrics.OutcomeNotFound)
		} else {
			s.metrics.IncUnlock(metrics.OutcomeError)
		}
		return nil, false, err
	}

	var (
		record  ledger.UnlockRecord
		created bool
	)
	state, err := s.store.Transact(ctx, businessID, func(tx *ledger.Tx) error {
		if existing, ok := tx.FindUnlock(projectID); ok {
			record = existing
			return nil
		}

		price := project.Price()
		if err := tx.Debit(price, projectID.String()); err != nil {
			return err
		}
		record = ledger.UnlockRecord{
			ID:           uuid.New(),
			ProjectID:    projectID,
			CreditsSpent: price,
			UnlockedAt:   tx.Now(),
			Contact:      project.Snapshot(),
		}
		if err := tx.AppendUnlock(record); err != nil {
			return err
		}
		record.BusinessID = businessID
		created = true
		tx.Emit(enums.EventContactUnlocked, payloads.ContactUnlockedEvent{
			UnlockID:     record.ID,
			BusinessID:   businessID,
			ProjectID:    projectID,
			CreditsSpent: price,
			BalanceAfter: tx.Balance(),
			UnlockedAt:   record.UnlockedAt,
		})
		return nil
	})
	if err != nil {
		if details, ok := pkgerrors.Shortfall(err); ok {
			s.metrics.IncUnlock(metrics.OutcomeInsufficient)
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"required":  details.Required,
				"available": details.Available,
			})
			s.logg.Info(logCtx, "ledger.unlock.insufficient")
		} else {
			s.metrics.IncUnlock(metrics.OutcomeError)
		}
		return nil, false, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"unlock_id":     record.ID.String(),
		"credits_spent": record.CreditsSpent,
		"balance":       state.Balance,
	})
	if !created {
		s.metrics.IncUnlock(metrics.OutcomeReplayed)
		s.logg.Info(logCtx, "ledger.unlock.replayed")
		return &record, false, nil
	}
	s.metrics.IncUnlock(metrics.OutcomeCreated)
	s.metrics.AddDebited(record.CreditsSpent)
	s.logg.Info(logCtx, "ledger.unlock.created")
	return &record, true, nil
}
