package ledger

import (
	"sort"

	"github.com/google/uuid"

	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
)

// FindUnlock returns the existing record for projectID, if any.
func (tx *Tx) FindUnlock(projectID uuid.UUID) (UnlockRecord, bool) {
	return tx.state.FindUnlock(projectID)
}

// AppendUnlock adds a record. A second record for the same project is refused.
func (tx *Tx) AppendUnlock(record UnlockRecord) error {
	if record.ProjectID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project id is required")
	}
	if _, exists := tx.state.FindUnlock(record.ProjectID); exists {
		return pkgerrors.New(pkgerrors.CodeConflict, "project already unlocked")
	}
	record.BusinessID = tx.state.BusinessID
	tx.state.Unlocks = append(tx.state.Unlocks, record)
	tx.changed = true
	return nil
}

func (s *State) FindUnlock(projectID uuid.UUID) (UnlockRecord, bool) {
	for _, record := range s.Unlocks {
		if record.ProjectID == projectID {
			return record, true
		}
	}
	return UnlockRecord{}, false
}

// UnlockedContacts returns the records newest first.
func (s *State) UnlockedContacts() []UnlockRecord {
	out := make([]UnlockRecord, len(s.Unlocks))
	copy(out, s.Unlocks)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UnlockedAt.Equal(out[j].UnlockedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].UnlockedAt.After(out[j].UnlockedAt)
	})
	return out
}
