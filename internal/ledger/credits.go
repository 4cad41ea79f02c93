package ledger

import (
	"math"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
)

// Balance is the spendable credit count. It never goes below zero.
func (tx *Tx) Balance() int64 {
	return tx.state.Balance
}

// Credit adds credits to the balance. Only purchases (and the initial grant)
// may add credits; unlocks never do.
func (tx *Tx) Credit(amount int64, entryType enums.LedgerEntryType, reference string) error {
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if !entryType.IsValid() || entryType.IsDebit() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid credit entry type")
	}
	if tx.state.Balance > math.MaxInt64-amount {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit would overflow balance")
	}
	tx.state.Balance += amount
	tx.changed = true
	tx.record(entryType, amount, reference)
	return nil
}

// Debit removes credits for an unlock. When the balance is short it returns an
// INSUFFICIENT_CREDITS error and leaves the balance untouched.
func (tx *Tx) Debit(amount int64, reference string) error {
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}
	if tx.state.Balance < amount {
		return pkgerrors.InsufficientCredits(amount, tx.state.Balance)
	}
	tx.state.Balance -= amount
	tx.changed = true
	tx.record(enums.LedgerEntryUnlock, -amount, reference)
	return nil
}
