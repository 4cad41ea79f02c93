package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
)

// Entry is one line of the append-only credit journal.
type Entry struct {
	ID           uuid.UUID
	BusinessID   uuid.UUID
	Type         enums.LedgerEntryType
	Amount       int64
	BalanceAfter int64
	Reference    string
	CreatedAt    time.Time
}

// Event is a domain event queued for the outbox by a transaction.
type Event struct {
	Type       enums.OutboxEventType
	Data       any
	OccurredAt time.Time
}

// Tx is the mutation handle passed to Store.Transact. It works on a private
// copy of the account state; nothing it does is visible to other callers
// until the surrounding transaction commits.
type Tx struct {
	state   *State
	now     time.Time
	entries []Entry
	events  []Event
	changed bool
}

func newTx(state *State, now time.Time) *Tx {
	return &Tx{state: state, now: now}
}

func (tx *Tx) BusinessID() uuid.UUID {
	return tx.state.BusinessID
}

// Now is the timestamp shared by everything written in this transaction.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// Emit queues an outbox event that is written in the same database transaction.
func (tx *Tx) Emit(eventType enums.OutboxEventType, data any) {
	tx.events = append(tx.events, Event{Type: eventType, Data: data, OccurredAt: tx.now})
}

// record journals a line. Entries of one transaction share a timestamp, so
// the time-ordered ID keeps them in the order they were written.
func (tx *Tx) record(entryType enums.LedgerEntryType, amount int64, reference string) {
	tx.entries = append(tx.entries, Entry{
		ID:           uuid.Must(uuid.NewV7()),
		BusinessID:   tx.state.BusinessID,
		Type:         entryType,
		Amount:       amount,
		BalanceAfter: tx.state.Balance,
		Reference:    reference,
		CreatedAt:    tx.now,
	})
}

// apply runs fn against a copy of current. fresh marks a state that has never
// been persisted; its initial grant is journaled ahead of fn's own entries.
func apply(current *State, fresh bool, now time.Time, fn func(*Tx) error) (*Tx, error) {
	tx := newTx(current.clone(), now)
	if fresh && current.Balance > 0 {
		tx.record(enums.LedgerEntryInitialGrant, current.Balance, "")
	}
	if err := fn(tx); err != nil {
		return nil, err
	}
	return tx, nil
}
