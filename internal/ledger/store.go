package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/locks"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/pagination"
)

// Store persists account states. Implementations serialise Transact calls
// per business and persist the state, its journal entries and its events
// atomically.
type Store interface {
	// Load returns the current state. A business without a stored account gets
	// a fresh state carrying the initial grant; nothing is written.
	Load(ctx context.Context, businessID uuid.UUID) (*State, error)
	// Transact loads the state, applies fn to a private copy and saves it.
	// When fn fails the stored state is left untouched.
	Transact(ctx context.Context, businessID uuid.UUID, fn func(*Tx) error) (*State, error)
	// ListEntries pages through the journal, newest first.
	ListEntries(ctx context.Context, businessID uuid.UUID, params pagination.Params) ([]Entry, string, error)
}

// Auditor exposes the read paths the ledger audit job needs.
type Auditor interface {
	ListStates(ctx context.Context, after uuid.UUID, limit int) ([]*State, error)
	EntriesFor(ctx context.Context, businessID uuid.UUID) ([]Entry, error)
}

func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func acquire(ctx context.Context, locker locks.Locker, businessID uuid.UUID) (locks.Release, error) {
	release, err := locker.Acquire(ctx, locks.BusinessKey(businessID.String()))
	switch {
	case err == nil:
		return release, nil
	case errors.Is(err, locks.ErrTimeout):
		return nil, pkgerrors.Wrap(pkgerrors.CodeAccountBusy, err, "another operation is in progress for this account")
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		return nil, pkgerrors.Storage(err, "acquire account lock")
	}
}

func pageEntries(entries []Entry, limit int) ([]Entry, string) {
	if len(entries) <= limit {
		return entries, ""
	}
	page := entries[:limit]
	last := page[len(page)-1]
	return page, pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
}
