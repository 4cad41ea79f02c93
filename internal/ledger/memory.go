package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/locks"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/pagination"
)

// Memory is an in-process Store used by tests and local tooling. It honours
// the same locking and atomicity rules as Repository.
type Memory struct {
	locker       locks.Locker
	initialGrant int64
	now          func() time.Time

	mu      sync.RWMutex
	states  map[uuid.UUID]*State
	entries map[uuid.UUID][]Entry
	events  []Event

	// failSave, when set, is returned instead of persisting; used to simulate
	// storage outages.
	failSave error
}

func NewMemory(initialGrant int64, locker locks.Locker) *Memory {
	if locker == nil {
		locker = locks.NewLocal(0)
	}
	return &Memory{
		locker:       locker,
		initialGrant: initialGrant,
		now:          defaultNow,
		states:       make(map[uuid.UUID]*State),
		entries:      make(map[uuid.UUID][]Entry),
	}
}

// SetClock overrides the transaction clock.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// FailSaves makes every subsequent save return err; nil restores normal behaviour.
func (m *Memory) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSave = err
}

func (m *Memory) Load(ctx context.Context, businessID uuid.UUID) (*State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	state, _ := m.current(businessID)
	return state, nil
}

func (m *Memory) current(businessID uuid.UUID) (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if stored, ok := m.states[businessID]; ok {
		return stored.clone(), false
	}
	return newState(businessID, m.initialGrant), true
}

func (m *Memory) Transact(ctx context.Context, businessID uuid.UUID, fn func(*Tx) error) (*State, error) {
	release, err := acquire(ctx, m.locker, businessID)
	if err != nil {
		return nil, err
	}
	defer release()

	current, fresh := m.current(businessID)
	m.mu.RLock()
	now := m.now()
	m.mu.RUnlock()

	mtx, err := apply(current, fresh, now, fn)
	if err != nil {
		return nil, err
	}
	if !mtx.changed {
		return current, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != nil {
		return nil, pkgerrors.Storage(m.failSave, "save account state")
	}
	if stored, ok := m.states[businessID]; ok && stored.Revision != current.Revision {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "account state was modified concurrently")
	}
	next := mtx.state
	next.Revision = current.Revision + 1
	next.UpdatedAt = now
	m.states[businessID] = next.clone()
	m.entries[businessID] = append(m.entries[businessID], mtx.entries...)
	m.events = append(m.events, mtx.events...)
	return next, nil
}

func (m *Memory) ListEntries(ctx context.Context, businessID uuid.UUID, params pagination.Params) ([]Entry, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	m.mu.RLock()
	all := append([]Entry(nil), m.entries[businessID]...)
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() > all[j].ID.String()
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	filtered := all[:0]
	for _, e := range all {
		if cursor != nil && !before(e, cursor) {
			continue
		}
		filtered = append(filtered, e)
	}
	page, next := pageEntries(filtered, limit)
	return page, next, nil
}

func before(e Entry, cursor *pagination.Cursor) bool {
	if e.CreatedAt.Equal(cursor.CreatedAt) {
		return e.ID.String() < cursor.ID.String()
	}
	return e.CreatedAt.Before(cursor.CreatedAt)
}

func (m *Memory) ListStates(ctx context.Context, after uuid.UUID, limit int) ([]*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.states))
	for id := range m.states {
		if after == uuid.Nil || id.String() > after.String() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]*State, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.states[id].clone())
	}
	return out, nil
}

func (m *Memory) EntriesFor(ctx context.Context, businessID uuid.UUID) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Entry(nil), m.entries[businessID]...), nil
}

// Events returns every event committed so far, oldest first.
func (m *Memory) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Event(nil), m.events...)
}
