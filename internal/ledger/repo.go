package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/locks"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db/models"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/metrics"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/outbox"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/pagination"
)

type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// RepositoryParams wires the database-backed store.
type RepositoryParams struct {
	DB           txRunner
	Locker       locks.Locker
	Outbox       eventEmitter
	Logger       *logger.Logger
	Metrics      *metrics.LedgerMetrics
	InitialGrant int64
	Now          func() time.Time
}

// Repository stores one account_states row per business, with the payload
// as a JSON document guarded by a revision counter.
type Repository struct {
	db           txRunner
	locker       locks.Locker
	outbox       eventEmitter
	logg         *logger.Logger
	metrics      *metrics.LedgerMetrics
	initialGrant int64
	now          func() time.Time
}

func NewRepository(params RepositoryParams) (*Repository, error) {
	if params.DB == nil {
		return nil, errors.New("database client required")
	}
	if params.Locker == nil {
		return nil, errors.New("locker required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.InitialGrant < 0 {
		return nil, errors.New("initial grant must not be negative")
	}
	now := params.Now
	if now == nil {
		now = defaultNow
	}
	return &Repository{
		db:           params.DB,
		locker:       params.Locker,
		outbox:       params.Outbox,
		logg:         params.Logger,
		metrics:      params.Metrics,
		initialGrant: params.InitialGrant,
		now:          now,
	}, nil
}

func (r *Repository) Load(ctx context.Context, businessID uuid.UUID) (*State, error) {
	state, _, err := r.read(r.db.DB().WithContext(ctx), businessID, false)
	if err != nil {
		return nil, pkgerrors.Storage(err, "load account state")
	}
	return state, nil
}

func (r *Repository) Transact(ctx context.Context, businessID uuid.UUID, fn func(*Tx) error) (*State, error) {
	start := time.Now()
	state, err := r.transact(ctx, businessID, fn)
	r.metrics.ObserveTransact(time.Since(start), err)
	return state, err
}

func (r *Repository) transact(ctx context.Context, businessID uuid.UUID, fn func(*Tx) error) (*State, error) {
	release, err := acquire(ctx, r.locker, businessID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Once the lock is held the save runs to completion even if the caller
	// goes away.
	txCtx := context.WithoutCancel(ctx)
	var result *State
	err = r.db.WithTx(txCtx, func(tx *gorm.DB) error {
		current, fresh, err := r.read(tx, businessID, true)
		if err != nil {
			return pkgerrors.Storage(err, "load account state")
		}

		mtx, err := apply(current, fresh, r.now(), fn)
		if err != nil {
			return err
		}
		if !mtx.changed {
			result = current
			return nil
		}

		next := mtx.state
		next.Revision = current.Revision + 1
		next.UpdatedAt = mtx.now
		if err := r.save(tx, current.Revision, next, fresh); err != nil {
			return err
		}
		if err := r.appendEntries(tx, mtx.entries); err != nil {
			return err
		}
		for _, event := range mtx.events {
			if err := r.outbox.Emit(txCtx, tx, outbox.DomainEvent{
				EventType:     event.Type,
				AggregateType: enums.AggregateCreditAccount,
				AggregateID:   businessID,
				Data:          event.Data,
				OccurredAt:    event.OccurredAt,
			}); err != nil {
				return pkgerrors.Storage(err, "queue outbox event")
			}
		}
		result = next
		return nil
	})
	if err == nil {
		return result, nil
	}
	if pkgerrors.As(err) == nil {
		// commit or begin failed
		err = pkgerrors.Storage(err, "commit account state")
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeStorage) {
		logCtx := r.logg.WithBusinessID(ctx, businessID.String())
		r.logg.Error(logCtx, "ledger.transact.failed", err)
	}
	return nil, err
}

// read loads the stored row. A missing row yields a fresh state with the
// initial grant and fresh=true.
func (r *Repository) read(conn *gorm.DB, businessID uuid.UUID, forUpdate bool) (*State, bool, error) {
	query := conn
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row models.AccountState
	err := query.Where("business_id = ?", businessID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newState(businessID, r.initialGrant), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	state, err := decodeState(row.BusinessID, row.SchemaVersion, row.Payload)
	if err != nil {
		return nil, false, err
	}
	state.Revision = row.Revision
	state.UpdatedAt = row.UpdatedAt
	return state, false, nil
}

func (r *Repository) save(tx *gorm.DB, expectedRevision int64, next *State, fresh bool) error {
	raw, err := encodeState(next)
	if err != nil {
		return pkgerrors.Storage(err, "encode account state")
	}
	if fresh {
		err := tx.Model(&models.AccountState{}).Create(map[string]any{
			"business_id":    next.BusinessID,
			"schema_version": SchemaVersion,
			"revision":       next.Revision,
			"payload":        datatypes.JSON(raw),
			"created_at":     next.UpdatedAt,
			"updated_at":     next.UpdatedAt,
		}).Error
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "account state was created concurrently")
		}
		if err != nil {
			return pkgerrors.Storage(err, "insert account state")
		}
		return nil
	}

	res := tx.Model(&models.AccountState{}).
		Where("business_id = ? AND revision = ?", next.BusinessID, expectedRevision).
		Updates(map[string]any{
			"schema_version": SchemaVersion,
			"revision":       next.Revision,
			"payload":        datatypes.JSON(raw),
			"updated_at":     next.UpdatedAt,
		})
	if res.Error != nil {
		return pkgerrors.Storage(res.Error, "update account state")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "account state was modified concurrently")
	}
	return nil
}

func (r *Repository) appendEntries(tx *gorm.DB, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]models.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.LedgerEntry{
			ID:           e.ID,
			BusinessID:   e.BusinessID,
			Type:         e.Type,
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			Reference:    e.Reference,
			CreatedAt:    e.CreatedAt,
		})
	}
	err := tx.Create(&rows).Error
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "ledger entry already recorded")
	}
	if err != nil {
		return pkgerrors.Storage(err, "append ledger entries")
	}
	return nil
}

func (r *Repository) ListEntries(ctx context.Context, businessID uuid.UUID, params pagination.Params) ([]Entry, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.DB().WithContext(ctx).
		Where("business_id = ?", businessID)
	if cursor != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.LedgerEntry
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).Error; err != nil {
		return nil, "", pkgerrors.Storage(err, "list ledger entries")
	}
	entries, next := pageEntries(entriesFromRows(rows), limit)
	return entries, next, nil
}

func (r *Repository) ListStates(ctx context.Context, after uuid.UUID, limit int) ([]*State, error) {
	if limit <= 0 {
		limit = 100
	}
	query := r.db.DB().WithContext(ctx).Order("business_id ASC").Limit(limit)
	if after != uuid.Nil {
		query = query.Where("business_id > ?", after)
	}
	var rows []models.AccountState
	if err := query.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Storage(err, "list account states")
	}
	states := make([]*State, 0, len(rows))
	for _, row := range rows {
		state, err := decodeState(row.BusinessID, row.SchemaVersion, row.Payload)
		if err != nil {
			return nil, pkgerrors.Storage(err, "decode account state")
		}
		state.Revision = row.Revision
		state.UpdatedAt = row.UpdatedAt
		states = append(states, state)
	}
	return states, nil
}

func (r *Repository) EntriesFor(ctx context.Context, businessID uuid.UUID) ([]Entry, error) {
	var rows []models.LedgerEntry
	if err := r.db.DB().WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Storage(err, "list ledger entries")
	}
	return entriesFromRows(rows), nil
}

func entriesFromRows(rows []models.LedgerEntry) []Entry {
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, Entry{
			ID:           row.ID,
			BusinessID:   row.BusinessID,
			Type:         row.Type,
			Amount:       row.Amount,
			BalanceAfter: row.BalanceAfter,
			Reference:    row.Reference,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return out
}
