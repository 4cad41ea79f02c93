package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
)

// LedgerEntry is an append-only journal line. Amount is signed: debits are negative.
type LedgerEntry struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	BusinessID   uuid.UUID             `gorm:"column:business_id;type:uuid;not null;index:idx_ledger_entries_business_created,priority:1"`
	Type         enums.LedgerEntryType `gorm:"column:type;type:text;not null"`
	Amount       int64                 `gorm:"column:amount;not null"`
	BalanceAfter int64                 `gorm:"column:balance_after;not null"`
	Reference    string                `gorm:"column:reference"`
	CreatedAt    time.Time             `gorm:"column:created_at;not null;index:idx_ledger_entries_business_created,priority:2"`
}
