package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AccountState stores a business's balance, subscription and unlock records
// as one versioned JSON document. Revision guards concurrent writers.
type AccountState struct {
	BusinessID    uuid.UUID      `gorm:"column:business_id;type:uuid;primaryKey"`
	SchemaVersion int            `gorm:"column:schema_version;not null"`
	Revision      int64          `gorm:"column:revision;not null"`
	Payload       datatypes.JSON `gorm:"column:payload;type:jsonb;not null"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
