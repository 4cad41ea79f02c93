package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
)

// Account is the read-only identity row owned by the account service.
type Account struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	DisplayName string            `gorm:"column:display_name;not null"`
	Email       string            `gorm:"column:email;not null;uniqueIndex"`
	Role        enums.AccountRole `gorm:"column:role;type:text;not null"`
	Premium     bool              `gorm:"column:premium;not null;default:false"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
