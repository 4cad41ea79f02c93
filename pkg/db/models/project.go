package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project is a customer's service request. The ledger only reads it.
type Project struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID   uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	Title        string              `gorm:"column:title;not null"`
	Description  string              `gorm:"column:description"`
	BudgetMin    decimal.NullDecimal `gorm:"column:budget_min;type:numeric(12,2)"`
	BudgetMax    decimal.NullDecimal `gorm:"column:budget_max;type:numeric(12,2)"`
	ContactName  string              `gorm:"column:contact_name;not null"`
	ContactEmail string              `gorm:"column:contact_email;not null"`
	ContactPhone string              `gorm:"column:contact_phone"`
	Street       string              `gorm:"column:street"`
	PostalCode   string              `gorm:"column:postal_code"`
	City         string              `gorm:"column:city"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
