package payloads

import (
	"time"

	"github.com/google/uuid"
)

// CreditsPurchasedEvent is emitted after a package purchase credits a balance.
type CreditsPurchasedEvent struct {
	BusinessID      uuid.UUID `json:"business_id"`
	PackageID       string    `json:"package_id"`
	BaseCredits     int64     `json:"base_credits"`
	GrantedCredits  int64     `json:"granted_credits"`
	DiscountPercent int       `json:"discount_percent"`
	BalanceAfter    int64     `json:"balance_after"`
}

// ContactUnlockedEvent is emitted once per (business, project).
type ContactUnlockedEvent struct {
	UnlockID     uuid.UUID `json:"unlock_id"`
	BusinessID   uuid.UUID `json:"business_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	CreditsSpent int64     `json:"credits_spent"`
	BalanceAfter int64     `json:"balance_after"`
	UnlockedAt   time.Time `json:"unlocked_at"`
}

// SubscriptionStartedEvent covers new subscriptions and plan switches.
type SubscriptionStartedEvent struct {
	SubscriptionID  uuid.UUID `json:"subscription_id"`
	BusinessID      uuid.UUID `json:"business_id"`
	PlanID          string    `json:"plan_id"`
	BillingCycle    string    `json:"billing_cycle"`
	DiscountPercent int       `json:"discount_percent"`
	ReplacedPlanID  *string   `json:"replaced_plan_id,omitempty"`
	StartedAt       time.Time `json:"started_at"`
}

type SubscriptionCanceledEvent struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	BusinessID     uuid.UUID `json:"business_id"`
	PlanID         string    `json:"plan_id"`
	CanceledAt     time.Time `json:"canceled_at"`
}
