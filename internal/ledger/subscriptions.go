package ledger

import (
	"strings"

	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
)

// Subscription returns a copy of the active subscription, or nil.
func (tx *Tx) Subscription() *Subscription {
	if tx.state.Subscription == nil {
		return nil
	}
	sub := *tx.state.Subscription
	return &sub
}

// Subscribe makes sub the active subscription, replacing any existing one.
// The replaced subscription is returned.
func (tx *Tx) Subscribe(sub Subscription) (*Subscription, error) {
	if strings.TrimSpace(sub.PlanID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id is required")
	}
	if sub.PurchaseDiscountPercent < 0 || sub.PurchaseDiscountPercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase discount must be between 0 and 100")
	}
	if !sub.BillingCycle.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid billing cycle")
	}
	sub.BusinessID = tx.state.BusinessID
	if sub.StartedAt.IsZero() {
		sub.StartedAt = tx.now
	}

	previous := tx.Subscription()
	tx.state.Subscription = &sub
	tx.changed = true
	return previous, nil
}

// CancelSubscription removes the active subscription. Unlock records are kept.
func (tx *Tx) CancelSubscription() (*Subscription, bool) {
	previous := tx.Subscription()
	if previous == nil {
		return nil, false
	}
	tx.state.Subscription = nil
	tx.changed = true
	return previous, true
}

// PurchaseDiscount is the bonus percentage applied to credit purchases; 0
// without a subscription.
func (tx *Tx) PurchaseDiscount() int {
	return tx.state.PurchaseDiscount()
}

func (s *State) PurchaseDiscount() int {
	if s == nil || s.Subscription == nil {
		return 0
	}
	return s.Subscription.PurchaseDiscountPercent
}

// GrantedCredits applies a purchase discount: floor(credits * (100 + pct) / 100).
// It is only ever used for purchases, never for unlock prices.
func GrantedCredits(credits int64, discountPercent int) int64 {
	if credits <= 0 {
		return 0
	}
	if discountPercent <= 0 {
		return credits
	}
	return credits * int64(100+discountPercent) / 100
}
