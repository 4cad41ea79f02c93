package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
)

// SchemaVersion identifies the layout of the persisted account payload.
const SchemaVersion = 1

// ContactSnapshotVersion identifies the layout of ContactSnapshot.
const ContactSnapshotVersion = 1

// State is everything the ledger knows about one business: its balance,
// optional subscription and the contacts it has unlocked.
type State struct {
	BusinessID   uuid.UUID
	Balance      int64
	Subscription *Subscription
	Unlocks      []UnlockRecord
	Revision     int64
	UpdatedAt    time.Time
}

// Subscription is a business's active premium plan.
type Subscription struct {
	ID                      uuid.UUID          `json:"id"`
	BusinessID              uuid.UUID          `json:"business_id"`
	PlanID                  string             `json:"plan_id"`
	BillingCycle            enums.BillingCycle `json:"billing_cycle"`
	PurchaseDiscountPercent int                `json:"purchase_discount_percent"`
	StartedAt               time.Time          `json:"started_at"`
}

// ContactSnapshot is the customer contact data captured at unlock time. It is
// never refreshed from the project afterwards.
type ContactSnapshot struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Budget  string `json:"budget"`
}

// UnlockRecord grants a business permanent access to one project's contact.
type UnlockRecord struct {
	ID           uuid.UUID       `json:"id"`
	BusinessID   uuid.UUID       `json:"business_id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	CreditsSpent int64           `json:"credits_spent"`
	UnlockedAt   time.Time       `json:"unlocked_at"`
	Contact      ContactSnapshot `json:"contact"`
}

type payload struct {
	Balance      int64          `json:"balance"`
	Subscription *Subscription  `json:"subscription"`
	Unlocks      []UnlockRecord `json:"unlocks"`
}

func newState(businessID uuid.UUID, initialGrant int64) *State {
	return &State{
		BusinessID: businessID,
		Balance:    initialGrant,
		Unlocks:    []UnlockRecord{},
	}
}

func (s *State) clone() *State {
	out := *s
	if s.Subscription != nil {
		sub := *s.Subscription
		out.Subscription = &sub
	}
	out.Unlocks = make([]UnlockRecord, len(s.Unlocks))
	copy(out.Unlocks, s.Unlocks)
	return &out
}

func encodeState(s *State) ([]byte, error) {
	unlocks := s.Unlocks
	if unlocks == nil {
		unlocks = []UnlockRecord{}
	}
	raw, err := json.Marshal(payload{
		Balance:      s.Balance,
		Subscription: s.Subscription,
		Unlocks:      unlocks,
	})
	if err != nil {
		return nil, fmt.Errorf("encode account state: %w", err)
	}
	return raw, nil
}

func decodeState(businessID uuid.UUID, schemaVersion int, raw []byte) (*State, error) {
	if schemaVersion != SchemaVersion {
		return nil, fmt.Errorf("account state %s has unsupported schema version %d", businessID, schemaVersion)
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode account state %s: %w", businessID, err)
	}
	if p.Balance < 0 {
		return nil, fmt.Errorf("account state %s has negative balance %d", businessID, p.Balance)
	}
	if p.Unlocks == nil {
		p.Unlocks = []UnlockRecord{}
	}
	return &State{
		BusinessID:   businessID,
		Balance:      p.Balance,
		Subscription: p.Subscription,
		Unlocks:      p.Unlocks,
	}, nil
}
