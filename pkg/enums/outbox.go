package enums

import "fmt"

// OutboxAggregateType is stored in outbox_events.aggregate_type.
type OutboxAggregateType string

const (
	AggregateCreditAccount OutboxAggregateType = "credit_account"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCreditAccount,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType is stored in outbox_events.event_type.
type OutboxEventType string

const (
	EventCreditsPurchased     OutboxEventType = "credits_purchased"
	EventContactUnlocked      OutboxEventType = "contact_unlocked"
	EventSubscriptionStarted  OutboxEventType = "subscription_started"
	EventSubscriptionCanceled OutboxEventType = "subscription_canceled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCreditsPurchased,
	EventContactUnlocked,
	EventSubscriptionStarted,
	EventSubscriptionCanceled,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
