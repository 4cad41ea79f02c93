package outbox

import (
	"encoding/json"
	"time"
)

// EnvelopeVersion is bumped when the envelope shape changes.
const EnvelopeVersion = 1

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}
