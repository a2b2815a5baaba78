package model

import (
	"encoding/json"
	"time"
)

// Webhook is an inbound third-party event record. Immutable once stored;
// the payload is an opaque JSON blob with no schema enforced.
type Webhook struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Event      string          `json:"event"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}
