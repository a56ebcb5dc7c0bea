package domain

import (
	"encoding/json"
	"time"
)

// NotifyMessage is an inbound event notification accepted for dispatch.
// Messages are immutable once enqueued.
type NotifyMessage struct {
	// ID uniquely identifies the message.
	ID string `json:"id"`

	// ConnectorID is the connector the notification was posted to.
	ConnectorID string `json:"connector_id"`

	// Path is the event path as received.
	Path string `json:"path"`

	// Payload is the raw request body. An empty body is stored as {}.
	Payload json.RawMessage `json:"payload"`

	// ReceivedAt is when the hub accepted the notification.
	ReceivedAt time.Time `json:"received_at"`
}
