package domain

// EventCursor is an opaque, backend-defined polling position.
// The empty cursor means "never polled".
type EventCursor string

// CursorKey identifies the cursor of one event of one connector.
type CursorKey struct {
	ConnectorID string
	EventPath   string
}

// String returns "connector:path".
func (k CursorKey) String() string {
	return k.ConnectorID + ":" + k.EventPath
}

// Payload is one event occurrence delivered to subscribers.
type Payload map[string]any
