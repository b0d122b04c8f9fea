package models

import "time"

// BridgeEvent is a single journal entry.
type BridgeEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // MODE | COMMAND | COMMAND_FAILED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
