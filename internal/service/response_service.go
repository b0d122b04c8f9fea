package service

import (
	"strings"
	"time"

	"telemetry_bridge/internal/protocol"
)

// Result is the outcome of one dispatched command.
type Result struct {
	Event     string // ack event name, e.g. relay_ack
	Intent    protocol.Intent
	OK        bool
	Sent      int    // applied state (0|1) for relay/auto
	Error     string // set when !OK
	WouldSend string // exact line that would have been written, only when not connected
}

// Payload renders the ack body sent back to the requesting client.
func (r Result) Payload() map[string]any {
	if r.OK {
		if r.Intent.Kind == protocol.ClearManual {
			return map[string]any{"ok": true}
		}
		return map[string]any{"sent": r.Sent}
	}
	p := map[string]any{"error": r.Error}
	if r.WouldSend != "" {
		p["would_send"] = strings.TrimSpace(r.WouldSend)
	}
	return p
}

// LogFilter narrows a journal query.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "MODE", "COMMAND", "COMMAND_FAILED"
}
