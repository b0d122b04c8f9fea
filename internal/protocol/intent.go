package protocol

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"
)

// Kind enumerates the device actions a client may request.
type Kind int

const (
	SetRelay Kind = iota + 1
	SetAuto
	ClearManual
)

func (k Kind) String() string {
	switch k {
	case SetRelay:
		return "SET_RELAY"
	case SetAuto:
		return "SET_AUTO"
	case ClearManual:
		return "CLEAR_MANUAL"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Intent is a validated client request, prior to wire encoding.
// State is ignored for ClearManual.
type Intent struct {
	Kind  Kind
	State bool
}

func Relay(on bool) Intent { return Intent{Kind: SetRelay, State: on} }
func Auto(on bool) Intent  { return Intent{Kind: SetAuto, State: on} }
func Manual() Intent       { return Intent{Kind: ClearManual} }

// Inbound client event names.
const (
	EventToggleRelay = "toggle_relay"
	EventSetAuto     = "set_auto"
	EventClearManual = "clear_manual"
)

// Outbound client event names.
const (
	EventSensorUpdate  = "sensor_update"
	EventSerialLine    = "serial_line"
	EventRelayAck      = "relay_ack"
	EventAutoAck       = "auto_ack"
	EventManualCleared = "manual_cleared"
	EventError         = "error"
)

var ErrUnknownEvent = errors.New("unknown event")

// ParseIntent maps an inbound event and its payload to an Intent.
// The "state" field is coerced leniently; anything non-numeric means off.
func ParseIntent(event string, payload map[string]any) (Intent, error) {
	switch event {
	case EventToggleRelay:
		return Relay(CoerceState(payload["state"])), nil
	case EventSetAuto:
		return Auto(CoerceState(payload["state"])), nil
	case EventClearManual:
		return Manual(), nil
	default:
		return Intent{}, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
}

// AckEvent names the outbound event that answers an intent.
func AckEvent(k Kind) string {
	switch k {
	case SetRelay:
		return EventRelayAck
	case SetAuto:
		return EventAutoAck
	case ClearManual:
		return EventManualCleared
	default:
		return EventError
	}
}

// CoerceInt converts a loosely typed value (number, numeric string, bool)
// to an int. Non-convertible input yields 0.
func CoerceInt(v any) int {
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0
	}
	return n
}

// CoerceState reports whether v coerces to a non-zero int.
func CoerceState(v any) bool {
	return CoerceInt(v) != 0
}
