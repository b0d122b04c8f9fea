package protocol

import (
	"encoding/json"
	"math"
	"strings"

	"telemetry_bridge/internal/models"
)

// requiredKeys is the field set that makes a device line a telemetry record.
var requiredKeys = [...]string{"mq", "soil", "temp", "hum", "relay"}

// Frame is the result of decoding one device line: exactly one of
// Telemetry or Opaque is set.
type Frame struct {
	Telemetry *models.TelemetryRecord
	Opaque    *models.OpaqueLine
}

// IsTelemetry reports whether the line decoded into a telemetry record.
func (f Frame) IsTelemetry() bool { return f.Telemetry != nil }

// Decode parses a device line. A JSON object carrying all required keys with
// numeric values becomes a TelemetryRecord; anything else becomes an
// OpaqueLine holding the trimmed text. Decode never fails.
func Decode(line string) Frame {
	trimmed := strings.TrimSpace(line)
	if rec, ok := decodeTelemetry(trimmed); ok {
		return Frame{Telemetry: &rec}
	}
	return Frame{Opaque: &models.OpaqueLine{Line: trimmed}}
}

func decodeTelemetry(s string) (models.TelemetryRecord, bool) {
	if !strings.HasPrefix(s, "{") {
		return models.TelemetryRecord{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return models.TelemetryRecord{}, false
	}

	var values [len(requiredKeys)]float64
	for i, key := range requiredKeys {
		raw, ok := fields[key]
		if !ok {
			return models.TelemetryRecord{}, false
		}
		var n *float64
		if err := json.Unmarshal(raw, &n); err != nil || n == nil {
			return models.TelemetryRecord{}, false
		}
		values[i] = *n
	}

	mq, ok := asInt(values[0])
	if !ok {
		return models.TelemetryRecord{}, false
	}
	soil, ok := asInt(values[1])
	if !ok {
		return models.TelemetryRecord{}, false
	}
	relay, ok := asInt(values[4])
	if !ok {
		return models.TelemetryRecord{}, false
	}

	return models.TelemetryRecord{
		MQ:    mq,
		Soil:  soil,
		Temp:  values[2],
		Hum:   values[3],
		Relay: relay,
	}, true
}

// asInt accepts only integral values that fit in an int.
func asInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// Encode renders an intent as a newline-terminated device command.
// The zero Intent has no wire form and encodes to "".
func Encode(in Intent) string {
	switch in.Kind {
	case SetRelay:
		return "RELAY:" + flag(in.State) + "\n"
	case SetAuto:
		return "AUTO:" + flag(in.State) + "\n"
	case ClearManual:
		return "MANUAL:0\n"
	default:
		return ""
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
