package models

import "time"

// TelemetryRecord is one well-formed sensor reading from the device (or the simulator).
type TelemetryRecord struct {
	MQ    int     `json:"mq"`    // gas sensor, raw ADC
	Soil  int     `json:"soil"`  // soil moisture, %
	Temp  float64 `json:"temp"`  // °C
	Hum   float64 `json:"hum"`   // relative humidity, %
	Relay int     `json:"relay"` // 0 | 1
}

// OpaqueLine is a device line that is not a TelemetryRecord, passed through verbatim.
type OpaqueLine struct {
	Line string `json:"line"`
}

// BridgeStatus is the read-only snapshot served by the status endpoint.
type BridgeStatus struct {
	Mode          string           `json:"mode"`           // device | simulation
	Port          string           `json:"port,omitempty"` // empty in simulation mode
	BaudRate      int              `json:"baud_rate,omitempty"`
	Sessions      int              `json:"sessions"` // websocket clients only
	Dropped       uint64           `json:"dropped"`
	LastTelemetry *TelemetryRecord `json:"last_telemetry,omitempty"`
	LastUpdateAt  time.Time        `json:"last_update_at,omitempty"`
}
