package protocol

import (
	"testing"

	"telemetry_bridge/internal/models"
)

func TestDecode_Telemetry(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want models.TelemetryRecord
	}{
		{
			name: "canonical line",
			in:   `{"mq":450,"soil":55,"temp":26.3,"hum":48.1,"relay":1}`,
			want: models.TelemetryRecord{MQ: 450, Soil: 55, Temp: 26.3, Hum: 48.1, Relay: 1},
		},
		{
			name: "surrounding whitespace and CRLF",
			in:   "  {\"mq\":300,\"soil\":20,\"temp\":22,\"hum\":35,\"relay\":0}\r\n",
			want: models.TelemetryRecord{MQ: 300, Soil: 20, Temp: 22, Hum: 35, Relay: 0},
		},
		{
			name: "extra keys are tolerated",
			in:   `{"mq":700,"soil":80,"temp":30.0,"hum":70.0,"relay":0,"auto":1}`,
			want: models.TelemetryRecord{MQ: 700, Soil: 80, Temp: 30, Hum: 70, Relay: 0},
		},
		{
			name: "integral floats for integer fields",
			in:   `{"mq":450.0,"soil":55,"temp":26.3,"hum":48.1,"relay":1.0}`,
			want: models.TelemetryRecord{MQ: 450, Soil: 55, Temp: 26.3, Hum: 48.1, Relay: 1},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Decode(tc.in)
			if !f.IsTelemetry() || f.Opaque != nil {
				t.Fatalf("expected telemetry, got opaque %+v", f.Opaque)
			}
			if *f.Telemetry != tc.want {
				t.Fatalf("got %+v, want %+v", *f.Telemetry, tc.want)
			}
		})
	}
}

func TestDecode_Opaque(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"trimmed text", "  RELAY ON \r\n", "RELAY ON"},
		{"missing relay", `{"mq":450,"soil":55,"temp":26.3,"hum":48.1}`, `{"mq":450,"soil":55,"temp":26.3,"hum":48.1}`},
		{"missing mq", `{"soil":55,"temp":26.3,"hum":48.1,"relay":1}`, `{"soil":55,"temp":26.3,"hum":48.1,"relay":1}`},
		{"different object", `{"status":"boot"}`, `{"status":"boot"}`},
		{"broken json", `{"mq":450,"soil":`, `{"mq":450,"soil":`},
		{"array", `[1,2,3]`, `[1,2,3]`},
		{"null value", `{"mq":null,"soil":55,"temp":26.3,"hum":48.1,"relay":1}`, `{"mq":null,"soil":55,"temp":26.3,"hum":48.1,"relay":1}`},
		{"string value", `{"mq":"450","soil":55,"temp":26.3,"hum":48.1,"relay":1}`, `{"mq":"450","soil":55,"temp":26.3,"hum":48.1,"relay":1}`},
		{"fractional int field", `{"mq":450.5,"soil":55,"temp":26.3,"hum":48.1,"relay":1}`, `{"mq":450.5,"soil":55,"temp":26.3,"hum":48.1,"relay":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Decode(tc.in)
			if f.IsTelemetry() {
				t.Fatalf("expected opaque, got telemetry %+v", *f.Telemetry)
			}
			if f.Opaque == nil || f.Opaque.Line != tc.want {
				t.Fatalf("got %+v, want line %q", f.Opaque, tc.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	cases := []struct {
		in   Intent
		want string
	}{
		{Relay(true), "RELAY:1\n"},
		{Relay(false), "RELAY:0\n"},
		{Auto(true), "AUTO:1\n"},
		{Auto(false), "AUTO:0\n"},
		{Manual(), "MANUAL:0\n"},
		{Intent{Kind: ClearManual, State: true}, "MANUAL:0\n"},
		{Intent{}, ""},
	}
	for _, tc := range cases {
		if got := Encode(tc.in); got != tc.want {
			t.Errorf("Encode(%+v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
