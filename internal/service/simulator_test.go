package service

import (
	"context"
	"math"
	"testing"
	"time"

	"telemetry_bridge/internal/hub"
	"telemetry_bridge/internal/models"
	"telemetry_bridge/internal/protocol"
)

func isTenth(v float64) bool {
	return math.Abs(v*10-math.Round(v*10)) < 1e-9
}

func TestSimulatorSample_WithinRanges(t *testing.T) {
	svc := NewSimulatorService(hub.New(1, nil), time.Second, nil)

	for i := 0; i < 5000; i++ {
		r := svc.Sample()
		if r.MQ < SimMQMin || r.MQ > SimMQMax {
			t.Fatalf("mq out of range: %d", r.MQ)
		}
		if r.Soil < SimSoilMin || r.Soil > SimSoilMax {
			t.Fatalf("soil out of range: %d", r.Soil)
		}
		if r.Temp < SimTempMin || r.Temp > SimTempMax || !isTenth(r.Temp) {
			t.Fatalf("temp invalid: %v", r.Temp)
		}
		if r.Hum < SimHumMin || r.Hum > SimHumMax || !isTenth(r.Hum) {
			t.Fatalf("hum invalid: %v", r.Hum)
		}
		if r.Relay != 0 {
			t.Fatalf("relay must stay 0, got %d", r.Relay)
		}
	}
}

func TestRoundTenth(t *testing.T) {
	cases := map[float64]float64{
		26.34:  26.3,
		26.35:  26.4,
		29.96:  30.0,
		22.0:   22.0,
		48.149: 48.1,
	}
	for in, want := range cases {
		if got := roundTenth(in); got != want {
			t.Errorf("roundTenth(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestSimulatorRun_PublishesOnCadenceAndStops(t *testing.T) {
	h := hub.New(16, nil)
	sess := h.Register()
	svc := NewSimulatorService(h, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	for i := 0; i < 3; i++ {
		select {
		case ev := <-sess.Events():
			if ev.Type != protocol.EventSensorUpdate {
				t.Fatalf("unexpected event %q", ev.Type)
			}
			if _, ok := ev.Data.(models.TelemetryRecord); !ok {
				t.Fatalf("payload is %T", ev.Data)
			}
		case <-time.After(time.Second):
			t.Fatalf("no sample #%d", i+1)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("simulator did not stop on cancel")
	}
}
