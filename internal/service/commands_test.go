package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"telemetry_bridge/internal/models"
	"telemetry_bridge/internal/protocol"
)

type journalStub struct {
	mu     sync.Mutex
	events []models.BridgeEvent
	err    error
}

func (j *journalStub) Record(_ context.Context, e models.BridgeEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
	return j.err
}

func (j *journalStub) List(context.Context, LogFilter) ([]models.BridgeEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]models.BridgeEvent(nil), j.events...), nil
}

func TestCommandService_Dispatch_NotConnected(t *testing.T) {
	t.Parallel()

	journal := &journalStub{}
	svc := NewCommandService(&BridgeContext{}, journal)

	res := svc.Dispatch(context.Background(), protocol.Relay(true))
	if res.OK {
		t.Fatalf("expected failure without a device")
	}
	if res.Event != protocol.EventRelayAck {
		t.Fatalf("event: want %q, got %q", protocol.EventRelayAck, res.Event)
	}
	if res.Error != "serial not connected" {
		t.Fatalf("error: got %q", res.Error)
	}
	if res.WouldSend != "RELAY:1\n" {
		t.Fatalf("would_send: got %q", res.WouldSend)
	}

	p := res.Payload()
	if p["error"] != "serial not connected" || p["would_send"] != "RELAY:1" {
		t.Fatalf("unexpected payload: %#v", p)
	}
	if _, ok := p["sent"]; ok {
		t.Fatalf("failed ack must not carry sent: %#v", p)
	}

	svc.Flush()
	if len(journal.events) != 1 || journal.events[0].Type != EventTypeCommandFailed {
		t.Fatalf("expected one COMMAND_FAILED entry, got %+v", journal.events)
	}
}

func TestCommandService_Dispatch_Connected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        protocol.Intent
		wantLine  string
		wantEvent string
		wantBody  map[string]any
	}{
		{
			name:      "relay off",
			in:        protocol.Relay(false),
			wantLine:  "RELAY:0\n",
			wantEvent: protocol.EventRelayAck,
			wantBody:  map[string]any{"sent": 0},
		},
		{
			name:      "relay on",
			in:        protocol.Relay(true),
			wantLine:  "RELAY:1\n",
			wantEvent: protocol.EventRelayAck,
			wantBody:  map[string]any{"sent": 1},
		},
		{
			name:      "auto on",
			in:        protocol.Auto(true),
			wantLine:  "AUTO:1\n",
			wantEvent: protocol.EventAutoAck,
			wantBody:  map[string]any{"sent": 1},
		},
		{
			name:      "clear manual",
			in:        protocol.Manual(),
			wantLine:  "MANUAL:0\n",
			wantEvent: protocol.EventManualCleared,
			wantBody:  map[string]any{"ok": true},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			link := &fakeLink{name: "/dev/ttyUSB0"}
			journal := &journalStub{}
			svc := NewCommandService(&BridgeContext{Device: link}, journal)

			res := svc.Dispatch(context.Background(), tc.in)
			if !res.OK {
				t.Fatalf("expected success, got error %q", res.Error)
			}
			if res.Event != tc.wantEvent {
				t.Fatalf("event: want %q, got %q", tc.wantEvent, res.Event)
			}
			if w := link.written(); len(w) != 1 || w[0] != tc.wantLine {
				t.Fatalf("writes: want [%q], got %q", tc.wantLine, w)
			}

			body := res.Payload()
			if len(body) != len(tc.wantBody) {
				t.Fatalf("payload: want %#v, got %#v", tc.wantBody, body)
			}
			for k, v := range tc.wantBody {
				if body[k] != v {
					t.Fatalf("payload[%q]: want %#v, got %#v", k, v, body[k])
				}
			}

			svc.Flush()
			if len(journal.events) != 1 || journal.events[0].Type != EventTypeCommand {
				t.Fatalf("expected one COMMAND entry, got %+v", journal.events)
			}
		})
	}
}

func TestCommandService_Dispatch_WriteFailure(t *testing.T) {
	t.Parallel()

	link := &fakeLink{name: "/dev/ttyUSB0", writeErr: errors.New("write /dev/ttyUSB0: i/o error")}
	journal := &journalStub{}
	svc := NewCommandService(&BridgeContext{Device: link}, journal)

	res := svc.Dispatch(context.Background(), protocol.Auto(false))
	if res.OK {
		t.Fatalf("expected failure")
	}
	if res.Error != "write /dev/ttyUSB0: i/o error" {
		t.Fatalf("error: got %q", res.Error)
	}
	if res.WouldSend != "" {
		t.Fatalf("would_send only applies without a device, got %q", res.WouldSend)
	}
	if _, ok := res.Payload()["would_send"]; ok {
		t.Fatalf("payload must not carry would_send: %#v", res.Payload())
	}
	svc.Flush()
	if len(journal.events) != 1 || journal.events[0].Type != EventTypeCommandFailed {
		t.Fatalf("expected one COMMAND_FAILED entry, got %+v", journal.events)
	}
}

func TestCommandService_Dispatch_JournalFailureDoesNotAffectAck(t *testing.T) {
	t.Parallel()

	link := &fakeLink{name: "/dev/ttyUSB0"}
	svc := NewCommandService(&BridgeContext{Device: link}, &journalStub{err: errors.New("db locked")})

	if res := svc.Dispatch(context.Background(), protocol.Relay(true)); !res.OK {
		t.Fatalf("expected success despite journal failure, got %q", res.Error)
	}
	svc.Flush()
}

// blockingJournal holds every Record call until release is closed.
type blockingJournal struct {
	journalStub
	entered chan struct{}
	release chan struct{}
}

func (j *blockingJournal) Record(ctx context.Context, e models.BridgeEvent) error {
	j.entered <- struct{}{}
	<-j.release
	if err := ctx.Err(); err != nil {
		return err
	}
	return j.journalStub.Record(ctx, e)
}

func TestCommandService_Dispatch_DoesNotWaitForJournal(t *testing.T) {
	t.Parallel()

	journal := &blockingJournal{entered: make(chan struct{}, 1), release: make(chan struct{})}
	link := &fakeLink{name: "/dev/ttyUSB0"}
	svc := NewCommandService(&BridgeContext{Device: link}, journal)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result, 1)
	go func() { done <- svc.Dispatch(ctx, protocol.Relay(true)) }()

	select {
	case res := <-done:
		if !res.OK || res.Sent != 1 {
			t.Fatalf("unexpected ack: %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Dispatch blocked on the journal")
	}

	<-journal.entered
	// the request context ending must not abort the queued append
	cancel()
	close(journal.release)
	svc.Flush()

	evs, _ := journal.List(context.Background(), LogFilter{})
	if len(evs) != 1 || evs[0].Type != EventTypeCommand || evs[0].Description != "RELAY:1" {
		t.Fatalf("expected one COMMAND entry, got %+v", evs)
	}
}

func TestCommandService_Dispatch_UnsupportedIntent(t *testing.T) {
	t.Parallel()

	link := &fakeLink{name: "/dev/ttyUSB0"}
	svc := NewCommandService(&BridgeContext{Device: link}, nil)

	res := svc.Dispatch(context.Background(), protocol.Intent{})
	if res.OK || res.Error == "" {
		t.Fatalf("expected unsupported command error, got %+v", res)
	}
	if len(link.written()) != 0 {
		t.Fatalf("nothing should be written")
	}
}
