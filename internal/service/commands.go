package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"telemetry_bridge/internal/logger"
	"telemetry_bridge/internal/models"
	"telemetry_bridge/internal/protocol"
)

var (
	ErrNotConnected = errors.New("serial not connected")
	errUnsupported  = errors.New("unsupported command")
)

// Journal event types.
const (
	EventTypeMode          = "MODE"
	EventTypeCommand       = "COMMAND"
	EventTypeCommandFailed = "COMMAND_FAILED"
)

// CommandService validates, encodes and writes client commands.
type CommandService struct {
	bridge  *BridgeContext
	journal EventLog
	log     *logger.Logger

	pending sync.WaitGroup // in-flight journal appends
}

func NewCommandService(bc *BridgeContext, journal EventLog) *CommandService {
	log := bc.Log
	if log == nil {
		log = logger.Nop()
	}
	return &CommandService{bridge: bc, journal: journal, log: log}
}

// Dispatch performs one write attempt and always returns a Result; it never
// retries. Without a device it reports what would have been sent.
func (s *CommandService) Dispatch(ctx context.Context, in protocol.Intent) Result {
	res := Result{Event: protocol.AckEvent(in.Kind), Intent: in}

	cmd := protocol.Encode(in)
	if cmd == "" {
		res.Error = errUnsupported.Error()
		return res
	}
	wire := strings.TrimSpace(cmd)

	if !s.bridge.Connected() {
		s.log.Infow("serial_write_skipped", "would_send", wire)
		res.Error = ErrNotConnected.Error()
		res.WouldSend = cmd
		s.record(ctx, EventTypeCommandFailed, wire, map[string]any{
			"error":      res.Error,
			"would_send": wire,
		})
		return res
	}

	if err := s.bridge.Device.WriteLine(cmd); err != nil {
		s.log.Errorw("serial_write_failed", "cmd", wire, "err", err)
		res.Error = err.Error()
		s.record(ctx, EventTypeCommandFailed, wire, map[string]any{
			"error": res.Error,
			"port":  s.bridge.PortName(),
		})
		return res
	}

	s.log.Infow("serial_write", "cmd", wire, "port", s.bridge.PortName())
	res.OK = true
	if in.State {
		res.Sent = 1
	}
	s.record(ctx, EventTypeCommand, wire, map[string]any{"port": s.bridge.PortName()})
	return res
}

// record journals the outcome in the background so the ack never waits on
// the database. Journal failures never affect the ack.
func (s *CommandService) record(ctx context.Context, typ, desc string, meta map[string]any) {
	if s.journal == nil {
		return
	}
	ev := models.BridgeEvent{Type: typ, Description: desc, Metadata: meta}
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.journal.Record(ctx, ev); err != nil {
			s.log.Warnw("journal_append_failed", "type", typ, "err", err)
		}
	}()
}

// Flush blocks until every queued journal append has finished.
func (s *CommandService) Flush() {
	s.pending.Wait()
}
