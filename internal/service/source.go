package service

import (
	"context"
	"strings"
	"time"

	"telemetry_bridge/internal/hub"
	"telemetry_bridge/internal/logger"
	"telemetry_bridge/internal/protocol"
)

const (
	idleBackoff  = 20 * time.Millisecond // after a read timeout with no data
	errorBackoff = 1 * time.Second       // after a failed read
)

// DeviceSource relays decoded device lines to the hub.
type DeviceSource struct {
	link DeviceLink
	hub  *hub.Hub
	log  *logger.Logger

	idleBackoff  time.Duration
	errorBackoff time.Duration
}

func NewDeviceSource(link DeviceLink, h *hub.Hub, log *logger.Logger) *DeviceSource {
	if log == nil {
		log = logger.Nop()
	}
	return &DeviceSource{
		link:         link,
		hub:          h,
		log:          log,
		idleBackoff:  idleBackoff,
		errorBackoff: errorBackoff,
	}
}

// Run reads until ctx is cancelled. Read errors never end the loop.
func (s *DeviceSource) Run(ctx context.Context) {
	s.log.Infow("serial_reader_started", "port", s.link.Name())
	defer s.log.Infow("serial_reader_stopped", "port", s.link.Name())

	for ctx.Err() == nil {
		raw, err := s.link.ReadLine()
		if err != nil {
			s.log.Errorw("serial_read_failed", "port", s.link.Name(), "err", err)
			if !sleepCtx(ctx, s.errorBackoff) {
				return
			}
			continue
		}
		if raw == nil {
			if !sleepCtx(ctx, s.idleBackoff) {
				return
			}
			continue
		}

		line := strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
		if line == "" {
			continue
		}
		s.log.Debugw("serial_raw", "line", line)
		s.hub.PublishFrame(protocol.Decode(line))
	}
}

// NewTelemetrySource picks the single source for this process.
func NewTelemetrySource(bc *BridgeContext, reportInterval time.Duration) Source {
	if bc.Connected() {
		return NewDeviceSource(bc.Device, bc.Hub, bc.Log)
	}
	return NewSimulatorService(bc.Hub, reportInterval, bc.Log)
}

// sleepCtx waits for d or until ctx is done; false means ctx ended.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
