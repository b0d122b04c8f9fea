package service

import (
	"context"
	"time"

	"telemetry_bridge/internal/device"
	"telemetry_bridge/internal/models"
	"telemetry_bridge/internal/protocol"
	"telemetry_bridge/internal/repository"
)

// Commands turns client intents into device writes.
type Commands interface {
	Dispatch(ctx context.Context, in protocol.Intent) Result
}

// Monitoring exposes read-only bridge state.
type Monitoring interface {
	Status(ctx context.Context) models.BridgeStatus
	Ports(ctx context.Context) []device.PortInfo
}

// EventLog exposes the bridge journal.
type EventLog interface {
	Record(ctx context.Context, e models.BridgeEvent) error
	List(ctx context.Context, f LogFilter) ([]models.BridgeEvent, error)
}

// Source produces telemetry until ctx is cancelled.
type Source interface {
	Run(ctx context.Context)
}

// Service aggregates the bridge services handed to the HTTP layer.
type Service struct {
	Commands
	Monitoring
	EventLog

	Telemetry Source

	commands *CommandService
}

// NewService wires the bridge context into concrete services. repos may be
// nil when the journal is disabled.
func NewService(bc *BridgeContext, repos *repository.Repository, reportInterval time.Duration) *Service {
	var events repository.EventRepo
	if repos != nil {
		events = repos.EventRepo
	}
	eventLog := NewEventLogService(events, bc.Log)
	commands := NewCommandService(bc, eventLog)
	return &Service{
		Commands:   commands,
		Monitoring: NewMonitoringService(bc),
		EventLog:   eventLog,
		Telemetry:  NewTelemetrySource(bc, reportInterval),
		commands:   commands,
	}
}

// Flush waits for background journal writes; call it before closing the
// database.
func (s *Service) Flush() {
	if s.commands != nil {
		s.commands.Flush()
	}
}
