package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"telemetry_bridge/internal/logger"
	"telemetry_bridge/internal/models"
	"telemetry_bridge/internal/repository"
)

var (
	ErrJournalDisabled  = errors.New("journal disabled")
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// EventLogService reads and appends the bridge journal. A nil repository
// turns Record into a no-op and List into ErrJournalDisabled.
type EventLogService struct {
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewEventLogService(eventRepo repository.EventRepo, log *logger.Logger) *EventLogService {
	if log == nil {
		log = logger.Nop()
	}
	return &EventLogService{eventRepo: eventRepo, log: log}
}

// Record appends one entry.
func (s *EventLogService) Record(ctx context.Context, e models.BridgeEvent) error {
	if s.eventRepo == nil {
		return nil
	}
	return s.eventRepo.Append(ctx, e)
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.BridgeEvent, error) {
	if s.eventRepo == nil {
		return nil, ErrJournalDisabled
	}
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, typ)
}

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}
	return from, to, normalizeEventType(f.Type), nil
}
