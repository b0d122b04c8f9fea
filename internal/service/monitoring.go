package service

import (
	"context"
	"sync"
	"time"

	"telemetry_bridge/internal/device"
	"telemetry_bridge/internal/hub"
	"telemetry_bridge/internal/models"
	"telemetry_bridge/internal/protocol"
)

// MonitoringService keeps the latest telemetry record for status queries.
// Only the latest value is held; there is no history.
type MonitoringService struct {
	bridge *BridgeContext
	now    func() time.Time

	mu     sync.RWMutex
	last   *models.TelemetryRecord
	lastAt time.Time
}

func NewMonitoringService(bc *BridgeContext) *MonitoringService {
	m := &MonitoringService{bridge: bc, now: time.Now}
	if bc.Hub != nil {
		bc.Hub.Observe(m.observe)
	}
	return m
}

func (m *MonitoringService) observe(ev hub.Event) {
	if ev.Type != protocol.EventSensorUpdate {
		return
	}
	rec, ok := ev.Data.(models.TelemetryRecord)
	if !ok {
		return
	}
	m.mu.Lock()
	m.last = &rec
	m.lastAt = m.now().UTC()
	m.mu.Unlock()
}

// Status returns the current bridge snapshot.
func (m *MonitoringService) Status(_ context.Context) models.BridgeStatus {
	st := models.BridgeStatus{
		Mode: m.bridge.Mode(),
		Port: m.bridge.PortName(),
	}
	if m.bridge.Connected() {
		st.BaudRate = m.bridge.BaudRate
	}
	if m.bridge.Hub != nil {
		st.Sessions = m.bridge.Hub.Clients()
		st.Dropped = m.bridge.Hub.Dropped()
	}

	m.mu.RLock()
	if m.last != nil {
		rec := *m.last
		st.LastTelemetry = &rec
		st.LastUpdateAt = m.lastAt
	}
	m.mu.RUnlock()
	return st
}

// Ports runs a fresh best-effort port scan.
func (m *MonitoringService) Ports(_ context.Context) []device.PortInfo {
	if m.bridge.Scanner == nil {
		return []device.PortInfo{}
	}
	ports := m.bridge.Scanner.Discover()
	if ports == nil {
		return []device.PortInfo{}
	}
	return ports
}
