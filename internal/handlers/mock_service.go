package handlers

import (
	"context"
	"sync"
	"time"

	"telemetry_bridge/internal/device"
	"telemetry_bridge/internal/hub"
	"telemetry_bridge/internal/models"
	"telemetry_bridge/internal/protocol"
	"telemetry_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockCommands struct {
	mu      sync.Mutex
	result  func(protocol.Intent) service.Result
	intents []protocol.Intent
}

func (m *mockCommands) Dispatch(ctx context.Context, in protocol.Intent) service.Result {
	m.mu.Lock()
	m.intents = append(m.intents, in)
	m.mu.Unlock()
	if m.result != nil {
		return m.result(in)
	}
	return service.Result{Event: protocol.AckEvent(in.Kind), Intent: in, OK: true}
}

func (m *mockCommands) calls() []protocol.Intent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]protocol.Intent(nil), m.intents...)
}

type mockMonitoring struct {
	status models.BridgeStatus
	ports  []device.PortInfo
}

func (m *mockMonitoring) Status(ctx context.Context) models.BridgeStatus {
	return m.status
}

func (m *mockMonitoring) Ports(ctx context.Context) []device.PortInfo {
	return m.ports
}

type mockEventLog struct {
	resp     []models.BridgeEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	calls    int
}

func (m *mockEventLog) Record(ctx context.Context, e models.BridgeEvent) error {
	return nil
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.BridgeEvent, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, hub.New(8, nil), nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
