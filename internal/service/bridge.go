package service

import (
	"io"

	"telemetry_bridge/internal/config"
	"telemetry_bridge/internal/device"
	"telemetry_bridge/internal/hub"
	"telemetry_bridge/internal/logger"
)

// Bridge modes, fixed for the life of the process.
const (
	ModeDevice     = "device"
	ModeSimulation = "simulation"
)

// DeviceLink is an open device connection as seen by the bridge.
type DeviceLink interface {
	Name() string
	ReadLine() ([]byte, error)
	WriteLine(text string) error
}

// PortScanner lists serial ports on demand.
type PortScanner interface {
	Discover() []device.PortInfo
}

// Opener is what Establish needs from the device connector.
type Opener interface {
	PortScanner
	Open(preferred string) (*device.Conn, error)
}

// BridgeContext is built once at startup and shared by the telemetry
// source, the dispatcher and monitoring. Device is nil when no device is
// connected; it never changes afterwards.
type BridgeContext struct {
	Device   DeviceLink
	Hub      *hub.Hub
	Scanner  PortScanner
	BaudRate int
	Log      *logger.Logger

	closer io.Closer
}

// Mode reports which telemetry source is active.
func (b *BridgeContext) Mode() string {
	if b.Device != nil {
		return ModeDevice
	}
	return ModeSimulation
}

// Connected reports whether a device link is present.
func (b *BridgeContext) Connected() bool { return b.Device != nil }

// PortName returns the device port, or "" in simulation mode.
func (b *BridgeContext) PortName() string {
	if b.Device == nil {
		return ""
	}
	return b.Device.Name()
}

// Close releases the device connection, if any.
func (b *BridgeContext) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Establish attempts the startup connection and returns the resulting
// context. Failing to find a device is not an error: the bridge runs the
// simulator instead.
func Establish(op Opener, cfg config.SerialConfig, h *hub.Hub, log *logger.Logger) *BridgeContext {
	if log == nil {
		log = logger.Nop()
	}
	bc := &BridgeContext{
		Hub:      h,
		Scanner:  op,
		BaudRate: cfg.BaudRate,
		Log:      log,
	}
	if !cfg.Enabled {
		log.Infow("serial_disabled", "mode", ModeSimulation)
		return bc
	}

	conn, err := op.Open(cfg.Port)
	if err != nil {
		log.Warnw("serial_unavailable", "err", err, "mode", ModeSimulation)
		return bc
	}
	bc.Device = conn
	bc.closer = conn
	log.Infow("serial_connected", "port", conn.Name(), "baud", cfg.BaudRate, "mode", ModeDevice)
	return bc
}
