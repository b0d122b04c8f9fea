package device

import (
	"errors"
	"fmt"
	"io"
	"time"

	"telemetry_bridge/internal/logger"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// ErrNoDevice is returned by Open when no candidate port could be opened.
// Callers treat it as a switch to simulation, not as a fatal error.
var ErrNoDevice = errors.New("no serial device available")

// Port is the part of serial.Port the bridge relies on.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// PortInfo describes one enumerated port.
type PortInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// OpenFunc opens a port by name at the given baud rate.
type OpenFunc func(name string, baudRate int) (Port, error)

// ListFunc enumerates the ports currently present.
type ListFunc func() ([]PortInfo, error)

// Connector finds and opens the device.
type Connector struct {
	baudRate    int
	readTimeout time.Duration
	settleDelay time.Duration

	open  OpenFunc
	list  ListFunc
	sleep func(time.Duration)
	log   *logger.Logger
}

// Option overrides a Connector default. Used mainly by tests.
type Option func(*Connector)

func WithOpenFunc(f OpenFunc) Option         { return func(c *Connector) { c.open = f } }
func WithListFunc(f ListFunc) Option         { return func(c *Connector) { c.list = f } }
func WithSleep(f func(time.Duration)) Option { return func(c *Connector) { c.sleep = f } }

// NewConnector builds a connector backed by go.bug.st/serial.
func NewConnector(baudRate int, readTimeout, settleDelay time.Duration, log *logger.Logger, opts ...Option) *Connector {
	if log == nil {
		log = logger.Nop()
	}
	c := &Connector{
		baudRate:    baudRate,
		readTimeout: readTimeout,
		settleDelay: settleDelay,
		open:        openSerial,
		list:        listSerial,
		sleep:       time.Sleep,
		log:         log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaudRate returns the configured line speed.
func (c *Connector) BaudRate() int { return c.baudRate }

// Discover lists available ports. Enumeration errors are logged and yield
// an empty list.
func (c *Connector) Discover() []PortInfo {
	ports, err := c.list()
	if err != nil {
		c.log.Warnw("serial_enumerate_failed", "err", err)
		return nil
	}
	return ports
}

// Open tries the preferred port, then every other discovered port, and
// returns the first one that opens. Each successful open waits the settle
// delay so the firmware can boot before the first read.
func (c *Connector) Open(preferred string) (*Conn, error) {
	ports := c.Discover()
	if len(ports) == 0 {
		c.log.Infow("serial_no_ports_found")
	}
	for _, p := range ports {
		c.log.Infow("serial_port_available", "port", p.Name, "description", p.Description)
	}

	for _, name := range candidates(preferred, ports) {
		c.log.Infow("serial_open_attempt", "port", name, "baud", c.baudRate)
		conn, err := c.tryOpen(name)
		if err != nil {
			c.log.Warnw("serial_open_failed", "port", name, "err", err)
			continue
		}
		c.log.Infow("serial_opened", "port", name)
		return conn, nil
	}
	return nil, ErrNoDevice
}

// candidates orders the open attempts: preferred first, then discovery order.
func candidates(preferred string, ports []PortInfo) []string {
	out := make([]string, 0, len(ports)+1)
	if preferred != "" {
		out = append(out, preferred)
	}
	for _, p := range ports {
		if p.Name == preferred || p.Name == "" {
			continue
		}
		out = append(out, p.Name)
	}
	return out
}

func (c *Connector) tryOpen(name string) (*Conn, error) {
	port, err := c.open(name, c.baudRate)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(c.readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	if c.settleDelay > 0 {
		c.sleep(c.settleDelay)
	}
	return newConn(name, port), nil
}

func openSerial(name string, baudRate int) (Port, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// listSerial prefers the detailed enumerator (USB ids, product name) and
// falls back to the plain port list.
func listSerial() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		out := make([]PortInfo, 0, len(details))
		for _, d := range details {
			desc := d.Product
			if d.IsUSB {
				desc = fmt.Sprintf("%s (USB %s:%s)", d.Product, d.VID, d.PID)
			}
			out = append(out, PortInfo{Name: d.Name, Description: desc})
		}
		return out, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	out := make([]PortInfo, 0, len(names))
	for _, n := range names {
		out = append(out, PortInfo{Name: n})
	}
	return out, nil
}
