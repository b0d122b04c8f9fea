package hub

import (
	"sync"
	"sync/atomic"

	"telemetry_bridge/internal/logger"
	"telemetry_bridge/internal/models"
	"telemetry_bridge/internal/protocol"

	"github.com/google/uuid"
)

// Event is one outbound message for client sessions.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Session is a registered client. The hub owns the registry entry; the
// session itself only exposes its identity and its outbound queue.
type Session struct {
	id       string
	out      chan Event
	internal bool
	dropped  atomic.Uint64
}

// SessionOption adjusts a session at registration.
type SessionOption func(*Session)

// Internal marks a session run by the bridge itself (e.g. the MQTT mirror).
// It receives events like any other but is not counted as a client.
func Internal() SessionOption { return func(s *Session) { s.internal = true } }

// ID returns the session identity.
func (s *Session) ID() string { return s.id }

// Events is closed when the session is unregistered.
func (s *Session) Events() <-chan Event { return s.out }

// Dropped counts events skipped because the queue was full.
func (s *Session) Dropped() uint64 { return s.dropped.Load() }

// Hub fans events out to every registered session.
type Hub struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	observers []func(Event)

	buffer  int
	dropped atomic.Uint64
	log     *logger.Logger
}

// New returns a hub whose sessions each queue up to buffer events.
func New(buffer int, log *logger.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		sessions: make(map[string]*Session),
		buffer:   buffer,
		log:      log,
	}
}

// Register adds a new session and returns it.
func (h *Hub) Register(opts ...SessionOption) *Session {
	s := &Session{
		id:  uuid.NewString(),
		out: make(chan Event, h.buffer),
	}
	for _, o := range opts {
		o(s)
	}
	h.mu.Lock()
	h.sessions[s.id] = s
	n := len(h.sessions)
	h.mu.Unlock()

	h.log.Debugw("session_registered", "session", s.id, "sessions", n)
	return s
}

// Unregister removes the session and closes its queue. Unknown or already
// removed sessions are ignored.
func (h *Hub) Unregister(s *Session) {
	if s == nil {
		return
	}
	h.mu.Lock()
	_, ok := h.sessions[s.id]
	if ok {
		delete(h.sessions, s.id)
		// closing under the write lock: no Publish can be mid-send on s.out
		close(s.out)
	}
	n := len(h.sessions)
	h.mu.Unlock()

	if ok {
		h.log.Debugw("session_unregistered", "session", s.id, "sessions", n)
	}
}

// Observe registers fn to be called after every publish. fn must not block.
func (h *Hub) Observe(fn func(Event)) {
	h.mu.Lock()
	h.observers = append(h.observers, fn)
	h.mu.Unlock()
}

// Publish delivers ev to every session without blocking: a session whose
// queue is full misses the event. Returns the number of deliveries.
func (h *Hub) Publish(ev Event) int {
	h.mu.RLock()
	delivered := 0
	for _, s := range h.sessions {
		select {
		case s.out <- ev:
			delivered++
		default:
			s.dropped.Add(1)
			h.dropped.Add(1)
			h.log.Debugw("session_event_dropped", "session", s.id, "type", ev.Type)
		}
	}
	observers := h.observers
	h.mu.RUnlock()

	for _, fn := range observers {
		fn(ev)
	}
	return delivered
}

// PublishTelemetry broadcasts a sensor_update.
func (h *Hub) PublishTelemetry(rec models.TelemetryRecord) int {
	return h.Publish(Event{Type: protocol.EventSensorUpdate, Data: rec})
}

// PublishOpaque broadcasts a serial_line.
func (h *Hub) PublishOpaque(line models.OpaqueLine) int {
	return h.Publish(Event{Type: protocol.EventSerialLine, Data: line})
}

// PublishFrame broadcasts whichever variant the frame carries.
func (h *Hub) PublishFrame(f protocol.Frame) int {
	if f.IsTelemetry() {
		return h.PublishTelemetry(*f.Telemetry)
	}
	if f.Opaque != nil {
		return h.PublishOpaque(*f.Opaque)
	}
	return 0
}

// Count returns the number of registered sessions, internal ones included.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Clients returns the number of registered sessions, excluding internal ones.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, s := range h.sessions {
		if !s.internal {
			n++
		}
	}
	return n
}

// Dropped returns the total number of skipped deliveries.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }
