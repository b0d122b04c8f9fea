package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"telemetry_bridge/internal/hub"
	"telemetry_bridge/internal/protocol"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	maxMsgSize  = 1 << 12 // 4 KB
	replyBuffer = 8
)

const errInvalidMessage = "invalid message"

// wsEnvelope is the outbound frame: {"type": "...", "data": {...}}.
type wsEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// wsInbound is a client command frame. Data stays raw so a payload of the
// wrong shape can still be dispatched (its state then coerces to off).
type wsInbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Upgrader for HTTP -> WebSocket. Any origin may connect; the bridge has no auth.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) wsConnect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	sess := h.hub.Register()
	defer h.hub.Unregister(sess)
	if h.log != nil {
		h.log.Infow("ws_connected", "session", sess.ID(), "remote", c.Request.RemoteAddr)
	}

	ctx := c.Request.Context()
	replies := make(chan wsEnvelope, replyBuffer)
	quit := make(chan struct{})
	defer close(quit)

	// Reader goroutine: commands in, acks out through replies.
	done := make(chan struct{})
	go h.startReader(ctx, conn, replies, quit, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	// Writer loop; the only place that writes to conn.
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-sess.Events():
			if !ok {
				return
			}
			if err := writeEnvelope(conn, wsEnvelope{Type: ev.Type, Data: ev.Data}); err != nil {
				h.logWriteFailed(sess, err)
				return
			}
		case reply := <-replies:
			if err := writeEnvelope(conn, reply); err != nil {
				h.logWriteFailed(sess, err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "session", sess.ID(), "err", err)
				}
				return
			}
		}
	}
}

// startReader reads client frames until the connection fails, answering each
// one on replies. It stops early once quit is closed.
func (h *Handler) startReader(ctx context.Context, conn *websocket.Conn, replies chan<- wsEnvelope, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		select {
		case replies <- h.handleInbound(ctx, raw):
		case <-quit:
			return
		}
	}
}

// handleInbound decodes one client frame, dispatches it and returns the
// reply for the requesting session only.
func (h *Handler) handleInbound(ctx context.Context, raw []byte) wsEnvelope {
	var in wsInbound
	if err := json.Unmarshal(raw, &in); err != nil {
		if h.log != nil {
			h.log.Warnw("ws_bad_message", "err", err)
		}
		return errorEnvelope(errInvalidMessage)
	}
	intent, err := protocol.ParseIntent(in.Type, payloadFields(in.Data))
	if err != nil {
		if h.log != nil {
			h.log.Warnw("ws_unknown_event", "type", in.Type)
		}
		return errorEnvelope(err.Error())
	}
	res := h.services.Commands.Dispatch(ctx, intent)
	return wsEnvelope{Type: res.Event, Data: res.Payload()}
}

// payloadFields returns the payload object, or nil for anything that is not
// a JSON object (number, string, array, null, absent).
func payloadFields(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func errorEnvelope(msg string) wsEnvelope {
	return wsEnvelope{Type: protocol.EventError, Data: gin.H{"error": msg}}
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}

func (h *Handler) logWriteFailed(sess *hub.Session, err error) {
	if h.log != nil {
		h.log.Infow("ws_write_failed", "session", sess.ID(), "err", err)
	}
}
