package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"telemetry_bridge/internal/protocol"
	"telemetry_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// SetStateRequest is an exported model for Swagger docs of the relay/auto payload.
type SetStateRequest struct {
	// Desired state. Any non-zero number means on; strings like "1" are accepted.
	State int `json:"state" example:"1"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Bridge status
// @Description  Mode (device|simulation), port, session count and the latest telemetry record.
// @Tags         bridge
// @Produce      json
// @Success      200  {object}  models.BridgeStatus
// @Router       /api/v1/bridge/status [get]
func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Status(c.Request.Context()))
}

// @Summary      List serial ports
// @Description  Best-effort scan; an enumeration failure yields an empty list.
// @Tags         bridge
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, ports"
// @Router       /api/v1/bridge/ports [get]
func (h *Handler) getPorts(c *gin.Context) {
	ports := h.services.Monitoring.Ports(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"count": len(ports),
		"ports": ports,
	})
}

// @Summary      Set relay
// @Tags         bridge
// @Accept       json
// @Produce      json
// @Param        body  body      SetStateRequest  true  "Relay state"
// @Success      200   {object}  map[string]interface{}  "sent"
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string  "write failed"
// @Failure      503   {object}  map[string]string  "error, would_send"
// @Router       /api/v1/bridge/relay [post]
func (h *Handler) setRelay(c *gin.Context) {
	h.dispatchEvent(c, protocol.EventToggleRelay)
}

// @Summary      Set automatic mode
// @Tags         bridge
// @Accept       json
// @Produce      json
// @Param        body  body      SetStateRequest  true  "Auto state"
// @Success      200   {object}  map[string]interface{}  "sent"
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string  "write failed"
// @Failure      503   {object}  map[string]string  "error, would_send"
// @Router       /api/v1/bridge/auto [post]
func (h *Handler) setAuto(c *gin.Context) {
	h.dispatchEvent(c, protocol.EventSetAuto)
}

// @Summary      Clear manual override
// @Tags         bridge
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ok"
// @Failure      502  {object}  map[string]string  "write failed"
// @Failure      503  {object}  map[string]string  "error, would_send"
// @Router       /api/v1/bridge/manual/clear [post]
func (h *Handler) clearManual(c *gin.Context) {
	h.dispatchEvent(c, protocol.EventClearManual)
}

// dispatchEvent runs the same path as a websocket command. An empty body or
// a JSON body that is not an object dispatches with state off; only text
// that is not JSON at all is rejected.
func (h *Handler) dispatchEvent(c *gin.Context, event string) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if len(bytes.TrimSpace(raw)) > 0 && !json.Valid(raw) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + "malformed JSON"})
		return
	}
	intent, err := protocol.ParseIntent(event, payloadFields(raw))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res := h.services.Commands.Dispatch(c.Request.Context(), intent)
	c.JSON(resultStatus(res), res.Payload())
}

// resultStatus maps a dispatch outcome to an HTTP status.
func resultStatus(res service.Result) int {
	switch {
	case res.OK:
		return http.StatusOK
	case res.WouldSend != "":
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
