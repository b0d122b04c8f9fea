package handlers

import (
	"telemetry_bridge/internal/hub"
	"telemetry_bridge/internal/logger"
	"telemetry_bridge/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      *hub.Hub
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies. Websocket
// sessions are registered on h.
func NewHandler(services *service.Service, h *hub.Hub, log *logger.Logger) *Handler {
	return &Handler{services: services, hub: h, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Client sessions: telemetry push + commands, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerBridgeRoutes(api)
		h.registerEventRoutes(api)
	}
}

func (h *Handler) registerBridgeRoutes(api *gin.RouterGroup) {
	bridge := api.Group("/bridge")
	{
		bridge.GET("/status", h.getStatus)
		bridge.GET("/ports", h.getPorts)
		// Body example: {"state":1}
		bridge.POST("/relay", h.setRelay)
		bridge.POST("/auto", h.setAuto)
		bridge.POST("/manual/clear", h.clearManual)
	}
}

func (h *Handler) registerEventRoutes(api *gin.RouterGroup) {
	events := api.Group("/events")
	{
		events.GET("/", h.getEvents)
	}
}
