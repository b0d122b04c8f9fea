package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "telemetry_bridge/docs"
	"telemetry_bridge/internal/config"
	"telemetry_bridge/internal/device"
	"telemetry_bridge/internal/handlers"
	"telemetry_bridge/internal/hub"
	"telemetry_bridge/internal/logger"
	"telemetry_bridge/internal/models"
	"telemetry_bridge/internal/mqtt"
	"telemetry_bridge/internal/repository"
	"telemetry_bridge/internal/repository/db"
	"telemetry_bridge/internal/server"
	"telemetry_bridge/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title        Telemetry Bridge API
// @version      1.0
// @description  Serial sensor bridge: live telemetry over /ws, device commands and a command journal.
// @BasePath     /
func main() {
	// load configs/config.yml (optional) + BRIDGE_* env
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.LogLevel)

	// open journal
	sqlDB, err := openJournal(cfg.Journal, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	if sqlDB != nil {
		defer func() {
			if cerr := sqlDB.Close(); cerr != nil {
				log.Errorw("failed to close sqlite", "err", cerr)
			}
		}()
	}

	// decide the telemetry source once
	h := hub.New(cfg.WS.SendBuffer, log.Named("hub"))
	bridge := newBridge(cfg.Serial, h, log)
	defer func() {
		if cerr := bridge.Close(); cerr != nil {
			log.Errorw("failed to close serial port", "err", cerr)
		}
	}()

	// wire dependencies
	var repos *repository.Repository
	if sqlDB != nil {
		repos = repository.NewRepository(sqlDB)
	}
	services := service.NewService(bridge, repos, cfg.Telemetry.ReportInterval)
	apiHandler := handlers.NewHandler(services, h, log.Named("http"))

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recordMode(ctx, services, bridge, log)

	// start telemetry source
	go services.Telemetry.Run(ctx)

	// optional MQTT mirror
	if cfg.MQTT.Enabled {
		mqttLog := log.Named("mqtt")
		mirror := mqtt.NewMirror(mqtt.NewClient(cfg.MQTT, mqttLog), h, cfg.MQTT.TopicPrefix, mqttLog)
		go mirror.Run(ctx)
	}

	// start HTTP server
	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
	services.Flush()
}

// newBridge opens the device or falls back to simulation. The connector logs
// port I/O under "serial"; everything built on the context logs under "bridge".
func newBridge(cfg config.SerialConfig, h *hub.Hub, log *logger.Logger) *service.BridgeContext {
	conn := device.NewConnector(cfg.BaudRate, cfg.ReadTimeout, cfg.SettleDelay, log.Named("serial"))
	return service.Establish(conn, cfg, h, log.Named("bridge"))
}

// openJournal opens the SQLite journal, or returns nil when it is disabled.
func openJournal(cfg config.JournalConfig, log *logger.Logger) (*sql.DB, error) {
	if !cfg.Enabled {
		log.Infow("journal_disabled")
		return nil, nil
	}
	return db.InitDB(cfg.Path)
}

// recordMode journals the startup connection decision.
func recordMode(ctx context.Context, services *service.Service, bridge *service.BridgeContext, log *logger.Logger) {
	meta := map[string]any{"mode": bridge.Mode()}
	if bridge.Connected() {
		meta["port"] = bridge.PortName()
		meta["baud"] = bridge.BaudRate
	}
	ev := models.BridgeEvent{
		Type:        service.EventTypeMode,
		Description: bridge.Mode(),
		Metadata:    meta,
	}
	if err := services.EventLog.Record(ctx, ev); err != nil {
		log.Warnw("journal_append_failed", "type", ev.Type, "err", err)
	}
	log.Infow("bridge_mode", "mode", bridge.Mode(), "port", bridge.PortName())
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http_listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop source loop and mirror
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
