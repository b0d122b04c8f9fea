package service

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"telemetry_bridge/internal/hub"
	"telemetry_bridge/internal/logger"
	"telemetry_bridge/internal/models"
)

// ----------- Simulated sensor ranges -----------
const (
	SimMQMin   = 300
	SimMQMax   = 700
	SimSoilMin = 20
	SimSoilMax = 80
	SimTempMin = 22.0 // °C
	SimTempMax = 30.0 // °C
	SimHumMin  = 35.0 // %
	SimHumMax  = 70.0 // %
)

// SimulatorService emits plausible readings when no device is connected.
type SimulatorService struct {
	hub      *hub.Hub
	interval time.Duration
	rnd      *rand.Rand
	log      *logger.Logger
}

// NewSimulatorService returns a simulator publishing every interval.
func NewSimulatorService(h *hub.Hub, interval time.Duration, log *logger.Logger) *SimulatorService {
	if log == nil {
		log = logger.Nop()
	}
	seed := uint64(time.Now().UnixNano())
	return &SimulatorService{
		hub:      h,
		interval: interval,
		rnd:      rand.New(rand.NewPCG(seed, seed>>1|1)),
		log:      log,
	}
}

// Run publishes one sample immediately, then one per interval until ctx is
// cancelled.
func (s *SimulatorService) Run(ctx context.Context) {
	s.log.Infow("simulator_started", "interval", s.interval)
	defer s.log.Infow("simulator_stopped")

	s.hub.PublishTelemetry(s.Sample())

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.hub.PublishTelemetry(s.Sample())
		}
	}
}

// Sample draws one record. Not safe for concurrent use.
func (s *SimulatorService) Sample() models.TelemetryRecord {
	return models.TelemetryRecord{
		MQ:    s.intIn(SimMQMin, SimMQMax),
		Soil:  s.intIn(SimSoilMin, SimSoilMax),
		Temp:  s.tenthIn(SimTempMin, SimTempMax),
		Hum:   s.tenthIn(SimHumMin, SimHumMax),
		Relay: 0,
	}
}

// intIn returns a uniform integer in [lo, hi].
func (s *SimulatorService) intIn(lo, hi int) int {
	return lo + s.rnd.IntN(hi-lo+1)
}

// tenthIn returns a uniform value in [lo, hi] rounded to one decimal.
func (s *SimulatorService) tenthIn(lo, hi float64) float64 {
	return roundTenth(lo + s.rnd.Float64()*(hi-lo))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
