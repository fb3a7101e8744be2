package service

import (
	"context"

	"pumpsim"
	"pumpsim/internal/config"
	"pumpsim/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Pump exposes the pump control operations. Each returns the post-command
// snapshot so callers can answer with fresh state without a second read.
type Pump interface {
	Start(ctx context.Context) (pumpsim.PumpState, error)
	Stop(ctx context.Context) (pumpsim.PumpState, error)
	SetOperatingLevel(ctx context.Context, level float64) (pumpsim.PumpState, error)
	ResetFilter(ctx context.Context) (pumpsim.PumpState, error)
	ChangeOil(ctx context.Context) (pumpsim.PumpState, error)
}

// Monitoring exposes read-only pump state (level, flow, filter, power, alarm).
type Monitoring interface {
	GetState(ctx context.Context) (pumpsim.PumpState, error)
}

// Settings exposes the four tunable simulation parameters.
type Settings interface {
	Get(ctx context.Context) config.Snapshot
	Update(ctx context.Context, u config.Update) (config.Snapshot, error)
}

// EventLog exposes the append-only audit log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]pumpsim.PumpEvent, error)
}

// Simulator runs the background tick loop that advances the pump model.
// Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context)
}

// Service aggregates all sub-services behind one wiring point.
type Service struct {
	Pump
	Monitoring
	Settings
	EventLog
	Simulator
	Authorization
}

// NewService wires the repository layer, the shared config and the single
// pump machine into the concrete services.
func NewService(repos *repository.Repository, cfg *config.Config, machine *PumpMachine) *Service {
	return &Service{
		Pump:          NewPumpService(machine, repos.StateRepo, repos.EventRepo),
		Monitoring:    NewMonitoringService(machine, repos.StateRepo),
		Settings:      NewSettingsService(cfg, repos.EventRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Simulator:     NewSimulatorService(machine, cfg, repos.StateRepo, repos.EventRepo),
		Authorization: NewAuthService(repos.Auth),
	}
}
