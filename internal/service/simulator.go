package service

import (
	"context"
	"time"

	"pumpsim"
	"pumpsim/internal/config"
	"pumpsim/internal/repository"
)

// SimulatorService drives the periodic tick: measure elapsed real time,
// advance the machine, publish the snapshot.
type SimulatorService struct {
	machine   *PumpMachine
	cfg       *config.Config
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
}

func NewSimulatorService(machine *PumpMachine, cfg *config.Config, stateRepo repository.StateRepo, eventRepo repository.EventRepo) *SimulatorService {
	return &SimulatorService{
		machine:   machine,
		cfg:       cfg,
		stateRepo: stateRepo,
		eventRepo: eventRepo,
	}
}

// Run ticks until ctx is canceled. The timer is re-armed with the currently
// configured interval after each completed tick, so an interval change never
// touches the tick in flight and takes effect on the next fire.
// Cancellation is only observed between ticks; an advance is never torn.
func (s *SimulatorService) Run(ctx context.Context) {
	timer := time.NewTimer(s.cfg.UpdateInterval())
	defer timer.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-timer.C:
			dt := now.Sub(last)
			last = now

			snap, events, err := s.machine.Advance(now.UTC(), dt)
			if err == nil {
				s.publish(ctx, snap, events)
			}
			timer.Reset(s.cfg.UpdateInterval())
		}
	}
}

func (s *SimulatorService) publish(ctx context.Context, snap pumpsim.PumpState, events []pumpsim.PumpEvent) {
	_ = s.stateRepo.Save(ctx, snap)
	for _, ev := range events {
		_ = s.eventRepo.Append(ctx, ev)
	}
}
