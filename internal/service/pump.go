package service

import (
	"context"
	"time"

	"pumpsim"
	"pumpsim/internal/repository"
)

// PumpService forwards validated commands to the state machine and records
// the outcome: the post-command snapshot is published to the state repo and
// every transition leaves an audit event.
type PumpService struct {
	machine   *PumpMachine
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
}

func NewPumpService(machine *PumpMachine, stateRepo repository.StateRepo, eventRepo repository.EventRepo) *PumpService {
	return &PumpService{machine: machine, stateRepo: stateRepo, eventRepo: eventRepo}
}

func (s *PumpService) Start(ctx context.Context) (pumpsim.PumpState, error) {
	snap, events, err := s.machine.Start(time.Now().UTC())
	if err != nil {
		return pumpsim.PumpState{}, err
	}
	s.publish(ctx, snap, events)
	return snap, nil
}

func (s *PumpService) Stop(ctx context.Context) (pumpsim.PumpState, error) {
	snap, events, err := s.machine.Stop(time.Now().UTC())
	if err != nil {
		return pumpsim.PumpState{}, err
	}
	s.publish(ctx, snap, events)
	return snap, nil
}

func (s *PumpService) SetOperatingLevel(ctx context.Context, level float64) (pumpsim.PumpState, error) {
	snap, events, err := s.machine.SetOperatingLevel(time.Now().UTC(), level)
	if err != nil {
		return pumpsim.PumpState{}, err
	}
	s.publish(ctx, snap, events)
	return snap, nil
}

func (s *PumpService) ResetFilter(ctx context.Context) (pumpsim.PumpState, error) {
	snap, events, err := s.machine.ResetFilter(time.Now().UTC())
	if err != nil {
		return pumpsim.PumpState{}, err
	}
	s.publish(ctx, snap, events)
	return snap, nil
}

func (s *PumpService) ChangeOil(ctx context.Context) (pumpsim.PumpState, error) {
	snap, events, err := s.machine.ChangeOil(time.Now().UTC())
	if err != nil {
		return pumpsim.PumpState{}, err
	}
	s.publish(ctx, snap, events)
	return snap, nil
}

// publish is best-effort: persistence failures must not undo a transition
// that already happened in the machine.
func (s *PumpService) publish(ctx context.Context, snap pumpsim.PumpState, events []pumpsim.PumpEvent) {
	_ = s.stateRepo.Save(ctx, snap)
	for _, ev := range events {
		_ = s.eventRepo.Append(ctx, ev)
	}
}
