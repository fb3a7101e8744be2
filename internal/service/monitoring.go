package service

import (
	"context"

	"pumpsim"
	"pumpsim/internal/repository"
)

// MonitoringService serves the read side from the published snapshot, which
// is eventually consistent with the last completed tick. Before the first
// publish it falls back to a live machine snapshot.
type MonitoringService struct {
	machine   *PumpMachine
	stateRepo repository.StateRepo
}

func NewMonitoringService(machine *PumpMachine, stateRepo repository.StateRepo) *MonitoringService {
	return &MonitoringService{machine: machine, stateRepo: stateRepo}
}

func (s *MonitoringService) GetState(ctx context.Context) (pumpsim.PumpState, error) {
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return pumpsim.PumpState{}, err
	}
	if st.State == "" {
		// nothing published yet
		return s.machine.Snapshot()
	}
	return st, nil
}
