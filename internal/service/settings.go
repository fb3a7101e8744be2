package service

import (
	"context"
	"time"

	"pumpsim"
	"pumpsim/internal/config"
	"pumpsim/internal/repository"

	"github.com/google/uuid"
)

// SettingsService exposes the four tunable parameters. Updates are
// all-or-nothing and leave a CONFIG_CHANGE audit event.
type SettingsService struct {
	cfg       *config.Config
	eventRepo repository.EventRepo
}

func NewSettingsService(cfg *config.Config, eventRepo repository.EventRepo) *SettingsService {
	return &SettingsService{cfg: cfg, eventRepo: eventRepo}
}

func (s *SettingsService) Get(ctx context.Context) config.Snapshot {
	return s.cfg.Snapshot()
}

// Update applies a partial parameter change. A new update interval takes
// effect on the scheduler's next fire; the other parameters are read by the
// machine once per tick.
func (s *SettingsService) Update(ctx context.Context, u config.Update) (config.Snapshot, error) {
	snap, err := s.cfg.Apply(u)
	if err != nil {
		return config.Snapshot{}, err
	}

	meta := map[string]any{}
	if u.FilterDegradationRateMinutes != nil {
		meta["filter_degradation_rate_minutes"] = *u.FilterDegradationRateMinutes
	}
	if u.AutoResetMinutes != nil {
		meta["auto_reset_minutes"] = *u.AutoResetMinutes
	}
	if u.DefaultOperatingLevel != nil {
		meta["default_operating_level"] = *u.DefaultOperatingLevel
	}
	if u.UpdateIntervalSeconds != nil {
		meta["update_interval_seconds"] = *u.UpdateIntervalSeconds
	}

	_ = s.eventRepo.Append(ctx, pumpsim.PumpEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        pumpsim.EventConfigChange,
		Description: "Simulation parameters updated",
		Metadata:    meta,
	})
	return snap, nil
}
