package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pumpsim"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	pumpStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO pump_state (id, state, operating_level, flow_lps, filter_condition, power_w,
			alarm_active, alarm_since, run_hours, filter_resets, oil_changes,
			last_command, command_success, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state=excluded.state,
			operating_level=excluded.operating_level,
			flow_lps=excluded.flow_lps,
			filter_condition=excluded.filter_condition,
			power_w=excluded.power_w,
			alarm_active=excluded.alarm_active,
			alarm_since=excluded.alarm_since,
			run_hours=excluded.run_hours,
			filter_resets=excluded.filter_resets,
			oil_changes=excluded.oil_changes,
			last_command=excluded.last_command,
			command_success=excluded.command_success,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT state, operating_level, flow_lps, filter_condition, power_w,
			alarm_active, alarm_since, run_hours, filter_resets, oil_changes,
			last_command, command_success, updated_at
		FROM pump_state WHERE id=?
	`
)

// Save upserts the published snapshot row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state pumpsim.PumpState) error {
	// ensure UpdatedAt is always persisted as UTC; set if zero
	tsUTC := state.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	var alarmSince any
	if state.AlarmSince != nil {
		alarmSince = state.AlarmSince.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		pumpStateRowID,
		state.State,
		state.OperatingLevel,
		state.FlowLPS,
		state.FilterCondition,
		state.PowerW,
		state.AlarmActive,
		alarmSince,
		state.RunHours,
		state.FilterResets,
		state.OilChanges,
		state.LastCommand,
		state.CommandSuccess,
		tsUTC,
	)
	return err
}

// Load fetches the single published snapshot row (id=1). Returns a zero
// snapshot when nothing was published yet.
func (r *StateSQLite) Load(ctx context.Context) (pumpsim.PumpState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, pumpStateRowID)

	var s pumpsim.PumpState
	var alarmSince sql.NullTime
	if err := row.Scan(
		&s.State,
		&s.OperatingLevel,
		&s.FlowLPS,
		&s.FilterCondition,
		&s.PowerW,
		&s.AlarmActive,
		&alarmSince,
		&s.RunHours,
		&s.FilterResets,
		&s.OilChanges,
		&s.LastCommand,
		&s.CommandSuccess,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pumpsim.PumpState{}, nil // nothing published yet
		}
		return pumpsim.PumpState{}, err
	}

	if alarmSince.Valid {
		t := alarmSince.Time.UTC()
		s.AlarmSince = &t
	}
	s.UpdatedAt = s.UpdatedAt.UTC()

	return s, nil
}
