package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"pumpsim"
	"pumpsim/internal/config"

	"github.com/google/uuid"
)

// Error taxonomy for pump commands. Handlers map these onto protocol results.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBusy              = errors.New("pump is busy")
)

const (
	lockWait = 2 * time.Second
	lockPoll = time.Millisecond
)

// PumpMachine holds the authoritative in-memory pump state. A single mutex
// serializes commands against the simulation tick, so observers and the
// scheduler always see a fully applied transition.
type PumpMachine struct {
	mu  sync.Mutex
	cfg *config.Config
	st  pumpsim.PumpState
}

func NewPumpMachine(cfg *config.Config) *PumpMachine {
	snap := cfg.Snapshot()
	return &PumpMachine{
		cfg: cfg,
		st: pumpsim.PumpState{
			State:           pumpsim.StateStopped,
			OperatingLevel:  snap.DefaultOperatingLevel,
			FilterCondition: FilterFullPercent,
			LastCommand:     "none",
			UpdatedAt:       time.Now().UTC(),
		},
	}
}

// acquire takes the machine lock with a bounded wait so a stuck holder
// surfaces as ErrBusy instead of hanging the caller forever.
func (m *PumpMachine) acquire() error {
	deadline := time.Now().Add(lockWait)
	for !m.mu.TryLock() {
		if time.Now().After(deadline) {
			return fmt.Errorf("lock wait exceeded %v: %w", lockWait, ErrBusy)
		}
		time.Sleep(lockPoll)
	}
	return nil
}

func (m *PumpMachine) release() {
	m.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (m *PumpMachine) Snapshot() (pumpsim.PumpState, error) {
	if err := m.acquire(); err != nil {
		return pumpsim.PumpState{}, err
	}
	defer m.release()
	return m.copyState(), nil
}

// copyState deep-copies the state so callers never alias the live pointer.
func (m *PumpMachine) copyState() pumpsim.PumpState {
	cp := m.st
	if m.st.AlarmSince != nil {
		t := *m.st.AlarmSince
		cp.AlarmSince = &t
	}
	return cp
}

func (m *PumpMachine) record(now time.Time, cmd string, ok bool) {
	m.st.LastCommand = cmd
	m.st.CommandSuccess = ok
	m.st.UpdatedAt = now
}

// Start transitions STOPPED → RUNNING at the commanded level. Starting an
// already running pump is a no-op; an alarmed pump rejects the command.
func (m *PumpMachine) Start(now time.Time) (pumpsim.PumpState, []pumpsim.PumpEvent, error) {
	if err := m.acquire(); err != nil {
		return pumpsim.PumpState{}, nil, err
	}
	defer m.release()

	switch m.st.State {
	case pumpsim.StateAlarmed:
		m.record(now, "start", false)
		return pumpsim.PumpState{}, nil, fmt.Errorf("cannot start while alarmed: %w", ErrInvalidTransition)
	case pumpsim.StateRunning:
		m.record(now, "start", true)
		return m.copyState(), nil, nil
	}

	m.st.State = pumpsim.StateRunning
	m.st.FlowLPS, m.st.PowerW = computeOutputs(m.st.OperatingLevel, m.st.FilterCondition)
	m.record(now, "start", true)

	ev := newEvent(now, pumpsim.EventStart, "Pump started", map[string]any{
		"operating_level": m.st.OperatingLevel,
	})
	return m.copyState(), []pumpsim.PumpEvent{ev}, nil
}

// Stop transitions RUNNING → STOPPED. Flow and power drop to zero; filter
// wear is kept. Stopping a stopped pump is a no-op.
func (m *PumpMachine) Stop(now time.Time) (pumpsim.PumpState, []pumpsim.PumpEvent, error) {
	if err := m.acquire(); err != nil {
		return pumpsim.PumpState{}, nil, err
	}
	defer m.release()

	switch m.st.State {
	case pumpsim.StateAlarmed:
		m.record(now, "stop", false)
		return pumpsim.PumpState{}, nil, fmt.Errorf("cannot stop while alarmed: %w", ErrInvalidTransition)
	case pumpsim.StateStopped:
		m.record(now, "stop", true)
		return m.copyState(), nil, nil
	}

	m.st.State = pumpsim.StateStopped
	m.st.FlowLPS = 0
	m.st.PowerW = 0
	m.record(now, "stop", true)

	ev := newEvent(now, pumpsim.EventStop, "Pump stopped", nil)
	return m.copyState(), []pumpsim.PumpEvent{ev}, nil
}

// SetOperatingLevel sets the commanded level, valid in (0,100]. Allowed while
// stopped or running; a running pump recomputes flow and power immediately.
func (m *PumpMachine) SetOperatingLevel(now time.Time, level float64) (pumpsim.PumpState, []pumpsim.PumpEvent, error) {
	if err := m.acquire(); err != nil {
		return pumpsim.PumpState{}, nil, err
	}
	defer m.release()

	if level <= 0 || level > 100 {
		m.record(now, "set_level", false)
		return pumpsim.PumpState{}, nil, fmt.Errorf("operating level must be in (0,100], got %g: %w", level, ErrValidation)
	}
	if m.st.State == pumpsim.StateAlarmed {
		m.record(now, "set_level", false)
		return pumpsim.PumpState{}, nil, fmt.Errorf("cannot set level while alarmed: %w", ErrInvalidTransition)
	}

	prev := m.st.OperatingLevel
	m.st.OperatingLevel = level
	if m.st.State == pumpsim.StateRunning {
		m.st.FlowLPS, m.st.PowerW = computeOutputs(level, m.st.FilterCondition)
	}
	m.record(now, "set_level", true)

	ev := newEvent(now, pumpsim.EventLevelChange, "Operating level changed", map[string]any{
		"from": prev,
		"to":   level,
	})
	return m.copyState(), []pumpsim.PumpEvent{ev}, nil
}

// ResetFilter services the filter: condition back to 100, reset counter
// bumped. Clears an active alarm and returns the pump to STOPPED.
func (m *PumpMachine) ResetFilter(now time.Time) (pumpsim.PumpState, []pumpsim.PumpEvent, error) {
	return m.maintain(now, "reset_filter", pumpsim.EventFilterReset, "Filter reset")
}

// ChangeOil is the oil maintenance action. It services the filter exactly
// like a reset but is tracked under its own counter and event type.
func (m *PumpMachine) ChangeOil(now time.Time) (pumpsim.PumpState, []pumpsim.PumpEvent, error) {
	return m.maintain(now, "change_oil", pumpsim.EventOilChange, "Oil changed")
}

func (m *PumpMachine) maintain(now time.Time, cmd, eventType, desc string) (pumpsim.PumpState, []pumpsim.PumpEvent, error) {
	if err := m.acquire(); err != nil {
		return pumpsim.PumpState{}, nil, err
	}
	defer m.release()

	m.st.FilterCondition = FilterFullPercent
	switch eventType {
	case pumpsim.EventFilterReset:
		m.st.FilterResets++
	case pumpsim.EventOilChange:
		m.st.OilChanges++
	}

	switch m.st.State {
	case pumpsim.StateAlarmed:
		m.st.State = pumpsim.StateStopped
		m.st.AlarmActive = false
		m.st.AlarmSince = nil
		m.st.FlowLPS = 0
		m.st.PowerW = 0
	case pumpsim.StateRunning:
		m.st.FlowLPS, m.st.PowerW = computeOutputs(m.st.OperatingLevel, m.st.FilterCondition)
	}
	m.record(now, cmd, true)

	ev := newEvent(now, eventType, desc, nil)
	return m.copyState(), []pumpsim.PumpEvent{ev}, nil
}

// Advance applies one simulation tick of dt elapsed wall time. While running
// the filter wears, run hours accumulate, and outputs are recomputed; the
// alarm trips on the tick that crosses the threshold. While alarmed the
// machine auto-resets to STOPPED with a fresh filter once the configured
// period has passed.
func (m *PumpMachine) Advance(now time.Time, dt time.Duration) (pumpsim.PumpState, []pumpsim.PumpEvent, error) {
	if err := m.acquire(); err != nil {
		return pumpsim.PumpState{}, nil, err
	}
	defer m.release()

	snap := m.cfg.Snapshot()
	var events []pumpsim.PumpEvent

	switch m.st.State {
	case pumpsim.StateRunning:
		m.st.FilterCondition = degradeFilter(m.st.FilterCondition, dt.Minutes(), snap.FilterDegradationRateMinutes)
		m.st.RunHours += dt.Hours()
		m.st.FlowLPS, m.st.PowerW = computeOutputs(m.st.OperatingLevel, m.st.FilterCondition)

		if m.st.FilterCondition < AlarmThreshold {
			m.st.State = pumpsim.StateAlarmed
			m.st.AlarmActive = true
			since := now
			m.st.AlarmSince = &since
			m.st.FlowLPS = 0
			m.st.PowerW = StandbyPowerW
			events = append(events, newEvent(now, pumpsim.EventAlarm, "Filter below threshold", map[string]any{
				"filter_condition": m.st.FilterCondition,
			}))
		}

	case pumpsim.StateAlarmed:
		if m.st.AlarmSince != nil {
			elapsed := now.Sub(*m.st.AlarmSince)
			if elapsed.Minutes() >= snap.AutoResetMinutes {
				m.st.State = pumpsim.StateStopped
				m.st.AlarmActive = false
				m.st.AlarmSince = nil
				m.st.FilterCondition = FilterFullPercent
				m.st.FlowLPS = 0
				m.st.PowerW = 0
				events = append(events, newEvent(now, pumpsim.EventAutoReset, "Alarm auto reset", map[string]any{
					"alarmed_for_seconds": elapsed.Seconds(),
				}))
			}
		}
	}

	m.st.UpdatedAt = now
	return m.copyState(), events, nil
}

func newEvent(now time.Time, eventType, desc string, meta any) pumpsim.PumpEvent {
	return pumpsim.PumpEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        eventType,
		Description: desc,
		Metadata:    meta,
	}
}
