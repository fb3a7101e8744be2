package service

import (
	"errors"
	"testing"
	"time"

	"pumpsim"
	"pumpsim/internal/config"
)

func testConfig(t *testing.T, s config.Snapshot) *config.Config {
	t.Helper()
	c, err := config.New(s)
	if err != nil {
		t.Fatalf("test config: %v", err)
	}
	return c
}

func defaultTestConfig(t *testing.T) *config.Config {
	return testConfig(t, config.Snapshot{
		FilterDegradationRateMinutes: 30,
		AutoResetMinutes:             3,
		DefaultOperatingLevel:        75,
		UpdateIntervalSeconds:        2,
	})
}

func mustStart(t *testing.T, m *PumpMachine, now time.Time) pumpsim.PumpState {
	t.Helper()
	st, _, err := m.Start(now)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return st
}

func TestNewMachine_StoppedWithFreshFilterAndDefaultLevel(t *testing.T) {
	m := NewPumpMachine(defaultTestConfig(t))
	st, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if st.State != pumpsim.StateStopped {
		t.Fatalf("expected STOPPED, got %q", st.State)
	}
	if st.FilterCondition != 100 {
		t.Fatalf("expected fresh filter, got %.2f", st.FilterCondition)
	}
	if st.OperatingLevel != 75 {
		t.Fatalf("expected default level 75, got %.2f", st.OperatingLevel)
	}
	if st.FlowLPS != 0 {
		t.Fatalf("flow must be 0 while not running, got %.2f", st.FlowLPS)
	}
}

func TestAdvance_DecayFormulaWhileRunning(t *testing.T) {
	m := NewPumpMachine(defaultTestConfig(t))
	now := time.Now().UTC()
	mustStart(t, m, now)

	dt := 30 * time.Second
	st, _, err := m.Advance(now.Add(dt), dt)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	want := 100 - 100*dt.Minutes()/30
	if st.FilterCondition != want {
		t.Fatalf("filter got %.6f, want %.6f", st.FilterCondition, want)
	}
	if st.RunHours == 0 {
		t.Fatalf("run hours should accumulate while running")
	}
}

func TestAdvance_FlowAndPowerMonotonicAcrossTicks(t *testing.T) {
	m := NewPumpMachine(defaultTestConfig(t))
	now := time.Now().UTC()
	mustStart(t, m, now)

	dt := time.Minute
	st1, _, err := m.Advance(now.Add(dt), dt)
	if err != nil {
		t.Fatalf("Advance 1: %v", err)
	}
	st2, _, err := m.Advance(now.Add(2*dt), dt)
	if err != nil {
		t.Fatalf("Advance 2: %v", err)
	}

	if st1.FilterCondition <= st2.FilterCondition {
		t.Fatalf("filter must decrease: %.2f then %.2f", st1.FilterCondition, st2.FilterCondition)
	}
	if st1.FlowLPS <= st2.FlowLPS {
		t.Fatalf("flow must decrease with filter: %.2f then %.2f", st1.FlowLPS, st2.FlowLPS)
	}
	if st1.PowerW >= st2.PowerW {
		t.Fatalf("power must increase with wear: %.2f then %.2f", st1.PowerW, st2.PowerW)
	}
}

func TestStart_IdempotentWhileRunning(t *testing.T) {
	m := NewPumpMachine(defaultTestConfig(t))
	now := time.Now().UTC()

	first := mustStart(t, m, now)
	second, events, err := m.Start(now)
	if err != nil {
		t.Fatalf("second Start must be a no-op, got %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("no-op start should not emit events, got %d", len(events))
	}
	if first.State != second.State ||
		first.OperatingLevel != second.OperatingLevel ||
		first.FilterCondition != second.FilterCondition ||
		first.FlowLPS != second.FlowLPS ||
		first.PowerW != second.PowerW {
		t.Fatalf("double start diverged: %+v vs %+v", first, second)
	}
}

func TestStop_ForcesFlowToZeroKeepsFilterWear(t *testing.T) {
	m := NewPumpMachine(defaultTestConfig(t))
	now := time.Now().UTC()
	mustStart(t, m, now)
	if _, _, err := m.Advance(now.Add(time.Minute), time.Minute); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	st, _, err := m.Stop(now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if st.State != pumpsim.StateStopped || st.FlowLPS != 0 || st.PowerW != 0 {
		t.Fatalf("unexpected stopped state: %+v", st)
	}
	if st.FilterCondition == 100 {
		t.Fatalf("stop must not reset filter wear")
	}

	// stopping again is a no-op
	if _, _, err := m.Stop(now.Add(time.Minute)); err != nil {
		t.Fatalf("second Stop must be a no-op, got %v", err)
	}
}

func TestAdvance_AlarmTripsOnCrossingTick(t *testing.T) {
	m := NewPumpMachine(testConfig(t, config.Snapshot{
		FilterDegradationRateMinutes: 1, // filter dies in a minute
		AutoResetMinutes:             1,
		DefaultOperatingLevel:        75,
		UpdateIntervalSeconds:        2,
	}))
	now := time.Now().UTC()
	mustStart(t, m, now)

	// 0.6 min → filter 40, still running
	dt := 36 * time.Second
	st, events, err := m.Advance(now.Add(dt), dt)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.State != pumpsim.StateRunning || len(events) != 0 {
		t.Fatalf("should still be running at filter %.1f", st.FilterCondition)
	}

	// another 0.2 min → filter 20, crosses 30: alarm on this very tick
	dt2 := 12 * time.Second
	st, events, err = m.Advance(now.Add(dt+dt2), dt2)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.State != pumpsim.StateAlarmed || !st.AlarmActive {
		t.Fatalf("expected ALARMED on the crossing tick, got %+v", st)
	}
	if st.FlowLPS != 0 {
		t.Fatalf("flow must be forced to 0 on the alarm tick, got %.2f", st.FlowLPS)
	}
	if st.AlarmSince == nil {
		t.Fatalf("alarm timestamp missing")
	}
	if len(events) != 1 || events[0].Type != pumpsim.EventAlarm {
		t.Fatalf("expected one ALARM event, got %+v", events)
	}
}

func alarmedMachine(t *testing.T, autoResetMinutes float64) (*PumpMachine, time.Time) {
	t.Helper()
	m := NewPumpMachine(testConfig(t, config.Snapshot{
		FilterDegradationRateMinutes: 1,
		AutoResetMinutes:             autoResetMinutes,
		DefaultOperatingLevel:        75,
		UpdateIntervalSeconds:        2,
	}))
	now := time.Now().UTC()
	mustStart(t, m, now)
	alarmAt := now.Add(time.Minute)
	st, _, err := m.Advance(alarmAt, time.Minute)
	if err != nil {
		t.Fatalf("Advance to alarm: %v", err)
	}
	if st.State != pumpsim.StateAlarmed {
		t.Fatalf("setup failed, expected ALARMED got %q", st.State)
	}
	return m, alarmAt
}

func TestAdvance_AutoResetAfterConfiguredPeriod(t *testing.T) {
	m, alarmAt := alarmedMachine(t, 1)

	// 30s in alarm: too early
	st, events, err := m.Advance(alarmAt.Add(30*time.Second), 30*time.Second)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.State != pumpsim.StateAlarmed || len(events) != 0 {
		t.Fatalf("auto-reset fired too early: %+v", st)
	}

	// past the full minute: cycle restarts from scratch
	st, events, err = m.Advance(alarmAt.Add(61*time.Second), 31*time.Second)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.State != pumpsim.StateStopped || st.AlarmActive || st.AlarmSince != nil {
		t.Fatalf("expected auto-reset to STOPPED, got %+v", st)
	}
	if st.FilterCondition != 100 {
		t.Fatalf("auto-reset must renew the filter, got %.2f", st.FilterCondition)
	}
	if len(events) != 1 || events[0].Type != pumpsim.EventAutoReset {
		t.Fatalf("expected one AUTO_RESET event, got %+v", events)
	}
}

func TestMaintenance_WhileRunningKeepsRunning(t *testing.T) {
	m := NewPumpMachine(defaultTestConfig(t))
	now := time.Now().UTC()
	mustStart(t, m, now)
	if _, _, err := m.Advance(now.Add(time.Minute), time.Minute); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	st, events, err := m.ResetFilter(now.Add(time.Minute))
	if err != nil {
		t.Fatalf("ResetFilter: %v", err)
	}
	if st.State != pumpsim.StateRunning {
		t.Fatalf("reset must not stop a running pump, got %q", st.State)
	}
	if st.FilterCondition != 100 || st.FilterResets != 1 {
		t.Fatalf("unexpected filter state: %+v", st)
	}
	if len(events) != 1 || events[0].Type != pumpsim.EventFilterReset {
		t.Fatalf("expected FILTER_RESET event, got %+v", events)
	}

	st, events, err = m.ChangeOil(now.Add(2 * time.Minute))
	if err != nil {
		t.Fatalf("ChangeOil: %v", err)
	}
	if st.State != pumpsim.StateRunning || st.OilChanges != 1 {
		t.Fatalf("unexpected state after oil change: %+v", st)
	}
	if len(events) != 1 || events[0].Type != pumpsim.EventOilChange {
		t.Fatalf("expected OIL_CHANGE event, got %+v", events)
	}
}

func TestMaintenance_ClearsAlarmToStopped(t *testing.T) {
	m, alarmAt := alarmedMachine(t, 60)

	st, _, err := m.ResetFilter(alarmAt.Add(time.Second))
	if err != nil {
		t.Fatalf("ResetFilter: %v", err)
	}
	if st.State != pumpsim.StateStopped || st.AlarmActive {
		t.Fatalf("reset while alarmed must return to STOPPED, got %+v", st)
	}
	if st.FilterCondition != 100 || st.FlowLPS != 0 {
		t.Fatalf("unexpected post-reset state: %+v", st)
	}
}

func TestSetOperatingLevel_RejectsOutOfRange(t *testing.T) {
	m := NewPumpMachine(defaultTestConfig(t))
	now := time.Now().UTC()

	before, _ := m.Snapshot()
	for _, bad := range []float64{150, 0, -5} {
		_, _, err := m.SetOperatingLevel(now, bad)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("level %g: expected ErrValidation, got %v", bad, err)
		}
	}
	after, _ := m.Snapshot()
	if after.OperatingLevel != before.OperatingLevel {
		t.Fatalf("rejected write must leave level unchanged: %.2f vs %.2f",
			before.OperatingLevel, after.OperatingLevel)
	}
	if after.CommandSuccess {
		t.Fatalf("rejected command should be audited as failed")
	}
}

func TestSetOperatingLevel_RecomputesWhileRunning(t *testing.T) {
	m := NewPumpMachine(defaultTestConfig(t))
	now := time.Now().UTC()
	st := mustStart(t, m, now)
	flowBefore := st.FlowLPS

	st, _, err := m.SetOperatingLevel(now, 30)
	if err != nil {
		t.Fatalf("SetOperatingLevel: %v", err)
	}
	if st.OperatingLevel != 30 {
		t.Fatalf("level not applied: %+v", st)
	}
	if st.FlowLPS >= flowBefore {
		t.Fatalf("lower level must lower flow: %.2f -> %.2f", flowBefore, st.FlowLPS)
	}
}

func TestCommandsRejectedWhileAlarmed(t *testing.T) {
	m, alarmAt := alarmedMachine(t, 60)

	if _, _, err := m.Start(alarmAt.Add(time.Second)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("start while alarmed: expected ErrInvalidTransition, got %v", err)
	}
	if _, _, err := m.Stop(alarmAt.Add(time.Second)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("stop while alarmed: expected ErrInvalidTransition, got %v", err)
	}
	if _, _, err := m.SetOperatingLevel(alarmAt.Add(time.Second), 50); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("set level while alarmed: expected ErrInvalidTransition, got %v", err)
	}

	st, _ := m.Snapshot()
	if st.State != pumpsim.StateAlarmed {
		t.Fatalf("rejected commands must not change state, got %q", st.State)
	}
}

func TestFlowZeroWheneverNotRunning(t *testing.T) {
	m := NewPumpMachine(defaultTestConfig(t))

	st, _ := m.Snapshot()
	if st.FlowLPS != 0 {
		t.Fatalf("STOPPED flow must be 0, got %.2f", st.FlowLPS)
	}

	alarmed, alarmAt := alarmedMachine(t, 60)
	st, _, err := alarmed.Advance(alarmAt.Add(time.Second), time.Second)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.FlowLPS != 0 {
		t.Fatalf("ALARMED flow must be 0, got %.2f", st.FlowLPS)
	}
}
