package pumpsim

import "time"

// Discrete pump states.
const (
	StateStopped = "STOPPED"
	StateRunning = "RUNNING"
	StateAlarmed = "ALARMED"
)

// Audit event types.
const (
	EventStart        = "START"
	EventStop         = "STOP"
	EventLevelChange  = "LEVEL_CHANGE"
	EventAlarm        = "ALARM"
	EventAutoReset    = "AUTO_RESET"
	EventFilterReset  = "FILTER_RESET"
	EventOilChange    = "OIL_CHANGE"
	EventConfigChange = "CONFIG_CHANGE"
)

// PumpState is the current snapshot of the pump.
type PumpState struct {
	State           string     `json:"state"`                 // STOPPED | RUNNING | ALARMED
	OperatingLevel  float64    `json:"operating_level"`       // commanded throughput, %
	FlowLPS         float64    `json:"flow_lps"`              // l/s, 0 unless RUNNING
	FilterCondition float64    `json:"filter_condition"`      // 100 = new, 0 = clogged
	PowerW          float64    `json:"power_w"`               // W
	AlarmActive     bool       `json:"alarm_active"`
	AlarmSince      *time.Time `json:"alarm_since,omitempty"` // set while ALARMED
	RunHours        float64    `json:"run_hours"`             // accumulated while RUNNING
	FilterResets    int        `json:"filter_resets"`         // maintenance counter
	OilChanges      int        `json:"oil_changes"`           // maintenance counter
	LastCommand     string     `json:"last_command"`
	CommandSuccess  bool       `json:"command_success"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PumpEvent is a single audit log entry.
type PumpEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // START | STOP | LEVEL_CHANGE | ALARM | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
}
