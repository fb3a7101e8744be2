package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Environment variables consumed at startup. Each may also be set under the
// "pump" section of the config file; the environment wins.
const (
	EnvFilterDegradationRate = "PUMP_FILTER_DEGRADATION_RATE"
	EnvAutoResetMinutes      = "PUMP_AUTO_RESET_MINUTES"
	EnvDefaultOperatingLevel = "PUMP_DEFAULT_OPERATING_LEVEL"
	EnvUpdateInterval        = "PUMP_UPDATE_INTERVAL"
)

// Defaults applied when neither environment nor config file set a value.
const (
	defaultFilterRateMinutes = 30.0
	defaultAutoResetMinutes  = 3.0
	defaultOperatingLevel    = 75.0
	defaultIntervalSeconds   = 2.0

	minIntervalSeconds = 0.1
	maxIntervalSeconds = 60.0
)

// ErrInvalidParameter marks a rejected parameter value. Callers can match it
// with errors.Is to distinguish bad input from infrastructure failures.
var ErrInvalidParameter = errors.New("invalid parameter")

// Config holds the four runtime-tunable simulation parameters. All access
// goes through the embedded lock so a reader never observes a half-applied
// update.
type Config struct {
	mu sync.RWMutex

	filterRateMinutes float64 // minutes for filter 100 → 0 while running
	autoResetMinutes  float64 // minutes in alarm before automatic reset
	defaultLevel      float64 // operating level applied on pump start, (0,100]
	intervalSeconds   float64 // tick period, seconds
}

// Snapshot is a consistent copy of all four parameters.
type Snapshot struct {
	FilterDegradationRateMinutes float64 `json:"filter_degradation_rate_minutes"`
	AutoResetMinutes             float64 `json:"auto_reset_minutes"`
	DefaultOperatingLevel        float64 `json:"default_operating_level"`
	UpdateIntervalSeconds        float64 `json:"update_interval_seconds"`
}

// Update carries a partial parameter change; nil fields are left untouched.
// Validation is all-or-nothing: a single bad field rejects the whole update.
type Update struct {
	FilterDegradationRateMinutes *float64 `json:"filter_degradation_rate_minutes,omitempty"`
	AutoResetMinutes             *float64 `json:"auto_reset_minutes,omitempty"`
	DefaultOperatingLevel        *float64 `json:"default_operating_level,omitempty"`
	UpdateIntervalSeconds        *float64 `json:"update_interval_seconds,omitempty"`
}

// Load reads the simulation parameters from the environment (with config
// file fallback) and validates them. Invalid values abort startup; the error
// names the offending variable.
func Load() (*Config, error) {
	viper.SetDefault("pump.filter_degradation_rate", defaultFilterRateMinutes)
	viper.SetDefault("pump.auto_reset_minutes", defaultAutoResetMinutes)
	viper.SetDefault("pump.default_operating_level", defaultOperatingLevel)
	viper.SetDefault("pump.update_interval", defaultIntervalSeconds)

	_ = viper.BindEnv("pump.filter_degradation_rate", EnvFilterDegradationRate)
	_ = viper.BindEnv("pump.auto_reset_minutes", EnvAutoResetMinutes)
	_ = viper.BindEnv("pump.default_operating_level", EnvDefaultOperatingLevel)
	_ = viper.BindEnv("pump.update_interval", EnvUpdateInterval)

	c := &Config{
		filterRateMinutes: viper.GetFloat64("pump.filter_degradation_rate"),
		autoResetMinutes:  viper.GetFloat64("pump.auto_reset_minutes"),
		defaultLevel:      viper.GetFloat64("pump.default_operating_level"),
		intervalSeconds:   viper.GetFloat64("pump.update_interval"),
	}

	if err := validateFilterRate(c.filterRateMinutes); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvFilterDegradationRate, err)
	}
	if err := validateAutoReset(c.autoResetMinutes); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvAutoResetMinutes, err)
	}
	if err := validateLevel(c.defaultLevel); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvDefaultOperatingLevel, err)
	}
	if err := validateInterval(c.intervalSeconds); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvUpdateInterval, err)
	}
	return c, nil
}

// New builds a Config from explicit values, validating them the same way
// Load does. Used by tests and anywhere env parsing is not wanted.
func New(s Snapshot) (*Config, error) {
	c := &Config{
		filterRateMinutes: s.FilterDegradationRateMinutes,
		autoResetMinutes:  s.AutoResetMinutes,
		defaultLevel:      s.DefaultOperatingLevel,
		intervalSeconds:   s.UpdateIntervalSeconds,
	}
	if err := validateFilterRate(c.filterRateMinutes); err != nil {
		return nil, err
	}
	if err := validateAutoReset(c.autoResetMinutes); err != nil {
		return nil, err
	}
	if err := validateLevel(c.defaultLevel); err != nil {
		return nil, err
	}
	if err := validateInterval(c.intervalSeconds); err != nil {
		return nil, err
	}
	return c, nil
}

// Snapshot returns all four parameters under one read lock.
func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		FilterDegradationRateMinutes: c.filterRateMinutes,
		AutoResetMinutes:             c.autoResetMinutes,
		DefaultOperatingLevel:        c.defaultLevel,
		UpdateIntervalSeconds:        c.intervalSeconds,
	}
}

// UpdateInterval returns the tick period as a duration.
func (c *Config) UpdateInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.intervalSeconds * float64(time.Second))
}

// Apply validates every set field and, only if all pass, assigns them under
// one write lock. Returns the resulting snapshot.
func (c *Config) Apply(u Update) (Snapshot, error) {
	if u.FilterDegradationRateMinutes != nil {
		if err := validateFilterRate(*u.FilterDegradationRateMinutes); err != nil {
			return Snapshot{}, fmt.Errorf("filter_degradation_rate_minutes: %w", err)
		}
	}
	if u.AutoResetMinutes != nil {
		if err := validateAutoReset(*u.AutoResetMinutes); err != nil {
			return Snapshot{}, fmt.Errorf("auto_reset_minutes: %w", err)
		}
	}
	if u.DefaultOperatingLevel != nil {
		if err := validateLevel(*u.DefaultOperatingLevel); err != nil {
			return Snapshot{}, fmt.Errorf("default_operating_level: %w", err)
		}
	}
	if u.UpdateIntervalSeconds != nil {
		if err := validateInterval(*u.UpdateIntervalSeconds); err != nil {
			return Snapshot{}, fmt.Errorf("update_interval_seconds: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if u.FilterDegradationRateMinutes != nil {
		c.filterRateMinutes = *u.FilterDegradationRateMinutes
	}
	if u.AutoResetMinutes != nil {
		c.autoResetMinutes = *u.AutoResetMinutes
	}
	if u.DefaultOperatingLevel != nil {
		c.defaultLevel = *u.DefaultOperatingLevel
	}
	if u.UpdateIntervalSeconds != nil {
		c.intervalSeconds = *u.UpdateIntervalSeconds
	}
	return Snapshot{
		FilterDegradationRateMinutes: c.filterRateMinutes,
		AutoResetMinutes:             c.autoResetMinutes,
		DefaultOperatingLevel:        c.defaultLevel,
		UpdateIntervalSeconds:        c.intervalSeconds,
	}, nil
}

func validateFilterRate(v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: must be a positive number of minutes, got %v", ErrInvalidParameter, v)
	}
	return nil
}

func validateAutoReset(v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: must be a positive number of minutes, got %v", ErrInvalidParameter, v)
	}
	return nil
}

func validateLevel(v float64) error {
	if v <= 0 || v > 100 {
		return fmt.Errorf("%w: must be in (0,100], got %v", ErrInvalidParameter, v)
	}
	return nil
}

func validateInterval(v float64) error {
	if v < minIntervalSeconds || v > maxIntervalSeconds {
		return fmt.Errorf("%w: must be between %v and %v seconds, got %v",
			ErrInvalidParameter, minIntervalSeconds, maxIntervalSeconds, v)
	}
	return nil
}
