package service

import "time"

// LogFilter supports audit history filtering by time range and event type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "START", "STOP", "LEVEL_CHANGE", "ALARM", ...
}
