package model

import (
	"fmt"
	"time"
)

// LogTimeLayout is the clock format used in the activity log
const LogTimeLayout = "15:04:05"

// Severity of an activity log line
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityOK   Severity = "ok"
	SeverityWarn Severity = "warn"
	SeverityBad  Severity = "bad"
)

// LogEntry is one line of the user-visible activity log
type LogEntry struct {
	Time     time.Time
	Severity Severity
	Message  string
}

// String renders the entry as "[hh:mm:ss] message"
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format(LogTimeLayout), e.Message)
}
