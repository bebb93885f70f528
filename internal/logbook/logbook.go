// Package logbook is the append-only activity log shown in the UI. Every line
// is also mirrored to zerolog so headless runs keep the same trail.
package logbook

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytget/direct-downloader/internal/model"
)

// EmptyText is what Text returns when nothing was logged yet
const EmptyText = "(no log)"

// Logbook collects activity lines in order
type Logbook struct {
	mu       sync.RWMutex
	entries  []model.LogEntry
	log      zerolog.Logger
	now      func() time.Time
	onAppend func(model.LogEntry) // callback for UI updates
}

// New creates an empty logbook mirroring to log
func New(log zerolog.Logger) *Logbook {
	return &Logbook{
		log: log,
		now: time.Now,
	}
}

// SetAppendCallback sets the function called after each new entry
func (l *Logbook) SetAppendCallback(callback func(model.LogEntry)) {
	l.mu.Lock()
	l.onAppend = callback
	l.mu.Unlock()
}

// Add appends a line with the given severity
func (l *Logbook) Add(severity model.Severity, message string) {
	entry := model.LogEntry{
		Time:     l.now(),
		Severity: severity,
		Message:  message,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	callback := l.onAppend
	l.mu.Unlock()

	l.mirror(entry)

	if callback != nil {
		callback(entry)
	}
}

// Infof appends an info line
func (l *Logbook) Infof(format string, args ...any) {
	l.Add(model.SeverityInfo, fmt.Sprintf(format, args...))
}

// OKf appends a success line
func (l *Logbook) OKf(format string, args ...any) {
	l.Add(model.SeverityOK, fmt.Sprintf(format, args...))
}

// Warnf appends a warning line
func (l *Logbook) Warnf(format string, args ...any) {
	l.Add(model.SeverityWarn, fmt.Sprintf(format, args...))
}

// Badf appends a failure line
func (l *Logbook) Badf(format string, args ...any) {
	l.Add(model.SeverityBad, fmt.Sprintf(format, args...))
}

// Entries returns a copy of all entries
func (l *Logbook) Entries() []model.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]model.LogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Len returns the number of entries
func (l *Logbook) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Text renders the log as plain text, one "[hh:mm:ss] message" per line
func (l *Logbook) Text() string {
	entries := l.Entries()
	if len(entries) == 0 {
		return EmptyText
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, entry.String())
	}
	return strings.Join(lines, "\n")
}

func (l *Logbook) mirror(entry model.LogEntry) {
	switch entry.Severity {
	case model.SeverityOK:
		l.log.Info().Bool("ok", true).Msg(entry.Message)
	case model.SeverityWarn:
		l.log.Warn().Msg(entry.Message)
	case model.SeverityBad:
		l.log.Error().Msg(entry.Message)
	default:
		l.log.Info().Msg(entry.Message)
	}
}
