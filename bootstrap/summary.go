package bootstrap

import (
	"time"

	"github.com/kbukum/filesig/logger"
)

// SummaryEntry is one line of the startup summary.
type SummaryEntry struct {
	Name    string
	Details string
}

// Summary records what the application set up before its task ran.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	entries         []SummaryEntry
}

// NewSummary creates a new startup summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// StartupDuration returns the recorded startup time.
func (s *Summary) StartupDuration() time.Duration {
	return s.startupDuration
}

// Track adds an entry, typically an exporter or other piece of infrastructure.
func (s *Summary) Track(name, details string) {
	s.entries = append(s.entries, SummaryEntry{Name: name, Details: details})
}

// Entries returns the tracked entries in order.
func (s *Summary) Entries() []SummaryEntry {
	return s.entries
}

// Log writes the summary at debug level. A CLI keeps stderr quiet by default.
func (s *Summary) Log(l *logger.Logger) {
	l.Debug("Startup complete", logger.Fields(
		"service", s.serviceName,
		"version", s.version,
		logger.FieldDuration, s.startupDuration.Milliseconds(),
	))
	for _, e := range s.entries {
		l.Debug("  "+e.Name, logger.Fields("details", e.Details))
	}
}
