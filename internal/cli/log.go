// Package cli implements the eduplan command-line interface.
//
// The CLI renders seating plans from plan files or from the configured
// record store, issues credential cards, and runs the HTTP API. It is built
// on cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - render: render a plan file to SVG, PDF, PNG, JSON or XLSX
//   - room: render a stored room (interactive picker without an argument)
//   - layout: print the numbered seat table of a plan
//   - credentials: issue logins and passwords as a ZIP of cards
//   - export: write a stored room to a plan file
//   - serve: run the HTTP API
//   - session: issue API sessions in a shared session store
//   - cache: manage the local document cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLevel maps a configured level name onto a log level, defaulting
// to info for unknown names.
func parseLevel(s string) log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 3 documents (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
