package ingest

import (
	"time"

	"github.com/kyleking/lazyrope/internal/record"
)

// Event is produced by the manager and reader for the presentation layer.
type Event interface {
	isEvent()
}

// RecordEvent carries a record that was stored and handed to every sink.
type RecordEvent struct {
	Record record.Record
}

// DiagnosticEvent carries a line that failed to parse or was discarded.
type DiagnosticEvent struct {
	Line string
	Err  error
	At   time.Time
}

// StatusEvent is a status-bar message. Err is set for failures.
type StatusEvent struct {
	Text string
	Err  error
	At   time.Time
}

func (RecordEvent) isEvent()     {}
func (DiagnosticEvent) isEvent() {}
func (StatusEvent) isEvent()     {}
