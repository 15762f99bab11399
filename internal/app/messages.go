package app

import (
	"github.com/kyleking/lazyrope/internal/ingest"
	"github.com/kyleking/lazyrope/internal/record"
	"github.com/kyleking/lazyrope/internal/serialport"
)

// ingestMsg wraps an event from the reader.
type ingestMsg struct {
	event ingest.Event
}

// eventsClosedMsg is sent if the event channel is closed.
type eventsClosedMsg struct{}

// ConnectResultMsg reports the outcome of a connect attempt.
type ConnectResultMsg struct {
	Port string
	Baud int
	Err  error
}

// DisconnectResultMsg reports the outcome of a disconnect.
type DisconnectResultMsg struct {
	Err error
}

// PortsListedMsg carries a refreshed port list. Pick opens the picker.
type PortsListedMsg struct {
	Ports []serialport.PortInfo
	Err   error
	Pick  bool
}

// CopiedMsg reports the outcome of copying to the clipboard.
type CopiedMsg struct {
	Text string
	Err  error
}

// ArchiveCountedMsg carries per-mode counts from the archive.
type ArchiveCountedMsg struct {
	Counts map[record.Mode]int
	Err    error
}
