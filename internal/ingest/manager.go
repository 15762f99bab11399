package ingest

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kyleking/lazyrope/internal/record"
	"github.com/kyleking/lazyrope/internal/serialport"
	"github.com/kyleking/lazyrope/internal/store"
)

// Default tuning for the reader and manager.
const (
	DefaultIdlePoll      = 20 * time.Millisecond
	DefaultErrorBackoff  = 100 * time.Millisecond
	DefaultStopTimeout   = time.Second
	DefaultMaxLineLength = 4096
	DefaultEventBuffer   = 256
)

// Options tunes the reader loop and disconnect behaviour.
type Options struct {
	// IdlePoll is the pause after a read that returned no data.
	IdlePoll time.Duration
	// ErrorBackoff is the pause after a failed read.
	ErrorBackoff time.Duration
	// StopTimeout bounds how long Disconnect waits for the reader.
	StopTimeout time.Duration
	// MaxLineLength caps an undelimited partial line.
	MaxLineLength int
	// EventBuffer is the capacity of the events channel.
	EventBuffer int
}

func (o Options) withDefaults() Options {
	if o.IdlePoll <= 0 {
		o.IdlePoll = DefaultIdlePoll
	}
	if o.ErrorBackoff <= 0 {
		o.ErrorBackoff = DefaultErrorBackoff
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = DefaultStopTimeout
	}
	if o.MaxLineLength <= 0 {
		o.MaxLineLength = DefaultMaxLineLength
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = DefaultEventBuffer
	}
	return o
}

// Manager owns the serial handle and the reader goroutine. At most one
// connection is active at a time.
type Manager struct {
	opener serialport.Opener
	store  *store.Store
	parser record.Parser
	sinks  []Sink
	opts   Options
	log    *zap.Logger
	events chan Event

	mu       sync.Mutex
	port     serialport.Port
	portName string
	stop     chan struct{}
	done     chan struct{}
}

// NewManager creates a manager that appends parsed records to st and then
// to each sink, in order.
func NewManager(opener serialport.Opener, st *store.Store, parser record.Parser, sinks []Sink, opts Options, log *zap.Logger) *Manager {
	opts = opts.withDefaults()
	return &Manager{
		opener: opener,
		store:  st,
		parser: parser,
		sinks:  sinks,
		opts:   opts,
		log:    log,
		events: make(chan Event, opts.EventBuffer),
	}
}

// Events returns the channel every reader publishes to. It stays open for
// the manager's lifetime.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// ListPorts returns available ports sorted by name.
func (m *Manager) ListPorts() ([]serialport.PortInfo, error) {
	return m.opener.List()
}

// Connect opens port at baud and starts the reader.
func (m *Manager) Connect(port string, baud int) error {
	if port == "" {
		return &ConnectionError{Err: ErrNoPort}
	}
	if baud <= 0 {
		return &ConnectionError{Port: port, Err: ErrInvalidBaud}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.port != nil {
		return fmt.Errorf("connect %s: %w (to %s)", port, ErrAlreadyConnected, m.portName)
	}

	p, err := m.opener.Open(port, baud)
	if err != nil {
		m.log.Warn("open failed", zap.String("port", port), zap.Int("baud", baud), zap.Error(err))
		return &ConnectionError{Port: port, Err: err}
	}

	m.port = p
	m.portName = port
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	reader := &Reader{
		port:   p,
		parser: m.parser,
		store:  m.store,
		sinks:  m.sinks,
		events: m.events,
		stop:   m.stop,
		opts:   m.opts,
		log:    m.log.With(zap.String("port", port)),
	}
	go reader.Run(m.done)

	m.log.Info("connected", zap.String("port", port), zap.Int("baud", baud))
	return nil
}

// Disconnect signals the reader to stop, waits up to StopTimeout for it and
// then closes the port whether or not the reader exited.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	if m.port == nil {
		m.mu.Unlock()
		return nil
	}
	port, name, stop, done := m.port, m.portName, m.stop, m.done
	m.port = nil
	m.portName = ""
	m.stop = nil
	m.done = nil
	m.mu.Unlock()

	close(stop)

	timer := time.NewTimer(m.opts.StopTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		m.log.Warn("reader did not stop in time, closing port anyway",
			zap.String("port", name), zap.Duration("timeout", m.opts.StopTimeout))
	}

	if err := port.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	m.log.Info("disconnected", zap.String("port", name))
	return nil
}

// IsConnected returns true while a port is open.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.port != nil
}

// Port returns the name of the connected port, or "".
func (m *Manager) Port() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.portName
}
