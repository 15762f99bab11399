package serialport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrPortClosed is returned by MockPort reads after Close.
var ErrPortClosed = errors.New("port closed")

// MockOpener simulates serial hardware for testing.
type MockOpener struct {
	mu sync.Mutex

	// Ports is returned by List.
	Ports []PortInfo

	// ListError, when set, is returned by List.
	ListError error

	// OpenErrors maps port names to errors returned by Open.
	OpenErrors map[string]error

	// NextPort is handed out by the next successful Open. A fresh empty
	// MockPort is created when nil.
	NextPort *MockPort

	// Opened tracks every port handed out, in order.
	Opened []*MockPort
}

// NewMockOpener creates a mock opener listing the given port names.
func NewMockOpener(names ...string) *MockOpener {
	ports := make([]PortInfo, 0, len(names))
	for _, n := range names {
		ports = append(ports, PortInfo{Name: n})
	}
	return &MockOpener{
		Ports:      ports,
		OpenErrors: make(map[string]error),
	}
}

// List returns the configured ports.
func (o *MockOpener) List() ([]PortInfo, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ListError != nil {
		return nil, o.ListError
	}
	out := make([]PortInfo, len(o.Ports))
	copy(out, o.Ports)
	sortPorts(out)
	return out, nil
}

// Open returns NextPort or an error configured for name.
func (o *MockOpener) Open(name string, baud int) (Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err, ok := o.OpenErrors[name]; ok {
		return nil, err
	}
	p := o.NextPort
	if p == nil {
		p = NewMockPort()
	}
	o.NextPort = nil
	p.Name = name
	p.Baud = baud
	o.Opened = append(o.Opened, p)
	return p, nil
}

// MockPort is a scripted Port. Queued chunks are returned one per Read;
// an empty queue behaves like a read timeout.
type MockPort struct {
	Name string
	Baud int

	mu         sync.Mutex
	chunks     []mockChunk
	closed     bool
	closeCalls int
	closedCh   chan struct{}
	reading    chan struct{}
	readOnce   sync.Once

	// Block makes Read ignore the queue and wait until Close.
	Block bool

	// Timeout is how long an empty Read waits before returning (0, nil).
	Timeout time.Duration
}

type mockChunk struct {
	data []byte
	err  error
}

// NewMockPort creates an empty mock port.
func NewMockPort() *MockPort {
	return &MockPort{
		closedCh: make(chan struct{}),
		reading:  make(chan struct{}),
		Timeout:  time.Millisecond,
	}
}

// Feed queues raw bytes for a later Read.
func (p *MockPort) Feed(data string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chunks = append(p.chunks, mockChunk{data: []byte(data)})
}

// FeedLines queues each line terminated by "\r\n".
func (p *MockPort) FeedLines(lines ...string) {
	for _, l := range lines {
		p.Feed(l + "\r\n")
	}
}

// FeedError queues a read failure.
func (p *MockPort) FeedError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chunks = append(p.chunks, mockChunk{err: err})
}

// Pending returns the number of queued chunks not yet read.
func (p *MockPort) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.chunks)
}

// Reading is closed once the first Read has been entered.
func (p *MockPort) Reading() <-chan struct{} {
	return p.reading
}

// Read returns the next queued chunk.
func (p *MockPort) Read(buf []byte) (int, error) {
	p.readOnce.Do(func() { close(p.reading) })
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, ErrPortClosed
	}
	if p.Block {
		closedCh := p.closedCh
		p.mu.Unlock()
		<-closedCh
		return 0, ErrPortClosed
	}
	if len(p.chunks) == 0 {
		timeout := p.Timeout
		p.mu.Unlock()
		time.Sleep(timeout)
		return 0, nil
	}

	c := p.chunks[0]
	if c.err != nil {
		p.chunks = p.chunks[1:]
		p.mu.Unlock()
		return 0, c.err
	}
	n := copy(buf, c.data)
	if n < len(c.data) {
		p.chunks[0].data = c.data[n:]
	} else {
		p.chunks = p.chunks[1:]
	}
	p.mu.Unlock()
	return n, nil
}

// Close marks the port closed. Only the first call has effect but every
// call is counted.
func (p *MockPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCalls++
	if p.closed {
		return fmt.Errorf("close %s: %w", p.Name, io.ErrClosedPipe)
	}
	p.closed = true
	close(p.closedCh)
	return nil
}

// CloseCalls returns how many times Close was called.
func (p *MockPort) CloseCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCalls
}

// Closed reports whether Close has been called.
func (p *MockPort) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
