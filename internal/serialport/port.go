package serialport

import (
	"fmt"
	"io"
	"sort"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Port is an open serial connection. Read returns (0, nil) when the read
// timeout elapses with no data.
type Port interface {
	io.ReadCloser
}

// PortInfo describes an available port.
type PortInfo struct {
	Name        string
	Description string
}

// Opener lists and opens serial ports.
// This allows us to mock the device in tests.
type Opener interface {
	// List returns available ports sorted by name.
	List() ([]PortInfo, error)
	// Open connects to name at baud, 8N1.
	Open(name string, baud int) (Port, error)
}

// RealOpener talks to hardware through go.bug.st/serial.
type RealOpener struct {
	readTimeout time.Duration
}

// NewOpener creates an opener whose ports time out reads after readTimeout.
func NewOpener(readTimeout time.Duration) *RealOpener {
	return &RealOpener{readTimeout: readTimeout}
}

// List enumerates ports, preferring USB details when the platform has them.
func (o *RealOpener) List() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil && len(details) > 0 {
		infos := make([]PortInfo, 0, len(details))
		for _, d := range details {
			infos = append(infos, PortInfo{Name: d.Name, Description: describe(d)})
		}
		sortPorts(infos)
		return infos, nil
	}

	names, listErr := serial.GetPortsList()
	if listErr != nil {
		return nil, fmt.Errorf("list serial ports: %w", listErr)
	}
	infos := make([]PortInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, PortInfo{Name: name})
	}
	sortPorts(infos)
	return infos, nil
}

// Open opens the named port.
func (o *RealOpener) Open(name string, baud int) (Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	if o.readTimeout > 0 {
		if err := p.SetReadTimeout(o.readTimeout); err != nil {
			p.Close()
			return nil, fmt.Errorf("set read timeout: %w", err)
		}
	}
	return p, nil
}

func describe(d *enumerator.PortDetails) string {
	if !d.IsUSB {
		return ""
	}
	if d.Product != "" {
		return d.Product
	}
	return fmt.Sprintf("USB %s:%s", d.VID, d.PID)
}

func sortPorts(infos []PortInfo) {
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
}
