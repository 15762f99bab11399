package persist

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kyleking/lazyrope/internal/record"
)

// DefaultDir is the session directory, relative to the working directory.
const DefaultDir = "JumpRopeData"

// TimeFormat is the layout of the Record Time column.
const TimeFormat = "15:04:05"

// Header is the first row of every session file.
var Header = []string{"Mode", "Duration (s)", "Avg HR", "Max HR", "Frequency", "Jumps", "Record Time"}

var bom = []byte{0xEF, 0xBB, 0xBF}

// Persister appends records to one CSV file per run. Each Append opens and
// closes the file, so a crash loses at most the row being written.
type Persister struct {
	path string
}

// NewSession creates dir if needed and a fresh session file named after now.
func NewSession(dir string, now time.Time) (*Persister, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(dir, SessionFileName(now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("create session file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(bom); err != nil {
		return nil, fmt.Errorf("write session header: %w", err)
	}
	w := csv.NewWriter(f)
	w.UseCRLF = true
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write session header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write session header: %w", err)
	}

	return &Persister{path: path}, nil
}

// SessionFileName returns the file name used for a session started at t.
func SessionFileName(t time.Time) string {
	return "JumpRopeData_" + t.Format("20060102_150405") + ".csv"
}

// Path returns the session file location.
func (p *Persister) Path() string {
	return p.path
}

// Name identifies the sink in status messages.
func (p *Persister) Name() string {
	return "csv"
}

// Append writes r as one row.
func (p *Persister) Append(r record.Record) error {
	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}

	w := csv.NewWriter(f)
	w.UseCRLF = true
	if err := w.Write(Row(r)); err != nil {
		f.Close()
		return fmt.Errorf("write record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	return nil
}

// Row formats r in Header column order.
func Row(r record.Record) []string {
	return []string{
		strconv.Itoa(int(r.Mode)),
		strconv.Itoa(r.Duration),
		strconv.Itoa(r.AvgHeartRate),
		strconv.Itoa(r.MaxHeartRate),
		formatFrequency(r.Frequency),
		strconv.Itoa(r.JumpCount),
		r.RecordedAt.Format(TimeFormat),
	}
}

// formatFrequency keeps at least one decimal so whole values read as "90.0".
func formatFrequency(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// ReadSession reads a session file back as rows, excluding the header.
func ReadSession(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if prefix, err := br.Peek(len(bom)); err == nil && bytes.Equal(prefix, bom) {
		if _, err := br.Discard(len(bom)); err != nil {
			return nil, fmt.Errorf("skip byte order mark: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(Header)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("session file %s has no header", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range Header {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected header column %d: %q", i+1, header[i])
		}
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}
