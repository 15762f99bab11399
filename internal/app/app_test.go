package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyleking/lazyrope/internal/ingest"
	"github.com/kyleking/lazyrope/internal/record"
	"github.com/kyleking/lazyrope/internal/serialport"
	"github.com/kyleking/lazyrope/internal/store"
	"github.com/kyleking/lazyrope/internal/ui/modal"
)

type fakeConn struct {
	mu          sync.Mutex
	ports       []serialport.PortInfo
	listErr     error
	connectErr  error
	connected   bool
	connects    []string
	disconnects int
	events      chan ingest.Event
}

func newFakeConn(ports ...string) *fakeConn {
	c := &fakeConn{events: make(chan ingest.Event, 8)}
	for _, p := range ports {
		c.ports = append(c.ports, serialport.PortInfo{Name: p})
	}
	return c
}

func (c *fakeConn) ListPorts() ([]serialport.PortInfo, error) {
	return c.ports, c.listErr
}

func (c *fakeConn) Connect(port string, baud int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects = append(c.connects, port)
	if c.connectErr != nil {
		return c.connectErr
	}
	c.connected = true
	return nil
}

func (c *fakeConn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	c.connected = false
	return nil
}

func (c *fakeConn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) Events() <-chan ingest.Event {
	return c.events
}

func newTestModel(t *testing.T, conn *fakeConn, opts Options) (Model, *store.Store) {
	t.Helper()
	st := store.New()
	if opts.BaudRates == nil {
		opts.BaudRates = []int{9600, 115200, 230400}
	}
	if opts.Baud == 0 {
		opts.Baud = 115200
	}
	m := New(conn, st, opts)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, st
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// run executes cmd and flattens batches into their messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// runOne executes cmd and returns the single message of type T.
func runOne[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, msg := range run(cmd) {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("expected a %T from command", zero)
	return zero
}

func testRecord(mode record.Mode, duration int) record.Record {
	return record.Record{
		Mode:         mode,
		Duration:     duration,
		AvgHeartRate: 130,
		MaxHeartRate: 150,
		Frequency:    90.5,
		JumpCount:    90,
		RecordedAt:   time.Now(),
	}
}

func TestNew_Defaults(t *testing.T) {
	m, _ := newTestModel(t, newFakeConn(), Options{})

	if m.Page() != PageSerial {
		t.Errorf("expected serial page, got %v", m.Page())
	}
	if status, isErr := m.Status(); status != "Ready" || isErr {
		t.Errorf("expected Ready status, got %q (err=%v)", status, isErr)
	}
	if m.Baud() != 115200 {
		t.Errorf("expected baud 115200, got %d", m.Baud())
	}
	if !strings.Contains(m.View(), "Data Count: 0") {
		t.Error("expected data count in status bar")
	}
}

func TestNew_BaudFallsBackToFirstChoice(t *testing.T) {
	m := New(newFakeConn(), store.New(), Options{BaudRates: []int{9600, 19200}})
	if m.Baud() != 9600 {
		t.Errorf("expected 9600, got %d", m.Baud())
	}
}

func TestInit_ListsPortsAndSelectsFirst(t *testing.T) {
	conn := newFakeConn("/dev/ttyUSB0", "/dev/ttyUSB1")
	m, _ := newTestModel(t, conn, Options{})

	msg := runOne[PortsListedMsg](t, listPorts(conn, false))
	m = update(t, m, msg)

	if m.SelectedPort() != "/dev/ttyUSB0" {
		t.Errorf("expected first port selected, got %q", m.SelectedPort())
	}
	if m.modalStack.HasActive() {
		t.Error("startup listing should not open the picker")
	}
}

func TestPortsListedError(t *testing.T) {
	m, _ := newTestModel(t, newFakeConn(), Options{})
	m = update(t, m, PortsListedMsg{Err: errors.New("no permission")})

	status, isErr := m.Status()
	if !isErr || !strings.Contains(status, "no permission") {
		t.Errorf("expected error status, got %q", status)
	}
}

func TestPortPicker_SelectsPort(t *testing.T) {
	conn := newFakeConn("/dev/ttyACM0", "/dev/ttyUSB0")
	m, _ := newTestModel(t, conn, Options{})

	m, cmd := updateCmd(t, m, keyMsg("p"))
	m = update(t, m, runOne[PortsListedMsg](t, cmd))
	if _, ok := m.modalStack.Top().(*modal.PortSelectModal); !ok {
		t.Fatalf("expected port picker, got %T", m.modalStack.Top())
	}

	m = update(t, m, keyMsg("down"))
	m, cmd = updateCmd(t, m, keyMsg("enter"))
	m = update(t, m, runOne[modal.PortSelectedMsg](t, cmd))

	if m.SelectedPort() != "/dev/ttyUSB0" {
		t.Errorf("expected /dev/ttyUSB0, got %q", m.SelectedPort())
	}
	if m.modalStack.HasActive() {
		t.Error("expected picker to close")
	}
}

func TestConnectToggle(t *testing.T) {
	conn := newFakeConn("/dev/ttyUSB0")
	m, _ := newTestModel(t, conn, Options{})
	m.port = "/dev/ttyUSB0"

	m, cmd := updateCmd(t, m, keyMsg("c"))
	m = update(t, m, runOne[ConnectResultMsg](t, cmd))

	if !m.Connected() {
		t.Fatal("expected connected")
	}
	if status, _ := m.Status(); status != "Connected to /dev/ttyUSB0" {
		t.Errorf("unexpected status %q", status)
	}

	m, cmd = updateCmd(t, m, keyMsg("c"))
	m = update(t, m, runOne[DisconnectResultMsg](t, cmd))

	if m.Connected() {
		t.Error("expected disconnected")
	}
	if status, _ := m.Status(); status != "Disconnected" {
		t.Errorf("unexpected status %q", status)
	}
	if conn.disconnects != 1 {
		t.Errorf("expected 1 disconnect, got %d", conn.disconnects)
	}
}

func TestConnectErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no port", &ingest.ConnectionError{Err: ingest.ErrNoPort}, "Please select a serial port"},
		{"bad baud", &ingest.ConnectionError{Port: "COM3", Err: ingest.ErrInvalidBaud}, "Please select a valid baud rate"},
		{"open failed", &ingest.ConnectionError{Port: "COM3", Err: errors.New("busy")}, "Cannot connect to COM3: busy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := newFakeConn()
			conn.connectErr = tt.err
			m, _ := newTestModel(t, conn, Options{})

			m, cmd := updateCmd(t, m, keyMsg("c"))
			m = update(t, m, runOne[ConnectResultMsg](t, cmd))

			status, isErr := m.Status()
			if !isErr || status != tt.want {
				t.Errorf("expected error %q, got %q (err=%v)", tt.want, status, isErr)
			}
			if m.Connected() {
				t.Error("expected to stay disconnected")
			}
		})
	}
}

func TestBaudCycling(t *testing.T) {
	m, _ := newTestModel(t, newFakeConn(), Options{})

	m = update(t, m, keyMsg("b"))
	if m.Baud() != 230400 {
		t.Errorf("expected 230400, got %d", m.Baud())
	}
	m = update(t, m, keyMsg("b"))
	if m.Baud() != 9600 {
		t.Errorf("expected wrap to 9600, got %d", m.Baud())
	}

	m.connected = true
	m = update(t, m, keyMsg("b"))
	if m.Baud() != 9600 {
		t.Errorf("baud must not change while connected, got %d", m.Baud())
	}
	if _, isErr := m.Status(); !isErr {
		t.Error("expected an error status while connected")
	}
}

func TestRecordEvent_UpdatesPanes(t *testing.T) {
	m, st := newTestModel(t, newFakeConn(), Options{})

	r := testRecord(record.ModeTimer, 60)
	st.Append(r)
	m, cmd := updateCmd(t, m, ingestMsg{event: ingest.RecordEvent{Record: r}})

	if cmd == nil {
		t.Error("expected the event pump to be re-armed")
	}
	if got := m.records.SelectedRecord(); got == nil || got.Duration != 60 {
		t.Errorf("expected record in table, got %+v", got)
	}
	if lines := m.dataLog.Lines(); len(lines) != 1 || lines[0] != r.Summary() {
		t.Errorf("unexpected data log %v", lines)
	}
	if !strings.Contains(m.View(), "Data Count: 1") {
		t.Error("expected Data Count: 1 in view")
	}
}

func TestDiagnosticEvent(t *testing.T) {
	m, st := newTestModel(t, newFakeConn(), Options{})

	m = update(t, m, ingestMsg{event: ingest.DiagnosticEvent{
		Line: "garbage",
		Err:  &record.FormatError{Line: "garbage", Reason: "expected 6 fields"},
		At:   time.Now(),
	}})

	if st.Len() != 0 {
		t.Error("diagnostics must not reach the store")
	}
	if len(m.diagnostics) != 1 || m.diagnostics[0].Kind != modal.KindFormat {
		t.Fatalf("expected one format diagnostic, got %+v", m.diagnostics)
	}
	if lines := m.dataLog.Lines(); len(lines) != 1 || lines[0] != "Format error: garbage" {
		t.Errorf("unexpected data log %v", lines)
	}
}

func TestStatusEvent(t *testing.T) {
	m, _ := newTestModel(t, newFakeConn(), Options{})

	ioErr := &ingest.IOError{Err: errors.New("device reset")}
	m = update(t, m, ingestMsg{event: ingest.StatusEvent{Text: ioErr.Error(), Err: ioErr, At: time.Now()}})

	status, isErr := m.Status()
	if !isErr || status != "error reading data: device reset" {
		t.Errorf("unexpected status %q (err=%v)", status, isErr)
	}
	if len(m.diagnostics) != 1 || m.diagnostics[0].Kind != modal.KindStatus {
		t.Errorf("expected one status diagnostic, got %+v", m.diagnostics)
	}
}

func TestDiagnosticsBounded(t *testing.T) {
	m, _ := newTestModel(t, newFakeConn(), Options{})
	for range MaxDiagnostics + 10 {
		m = update(t, m, ingestMsg{event: ingest.DiagnosticEvent{Line: "x", At: time.Now()}})
	}
	if len(m.diagnostics) != MaxDiagnostics {
		t.Errorf("expected %d diagnostics, got %d", MaxDiagnostics, len(m.diagnostics))
	}
}

func TestEventsHandledWhileModalOpen(t *testing.T) {
	m, st := newTestModel(t, newFakeConn(), Options{})
	m = update(t, m, keyMsg("?"))
	if !m.modalStack.HasActive() {
		t.Fatal("expected help modal")
	}

	r := testRecord(record.ModeCountdown, 30)
	st.Append(r)
	m = update(t, m, ingestMsg{event: ingest.RecordEvent{Record: r}})

	if len(m.dataLog.Lines()) != 1 {
		t.Error("expected record to be logged while modal is open")
	}
}

func TestCopySessionPath(t *testing.T) {
	var copied string
	m, _ := newTestModel(t, newFakeConn(), Options{
		SessionFile: "JumpRopeData/JumpRopeData_20260101_120000.csv",
		Copy: func(s string) error {
			copied = s
			return nil
		},
	})

	m, cmd := updateCmd(t, m, keyMsg("y"))
	m = update(t, m, runOne[CopiedMsg](t, cmd))

	if copied != "JumpRopeData/JumpRopeData_20260101_120000.csv" {
		t.Errorf("unexpected clipboard %q", copied)
	}
	if status, isErr := m.Status(); isErr || !strings.HasPrefix(status, "Copied ") {
		t.Errorf("unexpected status %q", status)
	}
}

func TestCopyWithoutSessionFile(t *testing.T) {
	m, _ := newTestModel(t, newFakeConn(), Options{Copy: func(string) error { return nil }})

	m, cmd := updateCmd(t, m, keyMsg("y"))
	if cmd != nil {
		t.Error("expected no copy command")
	}
	if _, isErr := m.Status(); !isErr {
		t.Error("expected error status")
	}
}

func TestChartPage(t *testing.T) {
	m, st := newTestModel(t, newFakeConn(), Options{})
	st.Append(testRecord(record.ModeTimer, 60))
	st.Append(testRecord(record.ModeCountdown, 30))

	m = update(t, m, keyMsg("tab"))
	if m.Page() != PageChart {
		t.Fatalf("expected chart page, got %v", m.Page())
	}
	if !strings.Contains(m.View(), "Timer Mode - Duration (s) Trend") {
		t.Error("expected timer chart title")
	}

	m = update(t, m, keyMsg("m"))
	if m.chart.Mode() != record.ModeCountdown {
		t.Errorf("expected countdown mode, got %v", m.chart.Mode())
	}
	m = update(t, m, keyMsg("m"))
	if !strings.Contains(m.View(), "No data available. Please receive data via serial port first.") {
		t.Error("expected no-data message for target count mode")
	}
}

func TestPageCycling(t *testing.T) {
	m, _ := newTestModel(t, newFakeConn(), Options{})

	m = update(t, m, keyMsg("tab"))
	m = update(t, m, keyMsg("tab"))
	if m.Page() != PageHome {
		t.Errorf("expected home page, got %v", m.Page())
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.Page() != PageChart {
		t.Errorf("expected chart page, got %v", m.Page())
	}
}

func TestQuit(t *testing.T) {
	t.Run("disconnected quits immediately", func(t *testing.T) {
		m, _ := newTestModel(t, newFakeConn(), Options{})
		_, cmd := updateCmd(t, m, keyMsg("q"))
		runOne[tea.QuitMsg](t, cmd)
	})

	t.Run("connected disconnects first", func(t *testing.T) {
		conn := newFakeConn()
		m, _ := newTestModel(t, conn, Options{})
		m.connected = true
		conn.connected = true

		m, cmd := updateCmd(t, m, keyMsg("q"))
		result := runOne[DisconnectResultMsg](t, cmd)
		if conn.disconnects != 1 {
			t.Fatalf("expected disconnect before quit, got %d", conn.disconnects)
		}

		_, cmd = updateCmd(t, m, result)
		runOne[tea.QuitMsg](t, cmd)
	})
}

type fakeArchive struct {
	counts map[record.Mode]int
	err    error
	calls  int
}

func (a *fakeArchive) Count(context.Context) (map[record.Mode]int, error) {
	a.calls++
	return a.counts, a.err
}

func TestSessionModalShowsArchivedCounts(t *testing.T) {
	arc := &fakeArchive{counts: map[record.Mode]int{record.ModeCountdown: 3}}
	conn := newFakeConn()
	m, _ := newTestModel(t, conn, Options{ArchiveID: "abc-123", Archive: arc})

	m, cmd := updateCmd(t, m, keyMsg("i"))
	counted := runOne[ArchiveCountedMsg](t, cmd)
	m = update(t, m, counted)

	top, ok := m.modalStack.Top().(*modal.SessionStatusModal)
	if !ok {
		t.Fatalf("expected session modal, got %T", m.modalStack.Top())
	}
	if view := top.View(); !strings.Contains(view, "(3 archived)") {
		t.Errorf("expected archived count in session view:\n%s", view)
	}

	arc.counts = map[record.Mode]int{record.ModeCountdown: 4}
	conn.events <- ingest.StatusEvent{Text: "Listening"}
	_, cmd = updateCmd(t, m, ingestMsg{event: ingest.RecordEvent{Record: testRecord(record.ModeCountdown, 30)}})
	if got := runOne[ArchiveCountedMsg](t, cmd); got.Counts[record.ModeCountdown] != 4 {
		t.Errorf("expected refreshed archive count 4, got %v", got.Counts)
	}
	if arc.calls != 2 {
		t.Errorf("expected 2 archive counts, got %d", arc.calls)
	}
}

func TestArchiveCountErrorKeepsLastCounts(t *testing.T) {
	m, _ := newTestModel(t, newFakeConn(), Options{})
	m = update(t, m, ArchiveCountedMsg{Counts: map[record.Mode]int{record.ModeTimer: 1}})
	m = update(t, m, ArchiveCountedMsg{Err: errors.New("database is locked")})

	if m.archived[record.ModeTimer] != 1 {
		t.Errorf("expected counts kept after error, got %v", m.archived)
	}
}

func TestSessionModalShowsCounts(t *testing.T) {
	m, st := newTestModel(t, newFakeConn(), Options{ArchiveID: "abc-123"})
	st.Append(testRecord(record.ModeTargetCount, 45))

	m = update(t, m, keyMsg("i"))
	top, ok := m.modalStack.Top().(*modal.SessionStatusModal)
	if !ok {
		t.Fatalf("expected session modal, got %T", m.modalStack.Top())
	}
	view := top.View()
	if !strings.Contains(view, "abc-123") || !strings.Contains(view, "1 record") {
		t.Errorf("unexpected session view:\n%s", view)
	}
}
