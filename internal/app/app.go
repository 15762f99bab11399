package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kyleking/lazyrope/internal/ingest"
	"github.com/kyleking/lazyrope/internal/record"
	"github.com/kyleking/lazyrope/internal/serialport"
	"github.com/kyleking/lazyrope/internal/store"
	"github.com/kyleking/lazyrope/internal/ui/modal"
	"github.com/kyleking/lazyrope/internal/ui/panes"
)

// Page is one of the top-level screens.
type Page int

const (
	PageHome Page = iota
	PageSerial
	PageChart
)

var pageTitles = []string{"Home", "Serial", "Chart"}

func (p Page) String() string {
	if p < 0 || int(p) >= len(pageTitles) {
		return fmt.Sprintf("Page(%d)", int(p))
	}
	return pageTitles[p]
}

// MaxDiagnostics bounds the diagnostics log kept in memory.
const MaxDiagnostics = 500

// Connector is the connection manager as seen by the UI.
type Connector interface {
	ListPorts() ([]serialport.PortInfo, error)
	Connect(port string, baud int) error
	Disconnect() error
	IsConnected() bool
	Events() <-chan ingest.Event
}

// ArchiveCounter reports how many records this run has archived per mode.
type ArchiveCounter interface {
	Count(ctx context.Context) (map[record.Mode]int, error)
}

// archiveCountTimeout bounds a single archive count query.
const archiveCountTimeout = 2 * time.Second

// Options configures the root model.
type Options struct {
	Baud        int
	BaudRates   []int
	SessionFile string
	ArchiveID   string
	Archive     ArchiveCounter
	// Warnings stay on screen for the whole run.
	Warnings []string
	// Copy writes text to the clipboard; defaults to the system clipboard.
	Copy func(string) error
	Log  *zap.Logger
}

// Model is the root bubbletea model for the application.
type Model struct {
	conn  Connector
	store *store.Store
	log   *zap.Logger

	page       Page
	modalStack *modal.Stack

	records panes.RecordsModel
	dataLog panes.DataLogModel
	chart   panes.ChartModel

	ports      []serialport.PortInfo
	port       string
	baud       int
	baudRates  []int
	connected  bool
	connecting bool
	quitting   bool

	status      string
	statusErr   bool
	warnings    []string
	diagnostics []modal.DiagnosticEntry

	sessionFile string
	archiveID   string
	archive     ArchiveCounter
	archived    map[record.Mode]int
	copy        func(string) error

	width  int
	height int
	keys   KeyMap
}

// New creates a new application model.
func New(conn Connector, st *store.Store, opts Options) Model {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	baud := opts.Baud
	if baud <= 0 && len(opts.BaudRates) > 0 {
		baud = opts.BaudRates[0]
	}

	m := Model{
		conn:        conn,
		store:       st,
		log:         log,
		page:        PageSerial,
		modalStack:  modal.NewStack(),
		records:     panes.NewRecordsModel(),
		dataLog:     panes.NewDataLogModel(panes.DefaultDataLogLimit),
		chart:       panes.NewChartModel(),
		baud:        baud,
		baudRates:   opts.BaudRates,
		status:      "Ready",
		warnings:    opts.Warnings,
		sessionFile: opts.SessionFile,
		archiveID:   opts.ArchiveID,
		archive:     opts.Archive,
		copy:        copyFn,
		keys:        DefaultKeyMap(),
	}
	m.records.SetFocused(true)
	m.refreshData()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.conn.Events()), listPorts(m.conn, false))
}

// waitForEvent delivers the next reader event as a message.
func waitForEvent(events <-chan ingest.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return ingestMsg{event: ev}
	}
}

func listPorts(conn Connector, pick bool) tea.Cmd {
	return func() tea.Msg {
		ports, err := conn.ListPorts()
		return PortsListedMsg{Ports: ports, Err: err, Pick: pick}
	}
}

func connect(conn Connector, port string, baud int) tea.Cmd {
	return func() tea.Msg {
		return ConnectResultMsg{Port: port, Baud: baud, Err: conn.Connect(port, baud)}
	}
}

func disconnect(conn Connector) tea.Cmd {
	return func() tea.Msg {
		return DisconnectResultMsg{Err: conn.Disconnect()}
	}
}

func countArchived(a ArchiveCounter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), archiveCountTimeout)
		defer cancel()
		counts, err := a.Count(ctx)
		return ArchiveCountedMsg{Counts: counts, Err: err}
	}
}

func copyText(fn func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		return CopiedMsg{Text: text, Err: fn(text)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Background results are handled even while a modal is open.
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.modalStack.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, m.modalStack.Update(msg)

	case ingestMsg:
		m.handleEvent(msg.event)
		m.syncSessionModal()
		next := waitForEvent(m.conn.Events())
		if _, ok := msg.event.(ingest.RecordEvent); ok && m.sessionModalOpen() {
			return m, tea.Batch(next, m.refreshArchived())
		}
		return m, next

	case ArchiveCountedMsg:
		if msg.Err != nil {
			m.log.Warn("count archived records", zap.Error(msg.Err))
			return m, nil
		}
		m.archived = msg.Counts
		m.syncSessionModal()
		return m, nil

	case eventsClosedMsg:
		return m, nil

	case ConnectResultMsg:
		return m.handleConnectResult(msg)

	case DisconnectResultMsg:
		return m.handleDisconnectResult(msg)

	case PortsListedMsg:
		return m.handlePortsListed(msg)

	case CopiedMsg:
		if msg.Err != nil {
			m.setError("Copy failed: " + msg.Err.Error())
		} else {
			m.setStatus("Copied " + msg.Text)
		}
		return m, nil

	case modal.PortSelectedMsg:
		m.port = msg.Name
		m.setStatus("Selected port " + msg.Name)
		return m, nil
	}

	if m.modalStack.HasActive() {
		return m, m.modalStack.Update(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(ev ingest.Event) {
	switch ev := ev.(type) {
	case ingest.RecordEvent:
		m.dataLog.Append(ev.Record)
		m.refreshData()

	case ingest.DiagnosticEvent:
		m.dataLog.AppendLine("Format error: " + ev.Line)
		detail := ""
		if ev.Err != nil {
			detail = ev.Err.Error()
		}
		m.addDiagnostic(modal.DiagnosticEntry{At: ev.At, Kind: modal.KindFormat, Text: ev.Line, Detail: detail})

	case ingest.StatusEvent:
		if ev.Err == nil {
			m.setStatus(ev.Text)
			return
		}
		m.setError(ev.Text)
		m.addDiagnostic(modal.DiagnosticEntry{At: ev.At, Kind: modal.KindStatus, Text: ev.Text})
	}
}

func (m *Model) addDiagnostic(e modal.DiagnosticEntry) {
	m.diagnostics = append(m.diagnostics, e)
	if over := len(m.diagnostics) - MaxDiagnostics; over > 0 {
		m.diagnostics = append(m.diagnostics[:0], m.diagnostics[over:]...)
	}
}

func (m Model) handleConnectResult(msg ConnectResultMsg) (tea.Model, tea.Cmd) {
	m.connecting = false
	if msg.Err != nil {
		m.connected = m.conn.IsConnected()
		m.setError(connectErrorText(msg.Err))
		return m, nil
	}
	m.connected = true
	m.setStatus("Connected to " + msg.Port)
	m.syncSessionModal()
	return m, nil
}

func connectErrorText(err error) string {
	switch {
	case errors.Is(err, ingest.ErrNoPort):
		return "Please select a serial port"
	case errors.Is(err, ingest.ErrInvalidBaud):
		return "Please select a valid baud rate"
	case errors.Is(err, ingest.ErrAlreadyConnected):
		return "Already connected"
	}
	var connErr *ingest.ConnectionError
	if errors.As(err, &connErr) {
		return fmt.Sprintf("Cannot connect to %s: %v", connErr.Port, connErr.Err)
	}
	return err.Error()
}

func (m Model) handleDisconnectResult(msg DisconnectResultMsg) (tea.Model, tea.Cmd) {
	m.connecting = false
	m.connected = false
	if msg.Err != nil {
		m.log.Warn("disconnect", zap.Error(msg.Err))
		m.setError("Disconnected with error: " + msg.Err.Error())
	} else {
		m.setStatus("Disconnected")
	}
	m.syncSessionModal()
	if m.quitting {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handlePortsListed(msg PortsListedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setError("Cannot list ports: " + msg.Err.Error())
		return m, nil
	}
	m.ports = msg.Ports
	if m.port == "" && len(msg.Ports) > 0 {
		m.port = msg.Ports[0].Name
	}
	if msg.Pick {
		m.modalStack.Push(modal.NewPortSelectModal(msg.Ports, m.port))
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.modalStack.Push(modal.NewHelpModal())
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.page = (m.page + 1) % Page(len(pageTitles))
		m.refreshData()
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.page = (m.page + Page(len(pageTitles)) - 1) % Page(len(pageTitles))
		m.refreshData()
		return m, nil
	}

	switch m.page {
	case PageSerial:
		return m.handleSerialKey(msg)
	case PageChart:
		return m.handleChartKey(msg)
	}
	return m, nil
}

func (m Model) handleSerialKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.records.MoveUp()

	case key.Matches(msg, m.keys.Down):
		m.records.MoveDown()

	case key.Matches(msg, m.keys.Port):
		if m.connected {
			m.setError("Disconnect before changing port")
			return m, nil
		}
		return m, listPorts(m.conn, true)

	case key.Matches(msg, m.keys.Baud):
		if m.connected {
			m.setError("Disconnect before changing baud rate")
			return m, nil
		}
		m.baud = _nextBaud(m.baudRates, m.baud)
		m.setStatus(fmt.Sprintf("Baud rate %d", m.baud))

	case key.Matches(msg, m.keys.Connect):
		return m.toggleConnection()

	case key.Matches(msg, m.keys.Diagnostics):
		entries := make([]modal.DiagnosticEntry, len(m.diagnostics))
		copy(entries, m.diagnostics)
		m.modalStack.Push(modal.NewDiagnosticsModal(entries, m.width, m.height))

	case key.Matches(msg, m.keys.Session):
		m.modalStack.Push(modal.NewSessionStatusModal(m.sessionState()))
		return m, m.refreshArchived()

	case key.Matches(msg, m.keys.Copy):
		if m.sessionFile == "" {
			m.setError("No session file for this run")
			return m, nil
		}
		return m, copyText(m.copy, m.sessionFile)
	}
	return m, nil
}

func (m Model) handleChartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Mode):
		m.chart.NextMode()
	case key.Matches(msg, m.keys.Field):
		m.chart.NextField()
	case key.Matches(msg, m.keys.Refresh):
	default:
		return m, nil
	}
	m.refreshData()
	return m, nil
}

func (m Model) toggleConnection() (tea.Model, tea.Cmd) {
	if m.connecting {
		return m, nil
	}
	m.connecting = true
	if m.connected {
		m.setStatus("Disconnecting...")
		return m, disconnect(m.conn)
	}
	m.setStatus(fmt.Sprintf("Connecting to %s...", m.port))
	return m, connect(m.conn, m.port, m.baud)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if !m.connected && !m.connecting {
		return m, tea.Quit
	}
	if m.quitting {
		return m, nil
	}
	m.quitting = true
	m.setStatus("Disconnecting...")
	return m, disconnect(m.conn)
}

// refreshData pulls fresh copies from the store into the panes.
func (m *Model) refreshData() {
	if m.store == nil {
		return
	}
	m.records.SetRecords(m.store.All())
	m.chart.SetRecords(m.store.ForMode(m.chart.Mode()))
}

// refreshArchived returns nil when archiving is disabled.
func (m Model) refreshArchived() tea.Cmd {
	if m.archive == nil {
		return nil
	}
	return countArchived(m.archive)
}

func (m Model) sessionModalOpen() bool {
	_, ok := m.modalStack.Top().(*modal.SessionStatusModal)
	return ok
}

func (m *Model) syncSessionModal() {
	if top, ok := m.modalStack.Top().(*modal.SessionStatusModal); ok {
		top.UpdateState(m.sessionState())
	}
}

func (m Model) sessionState() modal.SessionState {
	state := modal.SessionState{
		Port:        m.port,
		Baud:        m.baud,
		Connected:   m.connected,
		SessionFile: m.sessionFile,
		ArchiveID:   m.archiveID,
		Archived:    m.archived,
		Warnings:    m.warnings,
	}
	if m.store != nil {
		state.Counts = m.store.CountByMode()
	}
	return state
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusErr = true
}

// Page returns the active page.
func (m Model) Page() Page {
	return m.page
}

// Status returns the status-bar text and whether it reports an error.
func (m Model) Status() (string, bool) {
	return m.status, m.statusErr
}

// Connected returns the connection state as last reported.
func (m Model) Connected() bool {
	return m.connected
}

// SelectedPort returns the port used by the next connect.
func (m Model) SelectedPort() string {
	return m.port
}

// Baud returns the baud rate used by the next connect.
func (m Model) Baud() int {
	return m.baud
}
