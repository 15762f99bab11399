package modal

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kyleking/lazyrope/internal/ui"
)

// DiagnosticKind separates rejected lines from transport or sink failures.
type DiagnosticKind int

const (
	KindFormat DiagnosticKind = iota
	KindStatus
)

// DiagnosticEntry is one line in the diagnostics log.
type DiagnosticEntry struct {
	At     time.Time
	Kind   DiagnosticKind
	Text   string
	Detail string
}

// DiagnosticFilter selects which entries the viewer shows.
type DiagnosticFilter int

const (
	FilterAll DiagnosticFilter = iota
	FilterFormat
	FilterStatus
)

func (f DiagnosticFilter) String() string {
	switch f {
	case FilterFormat:
		return "format"
	case FilterStatus:
		return "status"
	default:
		return "all"
	}
}

// DiagnosticsModal shows rejected lines and error statuses with filtering and search.
type DiagnosticsModal struct {
	entries     []DiagnosticEntry
	visible     []DiagnosticEntry
	filter      DiagnosticFilter
	searchTerm  string
	viewport    viewport.Model
	searchInput textinput.Model
	searchMode  bool
	done        bool
	keys        diagnosticsKeyMap
}

type diagnosticsKeyMap struct {
	Close        key.Binding
	Search       key.Binding
	ToggleFilter key.Binding
	ExitSearch   key.Binding
}

func defaultDiagnosticsKeyMap() diagnosticsKeyMap {
	return diagnosticsKeyMap{
		Close:        key.NewBinding(key.WithKeys("esc", "q")),
		Search:       key.NewBinding(key.WithKeys("/")),
		ToggleFilter: key.NewBinding(key.WithKeys("f")),
		ExitSearch:   key.NewBinding(key.WithKeys("esc")),
	}
}

// NewDiagnosticsModal creates a viewer over a snapshot of entries.
func NewDiagnosticsModal(entries []DiagnosticEntry, width, height int) *DiagnosticsModal {
	vp := viewport.New(max(width-8, 20), max(height-12, 5))

	searchInput := textinput.New()
	searchInput.Placeholder = "Search diagnostics..."
	searchInput.CharLimit = 100

	m := &DiagnosticsModal{
		entries:     entries,
		viewport:    vp,
		searchInput: searchInput,
		keys:        defaultDiagnosticsKeyMap(),
	}
	m.applyFilter()
	return m
}

// Update handles input for the diagnostics modal.
func (m *DiagnosticsModal) Update(msg tea.Msg) (Context, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = max(msg.Width-8, 20)
		m.viewport.Height = max(msg.Height-12, 5)
		m.applyFilter()

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchInput(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Close):
			m.done = true
			return m, nil

		case key.Matches(msg, m.keys.Search):
			m.searchMode = true
			m.searchInput.Focus()
			return m, textinput.Blink

		case key.Matches(msg, m.keys.ToggleFilter):
			m.filter = (m.filter + 1) % 3
			m.applyFilter()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *DiagnosticsModal) handleSearchInput(msg tea.KeyMsg) (Context, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ExitSearch):
		m.searchMode = false
		m.searchInput.Blur()
		return m, nil

	case msg.Type == tea.KeyEnter:
		m.searchTerm = m.searchInput.Value()
		m.searchMode = false
		m.searchInput.Blur()
		m.applyFilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *DiagnosticsModal) applyFilter() {
	term := strings.ToLower(m.searchTerm)
	m.visible = nil
	for _, e := range m.entries {
		if m.filter == FilterFormat && e.Kind != KindFormat {
			continue
		}
		if m.filter == FilterStatus && e.Kind != KindStatus {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(e.Text+" "+e.Detail), term) {
			continue
		}
		m.visible = append(m.visible, e)
	}
	m.updateViewportContent()
}

func (m *DiagnosticsModal) updateViewportContent() {
	if len(m.visible) == 0 {
		m.viewport.SetContent(ui.TableDimmedStyle.Render("No diagnostics match the current filter"))
		return
	}

	var sb strings.Builder
	for _, e := range m.visible {
		sb.WriteString(m.renderEntry(e))
		sb.WriteString("\n")
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m *DiagnosticsModal) renderEntry(e DiagnosticEntry) string {
	stamp := ui.TableDimmedStyle.Render(e.At.Format("15:04:05"))
	var text string
	switch e.Kind {
	case KindFormat:
		text = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(fmt.Sprintf("%q", e.Text))
	default:
		text = ui.ErrorStyle.Render(e.Text)
	}
	line := stamp + " " + text
	if e.Detail != "" {
		line += ui.TableDimmedStyle.Render("  " + e.Detail)
	}
	return line
}

// Visible returns the entries passing the current filter.
func (m *DiagnosticsModal) Visible() []DiagnosticEntry {
	return m.visible
}

// View renders the diagnostics modal.
func (m *DiagnosticsModal) View() string {
	var s strings.Builder

	s.WriteString(ui.TitleStyle.Render("Diagnostics"))
	s.WriteString("\n\n")

	parts := []string{ui.SubtitleStyle.Render(fmt.Sprintf("Filter: %s", m.filter))}
	if m.searchTerm != "" {
		parts = append(parts, ui.TableDimmedStyle.Render(fmt.Sprintf("Search: %q", m.searchTerm)))
	}
	parts = append(parts, ui.TableDimmedStyle.Render(ui.Count(len(m.visible), "line")))
	s.WriteString(strings.Join(parts, "  "))
	s.WriteString("\n")

	if m.searchMode {
		s.WriteString(ui.SubtitleStyle.Render("Search: "))
		s.WriteString(m.searchInput.View())
		s.WriteString("\n")
	}
	s.WriteString("\n")

	s.WriteString(m.viewport.View())
	s.WriteString("\n\n")

	if m.searchMode {
		s.WriteString(ui.HelpStyle.Render("[enter] apply  [esc] cancel"))
	} else {
		s.WriteString(ui.HelpStyle.Render("[f] filter  [/] search  [↑↓] scroll  [q] close"))
	}
	return s.String()
}

// IsDone returns true if the modal is finished.
func (m *DiagnosticsModal) IsDone() bool {
	return m.done
}

// Result returns nil.
func (m *DiagnosticsModal) Result() any {
	return nil
}
