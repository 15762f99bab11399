package modal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyleking/lazyrope/internal/record"
	"github.com/kyleking/lazyrope/internal/ui"
)

// SessionState is a snapshot of the running session.
type SessionState struct {
	Port        string
	Baud        int
	Connected   bool
	SessionFile string
	ArchiveID   string
	Counts      map[record.Mode]int
	// Archived is nil until the archive has been counted.
	Archived map[record.Mode]int
	Warnings []string
}

// SessionStatusModal displays where records are going and how many arrived per mode.
type SessionStatusModal struct {
	state SessionState
	done  bool
	close key.Binding
}

// NewSessionStatusModal creates a new session status modal.
func NewSessionStatusModal(state SessionState) *SessionStatusModal {
	return &SessionStatusModal{
		state: state,
		close: key.NewBinding(key.WithKeys("esc", "q", "i")),
	}
}

// UpdateState replaces the displayed snapshot.
func (m *SessionStatusModal) UpdateState(state SessionState) {
	m.state = state
}

// Update handles input for the session status modal.
func (m *SessionStatusModal) Update(msg tea.Msg) (Context, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.close) {
		m.done = true
	}
	return m, nil
}

// View renders the session status modal.
func (m *SessionStatusModal) View() string {
	var s strings.Builder

	s.WriteString(ui.TitleStyle.Render("Session"))
	s.WriteString("\n\n")

	port := m.state.Port
	if port == "" {
		port = "(none)"
	}
	s.WriteString(fmt.Sprintf("%s %s @ %d baud\n", connectionIcon(m.state.Connected), port, m.state.Baud))
	s.WriteString(fmt.Sprintf("  CSV:     %s\n", orDisabled(m.state.SessionFile)))
	s.WriteString(fmt.Sprintf("  Archive: %s\n", orDisabled(m.state.ArchiveID)))
	s.WriteString("\n")

	s.WriteString(ui.SubtitleStyle.Render("Records:"))
	s.WriteString("\n")
	labelWidth := 0
	for _, mode := range record.Modes {
		labelWidth = max(labelWidth, len(mode.Label()))
	}
	total, archived := 0, 0
	for _, mode := range record.Modes {
		n := m.state.Counts[mode]
		total += n
		line := fmt.Sprintf("  %s %s %s", countIcon(n), ui.PadRight(mode.Label(), labelWidth), ui.PadLeft(ui.FormatNumber(float64(n)), 5))
		if m.state.Archived != nil {
			a := m.state.Archived[mode]
			archived += a
			line += fmt.Sprintf("  (%s archived)", ui.FormatNumber(float64(a)))
		}
		if n == 0 {
			line = ui.TableDimmedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString(fmt.Sprintf("  %s\n", ui.Count(total, "record")))
	if m.state.Archived != nil {
		s.WriteString(fmt.Sprintf("  %s archived\n", ui.Count(archived, "record")))
	}

	for _, w := range m.state.Warnings {
		s.WriteString("\n")
		s.WriteString(ui.ErrorStyle.Render(w))
	}

	s.WriteString("\n\n")
	s.WriteString(ui.HelpStyle.Render("Press Esc or q to close"))
	return s.String()
}

// IsDone returns true if the modal is finished.
func (m *SessionStatusModal) IsDone() bool {
	return m.done
}

// Result returns nil for the session status modal.
func (m *SessionStatusModal) Result() any {
	return nil
}

func connectionIcon(connected bool) string {
	if connected {
		return ui.SuccessStyle.Render("+")
	}
	return ui.TableDimmedStyle.Render("o")
}

func countIcon(n int) string {
	if n > 0 {
		return "+"
	}
	return "-"
}

func orDisabled(s string) string {
	if s == "" {
		return ui.TableDimmedStyle.Render("disabled")
	}
	return s
}
