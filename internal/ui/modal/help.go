package modal

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyleking/lazyrope/internal/ui"
)

// HelpModal lists the key bindings.
type HelpModal struct {
	done  bool
	close key.Binding
}

// NewHelpModal creates a new help modal.
func NewHelpModal() *HelpModal {
	return &HelpModal{close: key.NewBinding(key.WithKeys("esc", "q", "?", "enter"))}
}

// Update handles input for the help modal.
func (m *HelpModal) Update(msg tea.Msg) (Context, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.close) {
		m.done = true
	}
	return m, nil
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Navigation", [][2]string{
		{"tab / shift+tab", "next / previous page"},
		{"?", "this help"},
		{"q / ctrl+c", "disconnect and quit"},
	}},
	{"Serial", [][2]string{
		{"p", "choose port (refreshes the list)"},
		{"b", "cycle baud rate"},
		{"c", "connect / disconnect"},
		{"d", "diagnostics log"},
		{"i", "session info"},
		{"y", "copy session file path"},
		{"up / down", "scroll records"},
	}},
	{"Chart", [][2]string{
		{"m", "cycle exercise mode"},
		{"f", "cycle Y-axis field"},
		{"r", "refresh chart"},
	}},
}

// View renders the help modal.
func (m *HelpModal) View() string {
	var s strings.Builder
	s.WriteString(ui.TitleStyle.Render("Keys"))
	s.WriteString("\n")
	for _, section := range helpSections {
		s.WriteString("\n")
		s.WriteString(ui.SubtitleStyle.Render(section.title))
		s.WriteString("\n")
		for _, kv := range section.keys {
			s.WriteString("  " + ui.SelectedStyle.Render(ui.PadRight(kv[0], 16)) + kv[1] + "\n")
		}
	}
	s.WriteString("\n")
	s.WriteString(ui.HelpStyle.Render("Press Esc or q to close"))
	return s.String()
}

// IsDone returns true if the modal is finished.
func (m *HelpModal) IsDone() bool {
	return m.done
}

// Result returns nil for the help modal.
func (m *HelpModal) Result() any {
	return nil
}
