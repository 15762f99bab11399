package modal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/kyleking/lazyrope/internal/serialport"
	"github.com/kyleking/lazyrope/internal/ui"
)

// PortSelectedMsg is sent when a port is chosen.
type PortSelectedMsg struct {
	Name string
}

// PortSelectModal lets the user pick a serial port, filtering by typing.
type PortSelectModal struct {
	ports    []serialport.PortInfo
	filtered []serialport.PortInfo
	filter   textinput.Model
	selected int
	current  string
	done     bool
	result   *PortSelectedMsg
	keys     portSelectKeyMap
}

type portSelectKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

func defaultPortSelectKeyMap() portSelectKeyMap {
	return portSelectKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "ctrl+p")),
		Down:   key.NewBinding(key.WithKeys("down", "ctrl+n")),
		Select: key.NewBinding(key.WithKeys("enter")),
		Cancel: key.NewBinding(key.WithKeys("esc")),
	}
}

// NewPortSelectModal creates a picker over ports with current preselected.
func NewPortSelectModal(ports []serialport.PortInfo, current string) *PortSelectModal {
	filter := textinput.New()
	filter.Placeholder = "type to filter..."
	filter.CharLimit = 64
	filter.Focus()

	m := &PortSelectModal{
		ports:   ports,
		filter:  filter,
		current: current,
		keys:    defaultPortSelectKeyMap(),
	}
	m.applyFilter()
	for i, p := range m.filtered {
		if p.Name == current {
			m.selected = i
			break
		}
	}
	return m
}

// Update handles input for the port picker.
func (m *PortSelectModal) Update(msg tea.Msg) (Context, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		m.done = true
		return m, nil

	case key.Matches(keyMsg, m.keys.Select):
		if len(m.filtered) > 0 {
			m.result = &PortSelectedMsg{Name: m.filtered[m.selected].Name}
		}
		m.done = true
		return m, nil

	case key.Matches(keyMsg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Down):
		if m.selected < len(m.filtered)-1 {
			m.selected++
		}
		return m, nil
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

// applyFilter ranks ports by fuzzy match on name and description.
func (m *PortSelectModal) applyFilter() {
	query := strings.TrimSpace(m.filter.Value())
	m.selected = 0
	if query == "" {
		m.filtered = m.ports
		return
	}

	targets := make([]string, len(m.ports))
	for i, p := range m.ports {
		targets[i] = p.Name + " " + p.Description
	}
	matches := fuzzy.Find(query, targets)
	m.filtered = make([]serialport.PortInfo, 0, len(matches))
	for _, match := range matches {
		m.filtered = append(m.filtered, m.ports[match.Index])
	}
}

// Filtered returns the ports currently shown.
func (m *PortSelectModal) Filtered() []serialport.PortInfo {
	return m.filtered
}

// View renders the port picker.
func (m *PortSelectModal) View() string {
	var s strings.Builder
	s.WriteString(ui.TitleStyle.Render("Select Port"))
	s.WriteString("\n\n")
	s.WriteString(m.filter.View())
	s.WriteString("\n\n")

	if len(m.ports) == 0 {
		s.WriteString(ui.SubtitleStyle.Render("No serial ports found. Plug in the rope and press p again."))
	} else if len(m.filtered) == 0 {
		s.WriteString(ui.SubtitleStyle.Render("No ports match the filter"))
	}

	for i, p := range m.filtered {
		line := p.Name
		if p.Description != "" {
			line = fmt.Sprintf("%s  %s", ui.PadRight(p.Name, 20), ui.TableDimmedStyle.Render(p.Description))
		}
		if p.Name == m.current {
			line += ui.SubtitleStyle.Render(" (current)")
		}
		if i == m.selected {
			s.WriteString(ui.SelectedStyle.Render("> ") + line)
		} else {
			s.WriteString("  " + line)
		}
		if i < len(m.filtered)-1 {
			s.WriteString("\n")
		}
	}

	s.WriteString("\n\n")
	s.WriteString(ui.HelpStyle.Render("[↑↓] move  [enter] select  [esc] cancel"))
	return s.String()
}

// IsDone returns true if the modal is finished.
func (m *PortSelectModal) IsDone() bool {
	return m.done
}

// Result returns the selection, or nil when cancelled.
func (m *PortSelectModal) Result() any {
	if m.result == nil {
		return nil
	}
	return *m.result
}
