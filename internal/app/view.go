package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kyleking/lazyrope/internal/ui"
)

const homeText = "Smart jump rope data collector. Open the Serial page, pick the rope's port with [p] and connect with [c]. " +
	"Every finished exercise is shown, written to this session's CSV file and charted per mode on the Chart page."

// layout sizes the panes for the current terminal.
func (m *Model) layout() {
	body := m.bodyHeight()
	logHeight := max(body/3, 4)
	m.dataLog.SetSize(m.width, logHeight)
	m.records.SetSize(m.width, max(body-logHeight-2, 4))
	m.chart.SetSize(m.width, body)
}

func (m Model) bodyHeight() int {
	return max(m.height-2-len(m.warnings), 6)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	switch m.page {
	case PageHome:
		body = m.viewHome()
	case PageSerial:
		body = m.viewSerial()
	case PageChart:
		body = m.chart.View()
	}

	parts := []string{m.viewTabs(), body}
	for _, w := range m.warnings {
		parts = append(parts, ui.ErrorStyle.Render(ui.TruncateWithEllipsis("! "+w, m.width)))
	}
	parts = append(parts, m.viewStatusBar())
	main := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.modalStack.HasActive() {
		return m.modalStack.Render(main)
	}
	return main
}

func (m Model) viewTabs() string {
	tabs := make([]string, len(pageTitles))
	for i, title := range pageTitles {
		if Page(i) == m.page {
			tabs[i] = ui.TabActiveStyle.Render(title)
		} else {
			tabs[i] = ui.TabInactiveStyle.Render(title)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHome() string {
	style := ui.PaneStyle(m.width, m.bodyHeight(), false)
	var s strings.Builder
	s.WriteString(ui.TitleStyle.Render("lazyrope"))
	s.WriteString("\n\n")
	s.WriteString(ui.NormalStyle.Render(_wordWrap(homeText, max(m.width-6, 20))))
	s.WriteString("\n\n")
	s.WriteString(ui.HelpStyle.Render("[tab] next page  [?] help  [q] quit"))
	return style.Render(s.String())
}

func (m Model) viewSerial() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewSettings(),
		m.dataLog.View(),
		m.records.View(),
		ui.HelpStyle.Render("[p] port  [b] baud  [c] connect  [d] diagnostics  [i] session  [y] copy path  [?] help"),
	)
}

func (m Model) viewSettings() string {
	port := m.port
	if port == "" {
		port = "(none)"
	}

	var state string
	switch {
	case m.connecting:
		state = ui.SubtitleStyle.Render("working...")
	case m.connected:
		state = ui.SuccessStyle.Render("connected")
	default:
		state = ui.TableDimmedStyle.Render("disconnected")
	}
	return fmt.Sprintf(" Port: %s  Baud: %d  %s", ui.SelectedStyle.Render(port), m.baud, state)
}

func (m Model) viewStatusBar() string {
	count := fmt.Sprintf("Data Count: %d", m.dataCount())
	avail := max(m.width-lipgloss.Width(count)-4, 1)
	left := ui.TruncateWithEllipsis(m.status, avail)
	if m.statusErr {
		left = ui.ErrorStyle.Render(left)
	}
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(count)-2, 1)
	return ui.StatusBarStyle.Render(left + strings.Repeat(" ", gap) + count)
}

func (m Model) dataCount() int {
	if m.store == nil {
		return 0
	}
	return m.store.Len()
}
