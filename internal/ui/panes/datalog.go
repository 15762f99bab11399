package panes

import (
	"strings"

	"github.com/kyleking/lazyrope/internal/record"
	"github.com/kyleking/lazyrope/internal/ui"
)

// DefaultDataLogLimit is how many summary lines the data log keeps.
const DefaultDataLogLimit = 200

// DataLogModel shows one summary line per received record, newest last.
type DataLogModel struct {
	lines  []string
	limit  int
	width  int
	height int
}

// NewDataLogModel creates a data log that keeps at most limit lines.
func NewDataLogModel(limit int) DataLogModel {
	if limit <= 0 {
		limit = DefaultDataLogLimit
	}
	return DataLogModel{limit: limit}
}

// Append adds the summary of r.
func (m *DataLogModel) Append(r record.Record) {
	m.AppendLine(r.Summary())
}

// AppendLine adds a free-form line, dropping the oldest line when full.
func (m *DataLogModel) AppendLine(line string) {
	m.lines = append(m.lines, line)
	if over := len(m.lines) - m.limit; over > 0 {
		m.lines = append(m.lines[:0], m.lines[over:]...)
	}
}

// Lines returns the retained summary lines.
func (m DataLogModel) Lines() []string {
	return m.lines
}

// SetSize updates the pane dimensions.
func (m *DataLogModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// View renders the data log pane.
func (m DataLogModel) View() string {
	style := ui.PaneStyle(m.width, m.height, false)
	return style.Render(ui.TitleStyle.Render("Received Data") + "\n" + m.ViewContent())
}

// ViewContent renders the tail of the log that fits the pane.
func (m DataLogModel) ViewContent() string {
	if len(m.lines) == 0 {
		return ui.SubtitleStyle.Render("Waiting for data...")
	}

	lines := m.lines
	if rows := m.height - 3; rows > 0 && len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	width := m.width - 4
	out := make([]string, len(lines))
	for i, l := range lines {
		if width > 0 {
			l = ui.TruncateWithEllipsis(l, width)
		}
		out[i] = ui.NormalStyle.Render(l)
	}
	return strings.Join(out, "\n")
}
