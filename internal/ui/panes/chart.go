package panes

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kyleking/lazyrope/internal/record"
	"github.com/kyleking/lazyrope/internal/store"
	"github.com/kyleking/lazyrope/internal/ui"
)

// NoDataMessage is shown when the selected mode has no records.
const NoDataMessage = "No data available. Please receive data via serial port first."

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// ChartModel renders one field of one mode's records as a trend.
type ChartModel struct {
	mode    record.Mode
	field   record.Field
	records []record.Record
	width   int
	height  int
}

// NewChartModel creates a chart over the first mode and field.
func NewChartModel() ChartModel {
	return ChartModel{mode: record.Modes[0], field: record.Fields[0]}
}

// Mode returns the charted mode.
func (m ChartModel) Mode() record.Mode {
	return m.mode
}

// Field returns the charted field.
func (m ChartModel) Field() record.Field {
	return m.field
}

// NextMode cycles to the next exercise mode.
func (m *ChartModel) NextMode() {
	m.mode = record.Modes[(indexOf(record.Modes, m.mode)+1)%len(record.Modes)]
}

// NextField cycles to the next field.
func (m *ChartModel) NextField() {
	m.field = record.Fields[(indexOf(record.Fields, m.field)+1)%len(record.Fields)]
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return -1
}

// SetRecords replaces the records for the current mode.
func (m *ChartModel) SetRecords(records []record.Record) {
	m.records = records
}

// SetSize updates the pane dimensions.
func (m *ChartModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Title returns "<mode> - <field> Trend".
func (m ChartModel) Title() string {
	return fmt.Sprintf("%s - %s Trend", m.mode.Label(), m.field.Label())
}

// Stats renders the statistics box text.
func (m ChartModel) Stats() string {
	if len(m.records) == 0 {
		return "No data available"
	}
	s := store.Summarize(m.records, m.field)
	return fmt.Sprintf("Data Points: %d\nAverage: %.2f\nMaximum: %s\nMinimum: %s",
		s.Count, s.Mean, ui.FormatNumber(s.Max), ui.FormatNumber(s.Min))
}

// View renders the chart pane.
func (m ChartModel) View() string {
	style := ui.PaneStyle(m.width, m.height, true)
	return style.Render(m.ViewContent())
}

// ViewContent renders the chart without the pane border.
func (m ChartModel) ViewContent() string {
	if len(m.records) == 0 {
		var s strings.Builder
		s.WriteString(ui.TitleStyle.Render("Data Chart"))
		s.WriteString("\n\n")
		s.WriteString(ui.ErrorStyle.Render(NoDataMessage))
		s.WriteString("\n\n")
		s.WriteString(m.selectorLine())
		return s.String()
	}

	inner := max(m.width-4, 20)
	statsBox := ui.BorderStyle.Padding(0, 1).Render(
		ui.SubtitleStyle.Render("Statistics") + "\n" + m.Stats())
	plotWidth := max(inner-lipgloss.Width(statsBox)-2, 10)

	values := store.Values(m.records, m.field)

	var plot strings.Builder
	plot.WriteString(ui.ChartBarStyle.Render(Sparkline(values, plotWidth)))
	plot.WriteString("\n\n")
	plot.WriteString(m.bars(values, plotWidth))

	var s strings.Builder
	s.WriteString(ui.TitleStyle.Render(m.Title()))
	s.WriteString("\n")
	s.WriteString(m.selectorLine())
	s.WriteString("\n\n")
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, plot.String(), "  ", statsBox))
	return s.String()
}

func (m ChartModel) selectorLine() string {
	return ui.HelpStyle.Render(fmt.Sprintf("[m] mode: %s  [f] field: %s", m.mode.Label(), m.field.Label()))
}

// bars draws one annotated bar per record, newest last, as many as fit.
func (m ChartModel) bars(values []float64, width int) string {
	rows := m.height - 10
	if rows < 1 {
		rows = len(values)
	}
	first := 0
	if len(values) > rows {
		first = len(values) - rows
	}

	var peak float64
	labels := make([]string, len(values))
	labelWidth := 0
	for i, v := range values {
		peak = max(peak, v)
		labels[i] = ui.FormatNumber(v)
		labelWidth = max(labelWidth, len(labels[i]))
	}
	indexWidth := len(fmt.Sprint(len(values)))
	barWidth := max(width-indexWidth-labelWidth-4, 1)

	lines := make([]string, 0, len(values)-first)
	for i := first; i < len(values); i++ {
		n := 0
		if peak > 0 && values[i] > 0 {
			n = int(values[i] / peak * float64(barWidth))
		}
		bar := strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
		lines = append(lines, fmt.Sprintf("%*d %s %s",
			indexWidth, i+1, ui.ChartBarStyle.Render(bar), ui.PadLeft(labels[i], labelWidth)))
	}
	return strings.Join(lines, "\n")
}

// Sparkline renders the last width values scaled between their min and max.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	top := len(sparkLevels) - 1
	out := make([]rune, len(values))
	for i, v := range values {
		level := top / 2
		if hi > lo {
			level = int((v-lo)/(hi-lo)*float64(top) + 0.5)
		}
		out[i] = sparkLevels[level]
	}
	return string(out)
}
