package panes

import (
	"fmt"
	"strings"

	"github.com/kyleking/lazyrope/internal/record"
	"github.com/kyleking/lazyrope/internal/ui"
)

// modeWidth fits the longest mode label.
var modeWidth = func() int {
	w := len("Mode")
	for _, mode := range record.Modes {
		w = max(w, len(mode.Label()))
	}
	return w
}()

var recordColumns = []struct {
	title string
	width int
}{
	{"Mode", modeWidth},
	{"Duration", 8},
	{"Avg HR", 6},
	{"Max HR", 6},
	{"Freq", 8},
	{"Jumps", 6},
}

// RecordsModel manages the received-records table.
type RecordsModel struct {
	records       []record.Record
	selectedIndex int
	follow        bool
	focused       bool
	width         int
	height        int
}

// NewRecordsModel creates a records pane that follows new rows.
func NewRecordsModel() RecordsModel {
	return RecordsModel{follow: true}
}

// SetRecords replaces the table contents. While following, the selection
// stays on the newest row.
func (m *RecordsModel) SetRecords(records []record.Record) {
	m.records = records
	switch {
	case len(records) == 0:
		m.selectedIndex = 0
	case m.follow || m.selectedIndex >= len(records):
		m.selectedIndex = len(records) - 1
	}
}

// SetSize updates the pane dimensions.
func (m *RecordsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetFocused updates the focus state.
func (m *RecordsModel) SetFocused(focused bool) {
	m.focused = focused
}

// MoveUp moves selection up and stops following.
func (m *RecordsModel) MoveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
		m.follow = false
	}
}

// MoveDown moves selection down; reaching the last row resumes following.
func (m *RecordsModel) MoveDown() {
	if m.selectedIndex < len(m.records)-1 {
		m.selectedIndex++
	}
	m.follow = m.selectedIndex >= len(m.records)-1
}

// SelectedRecord returns the selected record.
func (m RecordsModel) SelectedRecord() *record.Record {
	if len(m.records) == 0 || m.selectedIndex >= len(m.records) {
		return nil
	}
	return &m.records[m.selectedIndex]
}

// View renders the records pane.
func (m RecordsModel) View() string {
	style := ui.PaneStyle(m.width, m.height, m.focused)
	title := fmt.Sprintf("Records (%d)", len(m.records))
	return style.Render(ui.TitleStyle.Render(title) + "\n" + m.ViewContent())
}

// ViewContent renders the table without the pane border.
func (m RecordsModel) ViewContent() string {
	if len(m.records) == 0 {
		var content strings.Builder
		content.WriteString(ui.SubtitleStyle.Render("No records yet"))
		content.WriteString("\n\n")
		content.WriteString(ui.NormalStyle.Render("Connect to the rope and finish"))
		content.WriteString("\n")
		content.WriteString(ui.NormalStyle.Render("an exercise to see it here."))
		return content.String()
	}

	header := make([]string, len(recordColumns))
	for i, col := range recordColumns {
		header[i] = ui.PadRight(col.title, col.width)
	}

	var content strings.Builder
	content.WriteString(ui.TableHeaderStyle.Render("  " + strings.Join(header, " ")))
	content.WriteString("\n")

	start, end := m.window()
	for i := start; i < end; i++ {
		r := m.records[i]
		cells := []string{
			ui.PadRight(ui.TruncateWithEllipsis(r.Mode.Label(), modeWidth), modeWidth),
			ui.PadLeft(fmt.Sprintf("%ds", r.Duration), 8),
			ui.PadLeft(fmt.Sprint(r.AvgHeartRate), 6),
			ui.PadLeft(fmt.Sprint(r.MaxHeartRate), 6),
			ui.PadLeft(ui.FormatNumber(r.Frequency), 8),
			ui.PadLeft(fmt.Sprint(r.JumpCount), 6),
		}

		indicator := "  "
		rowStyle := ui.TableRowStyle
		if i == m.selectedIndex {
			indicator = "> "
			rowStyle = ui.TableSelectedStyle
		}

		content.WriteString(rowStyle.Render(indicator + strings.Join(cells, " ")))
		if i < end-1 {
			content.WriteString("\n")
		}
	}
	return content.String()
}

// window returns the row range that fits the pane and contains the selection.
func (m RecordsModel) window() (int, int) {
	rows := m.height - 4
	if rows <= 0 || rows >= len(m.records) {
		return 0, len(m.records)
	}
	start := m.selectedIndex - rows + 1
	if start < 0 {
		start = 0
	}
	return start, start + rows
}
