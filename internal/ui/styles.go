package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette the styles are built from.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
	SoftMuted lipgloss.Color
	Text      lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	ModalBg   lipgloss.Color
}

// DefaultTheme uses green for connect, blue for charts and red for errors.
var DefaultTheme = Theme{
	Primary:   lipgloss.Color("#2196F3"),
	Secondary: lipgloss.Color("#607D8B"),
	Accent:    lipgloss.Color("#4CAF50"),
	Muted:     lipgloss.Color("240"),
	SoftMuted: lipgloss.Color("245"),
	Text:      lipgloss.Color("252"),
	Error:     lipgloss.Color("#f44336"),
	Success:   lipgloss.Color("#4CAF50"),
	ModalBg:   lipgloss.Color("235"),
}

// MonoTheme keeps to the 256-color grays for terminals with poor color support.
var MonoTheme = Theme{
	Primary:   lipgloss.Color("255"),
	Secondary: lipgloss.Color("245"),
	Accent:    lipgloss.Color("231"),
	Muted:     lipgloss.Color("240"),
	SoftMuted: lipgloss.Color("245"),
	Text:      lipgloss.Color("252"),
	Error:     lipgloss.Color("255"),
	Success:   lipgloss.Color("255"),
	ModalBg:   lipgloss.Color("235"),
}

// Themes maps config names to palettes.
var Themes = map[string]Theme{
	"default": DefaultTheme,
	"mono":    MonoTheme,
}

var currentTheme = DefaultTheme

// Colors used throughout the UI.
var (
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	AccentColor    lipgloss.Color
	MutedColor     lipgloss.Color
	SoftMutedColor lipgloss.Color
	TextColor      lipgloss.Color
	ErrorColor     lipgloss.Color
	SuccessColor   lipgloss.Color
	ModalBgColor   lipgloss.Color
)

// Styles for the application (initialized in ApplyTheme).
var (
	BorderStyle        lipgloss.Style
	ChartBarStyle      lipgloss.Style
	ErrorStyle         lipgloss.Style
	FocusedBorderStyle lipgloss.Style
	HelpStyle          lipgloss.Style
	ModalStyle         lipgloss.Style
	NormalStyle        lipgloss.Style
	SelectedStyle      lipgloss.Style
	StatusBarStyle     lipgloss.Style
	SubtitleStyle      lipgloss.Style
	SuccessStyle       lipgloss.Style
	TableDimmedStyle   lipgloss.Style
	TableHeaderStyle   lipgloss.Style
	TableRowStyle      lipgloss.Style
	TableSelectedStyle lipgloss.Style
	TabActiveStyle     lipgloss.Style
	TabInactiveStyle   lipgloss.Style
	TitleStyle         lipgloss.Style
)

func init() {
	ApplyTheme()
}

// InitTheme sets the theme and applies colors.
func InitTheme(t Theme) {
	currentTheme = t
	ApplyTheme()
}

// ApplyTheme updates all colors and styles from current theme.
func ApplyTheme() {
	PrimaryColor = currentTheme.Primary
	SecondaryColor = currentTheme.Secondary
	AccentColor = currentTheme.Accent
	MutedColor = currentTheme.Muted
	SoftMutedColor = currentTheme.SoftMuted
	TextColor = currentTheme.Text
	ErrorColor = currentTheme.Error
	SuccessColor = currentTheme.Success
	ModalBgColor = currentTheme.ModalBg

	BorderStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(SecondaryColor)

	ChartBarStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor)

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ErrorColor)

	FocusedBorderStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor)

	HelpStyle = lipgloss.NewStyle().
		Foreground(SoftMutedColor)

	ModalStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Background(ModalBgColor).
		Padding(1, 2)

	NormalStyle = lipgloss.NewStyle().
		Foreground(TextColor)

	SelectedStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(AccentColor)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(lipgloss.Color("237")).
		Padding(0, 1)

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(SoftMutedColor)

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(SuccessColor)

	TableDimmedStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	TableHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	TableRowStyle = lipgloss.NewStyle().
		Foreground(TextColor)

	TableSelectedStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(AccentColor)

	TabActiveStyle = lipgloss.NewStyle().
		Background(PrimaryColor).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Bold(true)

	TabInactiveStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 2)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)
}

// PaneStyle returns a style for a pane with optional focus.
func PaneStyle(width, height int, focused bool) lipgloss.Style {
	style := BorderStyle
	if focused {
		style = FocusedBorderStyle
	}
	return style.Width(max(width-2, 0)).Height(max(height-2, 0))
}
