package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application key bindings.
type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
	Up       key.Binding
	Down     key.Binding

	Port        key.Binding
	Baud        key.Binding
	Connect     key.Binding
	Diagnostics key.Binding
	Session     key.Binding
	Copy        key.Binding

	Mode    key.Binding
	Field   key.Binding
	Refresh key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
		ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous page")),
		Up:       key.NewBinding(key.WithKeys("up", "k")),
		Down:     key.NewBinding(key.WithKeys("down", "j")),

		Port:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "port")),
		Baud:        key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "baud")),
		Connect:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect")),
		Diagnostics: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "diagnostics")),
		Session:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "session")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),

		Mode:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mode")),
		Field:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "field")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}
