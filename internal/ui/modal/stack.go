package modal

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kyleking/lazyrope/internal/ui"
)

// Context is a modal dialog on the stack.
type Context interface {
	Update(msg tea.Msg) (Context, tea.Cmd)
	View() string
	IsDone() bool
	// Result is delivered as a tea.Msg when the modal closes. nil means
	// the modal was dismissed without a result.
	Result() any
}

// Stack holds open modals; only the top one receives input.
type Stack struct {
	modals []Context
	width  int
	height int
}

// NewStack creates an empty modal stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push opens m on top of the stack.
func (s *Stack) Push(m Context) {
	s.modals = append(s.modals, m)
}

// HasActive returns true if any modal is open.
func (s *Stack) HasActive() bool {
	return len(s.modals) > 0
}

// Top returns the active modal, or nil.
func (s *Stack) Top() Context {
	if len(s.modals) == 0 {
		return nil
	}
	return s.modals[len(s.modals)-1]
}

// SetSize records the terminal size used to center modals.
func (s *Stack) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Update forwards msg to the top modal, popping it once done.
func (s *Stack) Update(msg tea.Msg) tea.Cmd {
	top := s.Top()
	if top == nil {
		return nil
	}

	updated, cmd := top.Update(msg)
	s.modals[len(s.modals)-1] = updated

	if !updated.IsDone() {
		return cmd
	}

	s.modals = s.modals[:len(s.modals)-1]
	result := updated.Result()
	if result == nil {
		return cmd
	}
	return tea.Batch(cmd, func() tea.Msg { return result })
}

// Render draws the top modal centered over the terminal.
func (s *Stack) Render(background string) string {
	top := s.Top()
	if top == nil {
		return background
	}
	box := ui.ModalStyle.Render(top.View())
	if s.width == 0 || s.height == 0 {
		return box
	}
	return lipgloss.Place(s.width, s.height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))
}
