package ui

import "testing"

func TestInitTheme(t *testing.T) {
	t.Cleanup(func() { InitTheme(DefaultTheme) })

	InitTheme(Themes["mono"])
	if PrimaryColor != MonoTheme.Primary {
		t.Errorf("PrimaryColor = %v, want %v", PrimaryColor, MonoTheme.Primary)
	}
	if got := TitleStyle.GetForeground(); got != MonoTheme.Primary {
		t.Errorf("TitleStyle foreground = %v, want %v", got, MonoTheme.Primary)
	}
}

func TestPaneStyle(t *testing.T) {
	if got := PaneStyle(40, 10, false).GetWidth(); got != 38 {
		t.Errorf("width = %d, want 38", got)
	}
	if got := PaneStyle(1, 1, true).GetHeight(); got != 0 {
		t.Errorf("height = %d, want 0", got)
	}
}
