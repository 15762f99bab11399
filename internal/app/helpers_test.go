package app

import (
	"testing"
)

func TestNextBaud(t *testing.T) {
	choices := []int{9600, 115200, 230400}
	tests := []struct {
		name    string
		choices []int
		current int
		want    int
	}{
		{"advances", choices, 9600, 115200},
		{"wraps", choices, 230400, 9600},
		{"unknown starts over", choices, 57600, 9600},
		{"no choices", nil, 57600, 57600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := _nextBaud(tt.choices, tt.current)
			if got != tt.want {
				t.Errorf("_nextBaud(%v, %d) = %d, want %d", tt.choices, tt.current, got, tt.want)
			}
		})
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{
			"basic wrap",
			"hello world foo bar",
			10,
			"hello\nworld foo\nbar",
		},
		{
			"no wrap needed",
			"hello",
			10,
			"hello",
		},
		{
			"exact width",
			"hello world",
			11,
			"hello world",
		},
		{
			"single word longer than width",
			"supercalifragilisticexpialidocious",
			10,
			"supercalifragilisticexpialidocious",
		},
		{
			"zero width",
			"hello world",
			0,
			"hello world",
		},
		{
			"negative width",
			"hello world",
			-1,
			"hello world",
		},
		{
			"multiple spaces",
			"hello   world",
			10,
			"hello\nworld",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := _wordWrap(tt.text, tt.width)
			if got != tt.want {
				t.Errorf("_wordWrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}
