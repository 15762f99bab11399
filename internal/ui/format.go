package ui

import (
	"strconv"
	"strings"

	"github.com/cli/go-gh/v2/pkg/text"
)

// TruncateWithEllipsis shortens s to at most width display cells.
func TruncateWithEllipsis(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return text.Truncate(width, s)
}

// PadRight pads s with spaces to width display cells.
func PadRight(s string, width int) string {
	w := text.DisplayWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// PadLeft right-aligns s in width display cells.
func PadLeft(s string, width int) string {
	w := text.DisplayWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}

// Count renders "1 record" / "3 records".
func Count(n int, thing string) string {
	return text.Pluralize(n, thing)
}

// FormatNumber prints whole numbers without a decimal point and others in
// their shortest form.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
