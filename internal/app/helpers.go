package app

import "strings"

// _nextBaud returns the choice after current, or the first when current is
// not a choice.
func _nextBaud(choices []int, current int) int {
	if len(choices) == 0 {
		return current
	}
	for i, v := range choices {
		if v == current {
			return choices[(i+1)%len(choices)]
		}
	}
	return choices[0]
}

func _wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
