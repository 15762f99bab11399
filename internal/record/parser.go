package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FieldCount is the number of comma-separated fields in a wire line.
const FieldCount = 6

// FormatError reports a line that does not decode into a Record.
type FormatError struct {
	Line   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: %s: %q", e.Reason, e.Line)
}

// Parser turns raw serial lines into Records.
type Parser struct {
	// Strict rejects negative values and a max heart rate below the average.
	Strict bool
	// Now stamps RecordedAt. Defaults to time.Now.
	Now func() time.Time
}

// Parse decodes one line with a permissive parser.
func Parse(line string, now time.Time) (Record, error) {
	p := Parser{Now: func() time.Time { return now }}
	return p.Parse(line)
}

// Parse decodes line as mode,duration,avgHeartRate,maxHeartRate,frequency,jumpCount.
// Parsing is all-or-nothing: any failure returns a *FormatError and a zero Record.
func (p Parser) Parse(line string) (Record, error) {
	parts := strings.Split(line, ",")
	if len(parts) != FieldCount {
		return Record{}, &FormatError{
			Line:   line,
			Reason: fmt.Sprintf("expected %d fields, got %d", FieldCount, len(parts)),
		}
	}

	var values [FieldCount]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Record{}, &FormatError{Line: line, Reason: fmt.Sprintf("field %d is not a number", i+1)}
		}
		values[i] = v
	}

	ints := make([]int, 0, 5)
	for _, i := range []int{0, 1, 2, 3, 5} {
		n, ok := truncate(values[i])
		if !ok {
			return Record{}, &FormatError{Line: line, Reason: fmt.Sprintf("field %d is out of range", i+1)}
		}
		ints = append(ints, n)
	}

	r := Record{
		Mode:         Mode(ints[0]),
		Duration:     ints[1],
		AvgHeartRate: ints[2],
		MaxHeartRate: ints[3],
		Frequency:    values[4],
		JumpCount:    ints[4],
	}

	if !r.Mode.Valid() {
		return Record{}, &FormatError{Line: line, Reason: fmt.Sprintf("unknown mode %d", int(r.Mode))}
	}

	if p.Strict {
		if reason := strictViolation(r); reason != "" {
			return Record{}, &FormatError{Line: line, Reason: reason}
		}
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	r.RecordedAt = now()
	return r, nil
}

// truncate drops the fractional part toward zero.
func truncate(v float64) (int, bool) {
	t := math.Trunc(v)
	if t > math.MaxInt32 || t < math.MinInt32 {
		return 0, false
	}
	return int(t), true
}

func strictViolation(r Record) string {
	switch {
	case r.Duration < 0:
		return "negative duration"
	case r.AvgHeartRate < 0 || r.MaxHeartRate < 0:
		return "negative heart rate"
	case r.Frequency < 0:
		return "negative frequency"
	case r.JumpCount < 0:
		return "negative jump count"
	case r.MaxHeartRate < r.AvgHeartRate:
		return "max heart rate below average"
	}
	return ""
}
