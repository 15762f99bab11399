package record

import (
	"fmt"
	"time"
)

// Mode is the exercise session type reported by the rope.
type Mode int

// Mode constants, as encoded in the first field of a wire line.
const (
	ModeTimer Mode = iota
	ModeCountdown
	ModeTargetCount
)

// Modes lists every valid mode in wire order.
var Modes = []Mode{ModeTimer, ModeCountdown, ModeTargetCount}

var modeLabels = map[Mode]string{
	ModeTimer:       "Timer Mode",
	ModeCountdown:   "Countdown Mode",
	ModeTargetCount: "Target Count Mode",
}

// Valid returns true if m is one of the known modes.
func (m Mode) Valid() bool {
	_, ok := modeLabels[m]
	return ok
}

// Label returns the display label for the mode.
func (m Mode) Label() string {
	if label, ok := modeLabels[m]; ok {
		return label
	}
	return m.String()
}

func (m Mode) String() string {
	if m.Valid() {
		return modeLabels[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Record is one exercise-session summary received from the device.
type Record struct {
	Mode         Mode
	Duration     int
	AvgHeartRate int
	MaxHeartRate int
	Frequency    float64
	JumpCount    int
	RecordedAt   time.Time
}

// Summary renders the record the way the received-data log shows it.
func (r Record) Summary() string {
	return fmt.Sprintf("Mode: %d, Duration: %ds, Avg HR: %dBPM, Max HR: %dBPM, Frequency: %.1f jumps/min, Jumps: %d",
		int(r.Mode), r.Duration, r.AvgHeartRate, r.MaxHeartRate, r.Frequency, r.JumpCount)
}

// Field selects one numeric column of a Record for charting.
type Field int

// Chartable fields.
const (
	FieldDuration Field = iota
	FieldAvgHeartRate
	FieldMaxHeartRate
	FieldFrequency
	FieldJumpCount
)

// Fields lists every chartable field in display order.
var Fields = []Field{FieldDuration, FieldAvgHeartRate, FieldMaxHeartRate, FieldFrequency, FieldJumpCount}

var fieldLabels = map[Field]string{
	FieldDuration:     "Duration (s)",
	FieldAvgHeartRate: "Average Heart Rate (BPM)",
	FieldMaxHeartRate: "Maximum Heart Rate (BPM)",
	FieldFrequency:    "Jumping Frequency (jumps/min)",
	FieldJumpCount:    "Jumps",
}

// Label returns the axis label for the field.
func (f Field) Label() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

func (f Field) String() string {
	return f.Label()
}

// Value extracts the field from r.
func (f Field) Value(r Record) float64 {
	switch f {
	case FieldDuration:
		return float64(r.Duration)
	case FieldAvgHeartRate:
		return float64(r.AvgHeartRate)
	case FieldMaxHeartRate:
		return float64(r.MaxHeartRate)
	case FieldFrequency:
		return r.Frequency
	case FieldJumpCount:
		return float64(r.JumpCount)
	default:
		return 0
	}
}
