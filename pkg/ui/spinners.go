package ui

import "time"

// SpinnerType selects a spinner animation style.
type SpinnerType int

const (
	SpinnerDots SpinnerType = iota
	SpinnerLine
	SpinnerCircle
	SpinnerBounce
)

// Spinner holds animation frames and their cadence.
type Spinner struct {
	Frames   []string
	Interval time.Duration
}

// Spinners maps each style to its frames.
var Spinners = map[SpinnerType]Spinner{
	SpinnerDots: {
		Frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		Interval: 80 * time.Millisecond,
	},
	SpinnerLine: {
		Frames:   []string{"-", "\\", "|", "/"},
		Interval: 100 * time.Millisecond,
	},
	SpinnerCircle: {
		Frames:   []string{"◐", "◓", "◑", "◒"},
		Interval: 100 * time.Millisecond,
	},
	SpinnerBounce: {
		Frames:   []string{"⠁", "⠂", "⠄", "⡀", "⢀", "⠠", "⠐", "⠈"},
		Interval: 120 * time.Millisecond,
	},
}

// GetSpinner returns a spinner by type. SpinnerLine is the only pure
// ASCII style, so terminals that cannot render Unicode always get it.
func GetSpinner(t SpinnerType) Spinner {
	if !UnicodeTerminal() {
		return Spinners[SpinnerLine]
	}
	if s, ok := Spinners[t]; ok {
		return s
	}
	return Spinners[SpinnerDots]
}
