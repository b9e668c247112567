package cycler

import (
	"fmt"
	"strings"
)

// Phase is one of the two cycler phases.
type Phase int32

const (
	Red Phase = iota
	Green
)

// String returns "red" or "green".
func (p Phase) String() string {
	switch p {
	case Red:
		return "red"
	case Green:
		return "green"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Toggle returns the other phase.
func (p Phase) Toggle() Phase {
	if p == Red {
		return Green
	}
	return Red
}

// ParsePhase parses "red" or "green", ignoring case and surrounding space.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return Red, nil
	case "green":
		return Green, nil
	default:
		return Red, fmt.Errorf("%w: %q", ErrInvalidPhase, s)
	}
}
