// Package levels maps survey skill level answers to ordinal values.
package levels

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Level is a self-reported skill level. NotApplicable is used for blank
// answers and for selections that carry no level (free-text lists).
type Level int

const (
	NotApplicable Level = -1
	None          Level = 0
	Novice        Level = 1
	Intermediate  Level = 2
	Advanced      Level = 3
	Expert        Level = 4
)

// ErrUnknownLevel is returned for answers that are not a level name or value.
var ErrUnknownLevel = errors.New("unknown skill level")

var names = [...]string{"None", "Novice", "Intermediate", "Advanced", "Expert"}

// Parse converts an answer cell to a Level. Names are case-insensitive,
// numeric values 0-4 are accepted and blank or "N/A" is NotApplicable.
func Parse(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") || strings.EqualFold(s, "NA") {
		return NotApplicable, nil
	}
	for i, n := range names {
		if strings.EqualFold(s, n) {
			return Level(i), nil
		}
	}
	if v, err := strconv.Atoi(s); err == nil && v >= int(None) && v <= int(Expert) {
		return Level(v), nil
	}
	return NotApplicable, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// String returns the survey wording of the level, or "N/A".
func (l Level) String() string {
	if !l.Rated() {
		return "N/A"
	}
	return names[l]
}

// Value returns the numeric value used in reports, "N/A" when not rated.
func (l Level) Value() string {
	if !l.Rated() {
		return "N/A"
	}
	return strconv.Itoa(int(l))
}

// Rated reports whether l is one of None..Expert.
func (l Level) Rated() bool {
	return l >= None && l <= Expert
}

// Claims reports whether l means the respondent actually has the skill.
func (l Level) Claims() bool {
	return l >= Novice && l <= Expert
}
