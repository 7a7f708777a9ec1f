package mapping

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidMapping = errors.New("invalid mapping")
	ErrUnknownTeam    = errors.New("unknown team")
)

// Error is a mapping error. Path locates the problem inside the file
// ("team", "team.category", ...) and is empty for file level problems.
type Error struct {
	File string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	loc := e.File
	if e.Path != "" {
		if loc != "" {
			loc += ": "
		}
		loc += e.Path
	}
	if loc == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, loc, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func invalid(path, format string, args ...any) *Error {
	return &Error{Path: path, Kind: ErrInvalidMapping, Err: fmt.Errorf(format, args...)}
}
