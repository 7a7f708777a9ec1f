package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Error is a configuration error tied to one field of the run configuration.
type Error struct {
	Field string
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Field, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Invalid returns an ErrInvalidConfig error for field.
func Invalid(field, format string, args ...any) *Error {
	return &Error{Field: field, Kind: ErrInvalidConfig, Err: fmt.Errorf(format, args...)}
}

// InvalidWrap returns an ErrInvalidConfig error for field caused by err.
func InvalidWrap(field string, err error) *Error {
	return &Error{Field: field, Kind: ErrInvalidConfig, Err: err}
}

func loadError(field string, err error) *Error {
	return &Error{Field: field, Kind: ErrLoadConfig, Err: err}
}
