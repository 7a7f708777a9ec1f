package report

import "errors"

// Sentinel kinds for report errors.
var (
	ErrNoFreeName    = errors.New("no free report file name")
	ErrWriteFailed   = errors.New("write report failed")
	ErrUnknownFormat = errors.New("unknown report format")
)
