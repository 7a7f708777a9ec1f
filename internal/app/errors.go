package app

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrReadSurvey   = errors.New("read survey failed")
	ErrOutputFailed = errors.New("some reports were not written")
	ErrInterrupted  = errors.New("run interrupted")
)
