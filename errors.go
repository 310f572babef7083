package kkr

import (
	"errors"
)

var (
	ErrOutputNotFound = errors.New("Output file not found")
	ErrMarkerNotFound = errors.New("marker not found in output")
	ErrMalformed      = errors.New("malformed value in output")
	ErrNoSource       = errors.New("source file absent")
	ErrBlankOutput    = errors.New("blank output")
)

// errSkip is returned by an extractor that does not apply to the run
// at hand, for example spin moments of a non-magnetic calculation.
var errSkip = errors.New("extractor not applicable")
