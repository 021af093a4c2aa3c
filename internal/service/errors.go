package service

import "errors"

var (
	// ErrInvalidTimeRange marks a malformed local date/time bound.
	ErrInvalidTimeRange = errors.New("invalid time range")
	// ErrInvalidInput marks any other caller mistake.
	ErrInvalidInput = errors.New("invalid input")
)
