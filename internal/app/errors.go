package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidBundle = errors.New("invalid contest bundle")
	ErrNotStarted    = errors.New("service not started")
)
