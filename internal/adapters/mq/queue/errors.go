package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrStopped = errors.New("queue stopped")
)
