package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors, kept as public API so callers can
// errors.Is against observation failures.
var (
	ErrObserveFailed = errors.New("metrics observe failed")
)
