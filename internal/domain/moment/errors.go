package moment

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidBudget = errors.New("invalid moment budget")
	ErrContiguity    = errors.New("moment list lost contiguity")
)
