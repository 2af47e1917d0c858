package boundary

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidPolicy = errors.New("invalid boundary policy")
)
