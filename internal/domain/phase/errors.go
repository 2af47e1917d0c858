package phase

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidProfile = errors.New("invalid timing profile")
)
