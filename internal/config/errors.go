package config

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from
// callers. Both fail process startup; no contest runs against a config
// that did not validate.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
