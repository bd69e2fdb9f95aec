package admission

import "errors"

var (
	// ErrInvalidRules indicates an invalid rule configuration.
	ErrInvalidRules = errors.New("invalid admission rules")
)
