package rules

import (
	"errors"
	"fmt"
)

// ErrNoEngine is returned when no rules have been loaded yet.
var ErrNoEngine = errors.New("no admission rules loaded")

// ReloadError reports a failed reload. The previously active engine stays in
// place.
type ReloadError struct {
	// Generation is the generation that remains active.
	Generation uint64
	Err        error
}

// Error returns the error message.
func (e *ReloadError) Error() string {
	return fmt.Sprintf("rules reload failed, keeping generation %d: %v", e.Generation, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ReloadError) Unwrap() error {
	return e.Err
}
