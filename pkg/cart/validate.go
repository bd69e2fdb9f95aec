package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSnapshot is the parent of every snapshot validation error.
	ErrInvalidSnapshot = errors.New("invalid cart snapshot")

	// ErrInvalidQuantity indicates a line with a zero or negative quantity.
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be positive", ErrInvalidSnapshot)

	// ErrInvalidInventory indicates a variant with a negative inventory level.
	ErrInvalidInventory = fmt.Errorf("%w: inventory quantity must not be negative", ErrInvalidSnapshot)

	// ErrMissingLineID indicates a line without an identifier.
	ErrMissingLineID = fmt.Errorf("%w: line id is required", ErrInvalidSnapshot)
)

// LineError reports which line of a snapshot failed validation.
type LineError struct {
	Index  int
	LineID string
	Err    error
}

// Error returns the error message.
func (e *LineError) Error() string {
	if e.LineID != "" {
		return fmt.Sprintf("line %d (%s): %v", e.Index, e.LineID, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Validate rejects malformed snapshots. Absent optional data (categories,
// variant, inventory level) is valid; negative or zero counts are not.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: snapshot is nil", ErrInvalidSnapshot)
	}

	var errs []error
	for i, line := range s.Lines {
		if line.ID == "" {
			errs = append(errs, &LineError{Index: i, Err: ErrMissingLineID})
		}
		if line.Quantity <= 0 {
			errs = append(errs, &LineError{Index: i, LineID: line.ID, Err: ErrInvalidQuantity})
		}
		if line.Variant != nil && line.Variant.InventoryQuantity != nil && *line.Variant.InventoryQuantity < 0 {
			errs = append(errs, &LineError{Index: i, LineID: line.ID, Err: ErrInvalidInventory})
		}
	}

	return errors.Join(errs...)
}
