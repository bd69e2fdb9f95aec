package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord indicates a product record that cannot be stored.
	ErrInvalidRecord = errors.New("invalid product record")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store is closed")
)

// StorageError wraps a failed storage operation.
type StorageError struct {
	Op  string
	Err error
}

// Error returns the error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("catalog storage: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Err
}

func opError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
