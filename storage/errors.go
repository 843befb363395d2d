package storage

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound indicates that no trade exists with the requested id
	ErrNotFound = errors.New("trade not found")

	// ErrCorruptData indicates a stored record that cannot be decoded
	ErrCorruptData = errors.New("corrupt trade data")
)

// StorageError wraps a failed persistence operation.
type StorageError struct {
	Op  string
	ID  string
	Err error
}

func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func newStorageError(op, id string, err error) *StorageError {
	return &StorageError{
		Op:  op,
		ID:  id,
		Err: err,
	}
}

func corrupt(id string, cause error) error {
	return newStorageError("decode", id, errors.WithMessage(ErrCorruptData, cause.Error()))
}
