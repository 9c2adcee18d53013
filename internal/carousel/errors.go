package carousel

import (
	"errors"
	"fmt"
)

var (
	// ErrNoItems is returned when an engine is constructed without items.
	ErrNoItems = errors.New("carousel: at least one item is required")

	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("carousel: invalid config")
)

// OutOfRangeError reports an item index outside [0, Len).
type OutOfRangeError struct {
	// Op is the operation that rejected the index (e.g., "SelectIndex").
	Op string
	// Index is the offending index.
	Index int
	// Len is the number of items in the carousel.
	Len int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("carousel.%s: index %d out of range [0, %d)", e.Op, e.Index, e.Len)
}

func checkIndex(op string, i, n int) error {
	if i < 0 || i >= n {
		return &OutOfRangeError{Op: op, Index: i, Len: n}
	}
	return nil
}
