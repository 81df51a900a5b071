package search

import (
	"errors"
	"fmt"
)

// CapacityError reports that a fixed limit was exceeded. It is a caller
// contract failure: the run cannot continue.
type CapacityError struct {
	What  string
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("too many %s (limit %d)", e.What, e.Limit)
}

// IsCapacityError returns true if err wraps a CapacityError.
func IsCapacityError(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}
