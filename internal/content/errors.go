package content

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("record not found")

// ValidationError names the first required field that is missing or empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func notFound(kind string, id int) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}
