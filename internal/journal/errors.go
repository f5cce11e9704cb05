package journal

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist or belongs to
// another user (existence is not revealed across the ownership boundary).
var ErrNotFound = errors.New("record not found")

// ValidationError rejects an operation before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
