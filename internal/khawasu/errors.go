package khawasu

import (
	"errors"
	"fmt"
)

// Sentinel errors for driver operations. Check with errors.Is().
var (
	ErrUnsupportedType = errors.New("khawasu: action type has no value encoding")
	ErrTimeout         = errors.New("khawasu: driver call timed out")
)

// StatusError is returned when the logical driver answers a call with an
// error status instead of data.
type StatusError struct {
	Method string
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("khawasu: %s returned status %q", e.Method, e.Status)
}
