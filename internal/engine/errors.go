package engine

import (
	"errors"
	"fmt"
)

// ErrSeriesNotFound is returned by series management operations that name a
// series id no record carries. (Check-ins and snoozes against stale ids are
// deliberately not errors; the UI may be acting on old data.)
var ErrSeriesNotFound = errors.New("series not found")

// ValidationError reports rejected user input on a management operation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
