package aggregate

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	// ErrIntegrity reports records that contradict each other, e.g. two
	// local scores for one participant.
	ErrIntegrity = errors.New("inconsistent completion records")
	// ErrUnknownDayMatch reports an unrecognized day-match rule name.
	ErrUnknownDayMatch = errors.New("unknown day match rule")
)

// IntegrityError identifies the participant whose records are inconsistent.
type IntegrityError struct {
	Name   string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%v: participant %q: %s", ErrIntegrity, e.Name, e.Reason)
}

// Unwrap allows errors.Is(err, ErrIntegrity).
func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
