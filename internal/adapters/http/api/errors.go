package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrLimitExceeded = errors.New("limit exceeded")
	ErrUnknownPanel  = errors.New("unknown panel")
)

// opError ties an error to the handler operation that produced it.
type opError struct {
	Op  string
	Err error
}

func (e *opError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *opError) Unwrap() error { return e.Err }

// NewKind reports a sentinel kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{Op: op, Err: kind}
}

// Wrap attaches op to an upstream error. Wrap returns nil for a nil error.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{Op: op, Err: err}
}
