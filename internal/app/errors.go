package service

import "errors"

// ErrNotStarted is returned by read accessors before the first run has been
// published.
var ErrNotStarted = errors.New("service not started")
