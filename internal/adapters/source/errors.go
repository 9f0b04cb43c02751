package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrRead   = errors.New("read leaderboard document failed")
	ErrDecode = errors.New("decode leaderboard document failed")
	ErrTooBig = errors.New("leaderboard document too large")
)
