package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMissingValue is returned when a Scalar is absent or null.
var ErrMissingValue = errors.New("missing")

// Scalar is a raw JSON number or numeric string. Exports from different
// years disagree on which one they send for ids and timestamps, so decoding
// never fails on it; callers that need the value parse it explicitly.
type Scalar []byte

// UnmarshalJSON keeps a copy of the raw value.
func (s *Scalar) UnmarshalJSON(b []byte) error {
	*s = append((*s)[:0], b...)
	return nil
}

// MarshalJSON writes the raw value back, or null when unset.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return s, nil
}

// String returns the value with any surrounding quotes removed.
func (s Scalar) String() string {
	v := strings.TrimSpace(string(s))
	if unq, err := strconv.Unquote(v); err == nil {
		v = strings.TrimSpace(unq)
	}
	if v == "null" {
		return ""
	}
	return v
}

// Int64 parses the value as an integer.
func (s Scalar) Int64() (int64, error) {
	v := s.String()
	if v == "" {
		return 0, ErrMissingValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", v)
	}
	return n, nil
}

// Epoch parses the value as epoch seconds, fractional seconds allowed.
func (s Scalar) Epoch() (time.Time, error) {
	v := s.String()
	if v == "" {
		return time.Time{}, ErrMissingValue
	}
	if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(sec, 0), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("not an epoch timestamp: %q", v)
	}
	sec := int64(f)
	return time.Unix(sec, int64((f-float64(sec))*float64(time.Second))), nil
}
