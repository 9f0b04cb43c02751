package aggregate

import (
	"fmt"
	"strings"

	"github.com/okian/starboard/internal/domain/model"
)

// Release-day defaults for the time-of-day view. Completions between
// midnight and DefaultMinHour are treated as late finishes of the previous
// puzzle rather than fresh starts.
const (
	DefaultMinHour = 5
	hoursPerDay    = 24
	axisPadding    = 0.5
)

// DayMatch decides whether a completion happened on its puzzle's release day.
type DayMatch func(r model.CompletionRecord) bool

// SameCalendarDay keeps completions whose day-of-month equals the puzzle day.
func SameCalendarDay(r model.CompletionRecord) bool {
	return r.Timestamp.Day() == r.Day
}

// AnyDay keeps every completion.
func AnyDay(model.CompletionRecord) bool { return true }

// Day-match rule names accepted by ParseDayMatch.
const (
	DayMatchCalendar = "calendar"
	DayMatchAny      = "any"
)

// ParseDayMatch maps a configured rule name to its DayMatch.
func ParseDayMatch(name string) (DayMatch, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DayMatchCalendar:
		return SameCalendarDay, nil
	case DayMatchAny:
		return AnyDay, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDayMatch, name)
	}
}

type settings struct {
	minHour  int
	dayMatch DayMatch
}

func newSettings(opts []Option) settings {
	s := settings{
		minHour:  DefaultMinHour,
		dayMatch: SameCalendarDay,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option applies a configuration option to the time-of-day view.
type Option func(*settings)

// WithMinHour sets the earliest local hour (inclusive) kept in the
// time-of-day view. Values outside [0, 23] are ignored.
func WithMinHour(hour int) Option {
	return func(s *settings) {
		if hour >= 0 && hour < hoursPerDay {
			s.minHour = hour
		}
	}
}

// WithDayMatch sets the release-day rule for the time-of-day view.
func WithDayMatch(match DayMatch) Option {
	return func(s *settings) {
		if match != nil {
			s.dayMatch = match
		}
	}
}
