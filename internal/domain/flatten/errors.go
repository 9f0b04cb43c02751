package flatten

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrValidation reports a document whose shape is wrong: no members
	// mapping, or a member missing one of its required fields.
	ErrValidation = errors.New("invalid leaderboard document")
	// ErrParse reports a nested value that cannot be interpreted: a day or
	// star key that is not an integer, or a missing/unparseable timestamp.
	ErrParse = errors.New("malformed leaderboard field")
)

// Error locates a failure inside the document. Kind is ErrValidation or
// ErrParse; Err is the underlying cause when there is one.
type Error struct {
	Kind   error
	Member string
	Day    string
	Star   string
	Field  string
	Err    error
}

func (e *Error) Error() string {
	var loc []string
	if e.Member != "" {
		loc = append(loc, "member "+e.Member)
	}
	if e.Day != "" {
		loc = append(loc, "day "+e.Day)
	}
	if e.Star != "" {
		loc = append(loc, "star "+e.Star)
	}
	if e.Field != "" {
		loc = append(loc, "field "+e.Field)
	}
	msg := e.Kind.Error()
	if len(loc) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(loc, ", "))
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func validationError(member, field string, cause error) *Error {
	return &Error{Kind: ErrValidation, Member: member, Field: field, Err: cause}
}

func parseError(member, day, star, field string, cause error) *Error {
	return &Error{Kind: ErrParse, Member: member, Day: day, Star: star, Field: field, Err: cause}
}
