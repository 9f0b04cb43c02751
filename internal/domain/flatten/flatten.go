// Package flatten turns a nested leaderboard document into a flat, ordered
// sequence of completion records.
//
// Ordering: members by id ascending (numeric when both ids are integers),
// then day ascending, then star ascending. The same member order breaks ties
// between equal local scores when anonymizing, so the output is a pure
// function of the document and the options.
package flatten

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/okian/starboard/internal/domain/model"
	"github.com/samber/lo"
)

// Placeholder formats. They never overlap: a missing name embeds the raw
// member id, an anonymized name embeds a 1-based position.
const (
	missingNameFormat   = "Anonymous (%s)"
	anonymousNameFormat = "Participant %d"
	duplicateNameFormat = "%s (%s)"
)

// Valid star numbers within a day.
const (
	firstStar  = 1
	secondStar = 2
)

// Flattener normalizes leaderboard documents. It holds no per-document
// state and may be reused.
type Flattener struct {
	anonymize bool
	loc       *time.Location
	validate  *validator.Validate
}

// New creates a Flattener with the given options.
func New(opts ...Option) *Flattener {
	f := &Flattener{
		loc:      time.Local,
		validate: newValidator(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Flatten is a shorthand for New(opts...).Flatten(doc).
func Flatten(doc *model.Document, opts ...Option) ([]model.CompletionRecord, error) {
	return New(opts...).Flatten(doc)
}

// member is an active participant with its resolved display name.
type member struct {
	id   string
	src  *model.Member
	name string
}

// Flatten emits one record per (member, day, star) completion of every
// member with at least one star.
func (f *Flattener) Flatten(doc *model.Document) ([]model.CompletionRecord, error) {
	if doc == nil {
		return nil, validationError("", "members", errors.New("document is empty"))
	}
	if err := f.validate.Struct(doc); err != nil {
		return nil, validationError("", "members", err)
	}

	ids := lo.Keys(doc.Members)
	slices.SortFunc(ids, compareIDs)

	active := make([]member, 0, len(ids))
	for _, id := range ids {
		m := doc.Members[id]
		if m == nil {
			return nil, validationError(id, "", errors.New("member entry is null"))
		}
		if err := f.validate.Struct(m); err != nil {
			return nil, validationError(id, failedField(err), err)
		}
		if *m.Stars == 0 {
			continue
		}
		active = append(active, member{id: id, src: m, name: resolveName(id, m)})
	}

	if f.anonymize {
		anonymize(active)
	} else {
		disambiguate(active)
	}

	records := make([]model.CompletionRecord, 0, len(active)*2)
	for _, m := range active {
		out, err := f.memberRecords(m)
		if err != nil {
			return nil, err
		}
		records = append(records, out...)
	}
	return records, nil
}

func (f *Flattener) memberRecords(m member) ([]model.CompletionRecord, error) {
	days, err := sortedKeys(m.src.CompletionDayLevel, func(day int) bool { return day > 0 })
	if err != nil {
		return nil, parseError(m.id, err.key, "", "completion_day_level", err.cause)
	}

	var out []model.CompletionRecord
	for _, day := range days {
		levels := m.src.CompletionDayLevel[day.key]
		stars, err := sortedKeys(levels, func(star int) bool { return star == firstStar || star == secondStar })
		if err != nil {
			return nil, parseError(m.id, day.key, err.key, "completion_day_level", err.cause)
		}
		for _, star := range stars {
			entry := levels[star.key]
			if entry == nil {
				return nil, parseError(m.id, day.key, star.key, "get_star_ts", model.ErrMissingValue)
			}
			ts, perr := entry.GetStarTS.Epoch()
			if perr != nil {
				return nil, parseError(m.id, day.key, star.key, "get_star_ts", perr)
			}
			out = append(out, model.CompletionRecord{
				MemberID:   m.id,
				Name:       m.name,
				Day:        day.value,
				Star:       star.value,
				Timestamp:  ts.In(f.loc),
				StarsTotal: *m.src.Stars,
				LocalScore: *m.src.LocalScore,
			})
		}
	}
	return out, nil
}

// resolveName returns the member's name or an id-derived placeholder.
func resolveName(id string, m *model.Member) string {
	if m.Name != nil {
		if name := strings.TrimSpace(*m.Name); name != "" {
			return name
		}
	}
	return fmt.Sprintf(missingNameFormat, id)
}

// anonymize assigns "Participant N" by descending local score. The input is
// in id order, so a stable sort leaves equal scores in id order.
func anonymize(active []member) {
	ranked := slices.Clone(active)
	slices.SortStableFunc(ranked, func(a, b member) int {
		return cmp.Compare(*b.src.LocalScore, *a.src.LocalScore)
	})

	byID := make(map[string]string, len(ranked))
	for i, m := range ranked {
		byID[m.id] = fmt.Sprintf(anonymousNameFormat, i+1)
	}
	for i := range active {
		active[i].name = byID[active[i].id]
	}
}

// disambiguate suffixes the member id onto repeated display names so two
// people never collapse into one participant downstream.
func disambiguate(active []member) {
	seen := make(map[string]struct{}, len(active))
	for i := range active {
		name := active[i].name
		for {
			if _, dup := seen[name]; !dup {
				break
			}
			name = fmt.Sprintf(duplicateNameFormat, name, active[i].id)
		}
		seen[name] = struct{}{}
		active[i].name = name
	}
}

// compareIDs orders numeric ids numerically and before non-numeric ones.
func compareIDs(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil && ai != bi:
		return cmp.Compare(ai, bi)
	case aerr == nil && berr != nil:
		return -1
	case aerr != nil && berr == nil:
		return 1
	}
	return strings.Compare(a, b)
}

type intKey struct {
	key   string
	value int
}

type keyError struct {
	key   string
	cause error
}

// sortedKeys parses integer map keys and returns them ascending.
func sortedKeys[V any](m map[string]V, valid func(int) bool) ([]intKey, *keyError) {
	keys := make([]intKey, 0, len(m))
	for k := range m {
		v, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, &keyError{key: k, cause: err}
		}
		if !valid(v) {
			return nil, &keyError{key: k, cause: fmt.Errorf("%d out of range", v)}
		}
		keys = append(keys, intKey{key: k, value: v})
	}
	slices.SortFunc(keys, func(a, b intKey) int { return cmp.Compare(a.value, b.value) })
	return keys, nil
}

// newValidator reports field names by their JSON key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// failedField returns the JSON name of the first failing field.
func failedField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field()
	}
	return ""
}
