package flatten

import "time"

// Option applies a configuration option to the Flattener.
type Option func(*Flattener)

// WithAnonymize replaces display names with "Participant N" placeholders
// assigned by descending local score.
func WithAnonymize(anonymize bool) Option {
	return func(f *Flattener) {
		f.anonymize = anonymize
	}
}

// WithLocation sets the location completion timestamps are expressed in.
func WithLocation(loc *time.Location) Option {
	return func(f *Flattener) {
		if loc != nil {
			f.loc = loc
		}
	}
}
