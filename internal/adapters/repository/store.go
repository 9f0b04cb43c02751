// Package repository defines the standings store interface and errors.
package repository

import (
	"context"

	"github.com/okian/starboard/internal/domain/types"
)

// Entry represents a leaderboard row.
type Entry = types.Entry

// Store holds the standings of the current run. Writers replace them
// wholesale with Publish; everything else is a read.
type Store interface {
	// Publish replaces the standings. Entries must be in rank order.
	Publish(entries []Entry)

	// Rank returns the position and score for a participant name.
	// Returns ErrNotFound if the name is unknown.
	Rank(ctx context.Context, name string) (Entry, error)

	// TopN returns the top-N entries ordered by score desc.
	// Returns ErrInvalidLimit for n < 1.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of participants tracked.
	Count(ctx context.Context) int
}
