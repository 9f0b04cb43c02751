// Package model contains domain models passed between layers.
package model

import "time"

// Document is a private leaderboard export as served by the puzzle site.
// Only Members is required; the rest is carried for report metadata.
type Document struct {
	Event   string             `json:"event"`    // competition year, e.g. "2024"
	OwnerID Scalar             `json:"owner_id"` // leaderboard owner
	Day1TS  Scalar             `json:"day1_ts"`  // release of day 1, epoch seconds (newer exports only)
	Members map[string]*Member `json:"members" validate:"required"`
}

// Member is one participant entry keyed by its id in Document.Members.
type Member struct {
	ID          Scalar  `json:"id"`
	Name        *string `json:"name"`
	Stars       *int    `json:"stars" validate:"required,min=0"`
	LocalScore  *int    `json:"local_score" validate:"required"`
	GlobalScore int     `json:"global_score"`
	LastStarTS  Scalar  `json:"last_star_ts"`

	// CompletionDayLevel maps day -> star -> completion.
	CompletionDayLevel map[string]map[string]*StarEntry `json:"completion_day_level" validate:"required"`
}

// StarEntry holds a single star completion. The timestamp is kept raw so a
// malformed value surfaces as a parse failure rather than a decode failure.
type StarEntry struct {
	GetStarTS Scalar `json:"get_star_ts"`
	StarIndex Scalar `json:"star_index"`
}

// CompletionRecord is one (participant, day, star) completion event.
// Records are values; nothing downstream mutates them.
type CompletionRecord struct {
	MemberID   string    `json:"member_id"`
	Name       string    `json:"name"`
	Day        int       `json:"day"`
	Star       int       `json:"star"`
	Timestamp  time.Time `json:"timestamp"`
	StarsTotal int       `json:"stars_total"`
	LocalScore int       `json:"local_score"`
}
