package model

import (
	"time"

	"github.com/okian/starboard/internal/domain/types"
)

// ProgressPoint is one step of a participant's cumulative star count.
type ProgressPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Count       int       `json:"count"`
	Day         int       `json:"day"`
	Star        int       `json:"star"`
	RecordIndex int       `json:"record_index"` // position in the record sequence
}

// ProgressSeries is the cumulative completion curve of one participant.
type ProgressSeries struct {
	Name   string          `json:"name"`
	Points []ProgressPoint `json:"points"`
}

// Final returns the last cumulative count, or 0 for an empty series.
func (s ProgressSeries) Final() int {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Count
}

// DayMatrix counts completions per participant (rows) and day (columns).
// Cells[i][j] belongs to Participants[i] and Days[j]; absent pairs are 0.
type DayMatrix struct {
	Participants []string `json:"participants"`
	Days         []int    `json:"days"`
	Cells        [][]int  `json:"cells"`
}

// Cell returns the count for a participant and day, 0 when either is unknown.
func (m DayMatrix) Cell(name string, day int) int {
	for i, p := range m.Participants {
		if p != name {
			continue
		}
		for j, d := range m.Days {
			if d == day {
				return m.Cells[i][j]
			}
		}
	}
	return 0
}

// RankedScore is one bar of the score ranking.
type RankedScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Label string `json:"label"`
}

// DayTotal is the number of completions across all participants for a day.
type DayTotal struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

// HourSample is a release-day completion placed on the hour axis.
type HourSample struct {
	Name        string    `json:"name"`
	Hour        int       `json:"hour"`
	Day         int       `json:"day"`
	Star        int       `json:"star"`
	Timestamp   time.Time `json:"timestamp"`
	RecordIndex int       `json:"record_index"`
}

// Axis is a closed numeric display interval.
type Axis struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TimeOfDay is the hour-of-day distribution of release-day completions.
type TimeOfDay struct {
	Participants []string     `json:"participants"`
	Samples      []HourSample `json:"samples"`
	HourAxis     Axis         `json:"hour_axis"`
}

// Views bundles the five aggregates handed to the presentation layer.
type Views struct {
	Progress  []ProgressSeries `json:"progress"`
	Matrix    DayMatrix        `json:"matrix"`
	Ranking   []RankedScore    `json:"ranking"`
	DayTotals []DayTotal       `json:"day_totals"`
	TimeOfDay TimeOfDay        `json:"time_of_day"`
}

// Summary carries the raw numbers for the textual run summary.
type Summary struct {
	Participants int           `json:"participants"`
	Completions  int           `json:"completions"`
	Top          []types.Entry `json:"top"`
}
