// Package aggregate derives the report views from completion records.
//
// Every view is computed from a per-call index that groups records by
// participant name in first-seen order. "First-seen" is the tie-break
// wherever two participants compare equal, so views are reproducible for a
// given record sequence. No view mutates its input.
package aggregate

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/okian/starboard/internal/domain/model"
	"github.com/okian/starboard/internal/domain/types"
	"github.com/samber/lo"
)

// participant groups the records of one display name.
type participant struct {
	name    string
	score   int
	stars   int
	records []int // indices into the record sequence, input order
}

type index struct {
	records      []model.CompletionRecord
	participants []*participant // first-seen order
	byName       map[string]*participant
}

func newIndex(records []model.CompletionRecord) (*index, error) {
	idx := &index{
		records: records,
		byName:  make(map[string]*participant),
	}
	for i, r := range records {
		p, ok := idx.byName[r.Name]
		if !ok {
			p = &participant{name: r.Name, score: r.LocalScore, stars: r.StarsTotal}
			idx.byName[r.Name] = p
			idx.participants = append(idx.participants, p)
		}
		if p.score != r.LocalScore {
			return nil, &IntegrityError{Name: r.Name, Reason: "conflicting local scores " +
				strconv.Itoa(p.score) + " and " + strconv.Itoa(r.LocalScore)}
		}
		if p.stars != r.StarsTotal {
			return nil, &IntegrityError{Name: r.Name, Reason: "conflicting star totals " +
				strconv.Itoa(p.stars) + " and " + strconv.Itoa(r.StarsTotal)}
		}
		p.records = append(p.records, i)
	}
	return idx, nil
}

// byScoreDesc returns participants by local score, highest first.
func (idx *index) byScoreDesc() []*participant {
	out := slices.Clone(idx.participants)
	slices.SortStableFunc(out, func(a, b *participant) int { return cmp.Compare(b.score, a.score) })
	return out
}

func (idx *index) lookup(name string) (*participant, error) {
	p, ok := idx.byName[name]
	if !ok {
		return nil, &IntegrityError{Name: name, Reason: "no score recorded"}
	}
	return p, nil
}

// Build computes all five views from a single index.
func Build(records []model.CompletionRecord, opts ...Option) (model.Views, error) {
	idx, err := newIndex(records)
	if err != nil {
		return model.Views{}, err
	}
	tod, err := idx.timeOfDay(newSettings(opts))
	if err != nil {
		return model.Views{}, err
	}
	return model.Views{
		Progress:  idx.progress(),
		Matrix:    idx.matrix(),
		Ranking:   idx.ranking(),
		DayTotals: dayTotals(records),
		TimeOfDay: tod,
	}, nil
}

// Progress returns each participant's cumulative completions over time,
// ordered by final count descending.
func Progress(records []model.CompletionRecord) ([]model.ProgressSeries, error) {
	idx, err := newIndex(records)
	if err != nil {
		return nil, err
	}
	return idx.progress(), nil
}

func (idx *index) progress() []model.ProgressSeries {
	series := make([]model.ProgressSeries, 0, len(idx.participants))
	for _, p := range idx.participants {
		order := slices.Clone(p.records)
		slices.SortStableFunc(order, func(a, b int) int {
			ra, rb := idx.records[a], idx.records[b]
			if c := ra.Timestamp.Compare(rb.Timestamp); c != 0 {
				return c
			}
			if c := cmp.Compare(ra.Day, rb.Day); c != 0 {
				return c
			}
			return cmp.Compare(ra.Star, rb.Star)
		})
		points := make([]model.ProgressPoint, len(order))
		for n, i := range order {
			r := idx.records[i]
			points[n] = model.ProgressPoint{
				Timestamp:   r.Timestamp,
				Count:       n + 1,
				Day:         r.Day,
				Star:        r.Star,
				RecordIndex: i,
			}
		}
		series = append(series, model.ProgressSeries{Name: p.name, Points: points})
	}
	slices.SortStableFunc(series, func(a, b model.ProgressSeries) int { return cmp.Compare(b.Final(), a.Final()) })
	return series
}

// Matrix counts completions per participant and day. Rows are ordered by
// local score descending; columns are every day present, ascending.
func Matrix(records []model.CompletionRecord) (model.DayMatrix, error) {
	idx, err := newIndex(records)
	if err != nil {
		return model.DayMatrix{}, err
	}
	return idx.matrix(), nil
}

func (idx *index) matrix() model.DayMatrix {
	days := lo.Uniq(lo.Map(idx.records, func(r model.CompletionRecord, _ int) int { return r.Day }))
	slices.Sort(days)
	column := make(map[int]int, len(days))
	for j, d := range days {
		column[d] = j
	}

	rows := idx.byScoreDesc()
	m := model.DayMatrix{
		Participants: make([]string, len(rows)),
		Days:         days,
		Cells:        make([][]int, len(rows)),
	}
	for i, p := range rows {
		m.Participants[i] = p.name
		m.Cells[i] = make([]int, len(days))
		for _, ri := range p.records {
			m.Cells[i][column[idx.records[ri].Day]]++
		}
	}
	return m
}

// Ranking returns one local score per participant, lowest first, for a
// horizontal bar display.
func Ranking(records []model.CompletionRecord) ([]model.RankedScore, error) {
	idx, err := newIndex(records)
	if err != nil {
		return nil, err
	}
	return idx.ranking(), nil
}

func (idx *index) ranking() []model.RankedScore {
	ranked := lo.Map(idx.participants, func(p *participant, _ int) model.RankedScore {
		return model.RankedScore{Name: p.name, Score: p.score, Label: strconv.Itoa(p.score)}
	})
	slices.SortStableFunc(ranked, func(a, b model.RankedScore) int { return cmp.Compare(a.Score, b.Score) })
	return ranked
}

// DayTotals counts completions across all participants per day, ascending.
func DayTotals(records []model.CompletionRecord) []model.DayTotal {
	return dayTotals(records)
}

func dayTotals(records []model.CompletionRecord) []model.DayTotal {
	grouped := lo.GroupBy(records, func(r model.CompletionRecord) int { return r.Day })
	totals := make([]model.DayTotal, 0, len(grouped))
	for day, rs := range grouped {
		totals = append(totals, model.DayTotal{Day: day, Count: len(rs)})
	}
	slices.SortFunc(totals, func(a, b model.DayTotal) int { return cmp.Compare(a.Day, b.Day) })
	return totals
}

// TimeOfDay places release-day completions at or after the minimum hour on
// an hour axis. The participant axis matches the Matrix row order and keeps
// participants that have no surviving samples.
func TimeOfDay(records []model.CompletionRecord, opts ...Option) (model.TimeOfDay, error) {
	idx, err := newIndex(records)
	if err != nil {
		return model.TimeOfDay{}, err
	}
	return idx.timeOfDay(newSettings(opts))
}

func (idx *index) timeOfDay(s settings) (model.TimeOfDay, error) {
	rows := idx.byScoreDesc()
	tod := model.TimeOfDay{
		Participants: lo.Map(rows, func(p *participant, _ int) string { return p.name }),
		Samples:      []model.HourSample{},
		HourAxis:     model.Axis{Min: float64(s.minHour) - axisPadding, Max: hoursPerDay},
	}
	for _, name := range tod.Participants {
		p, err := idx.lookup(name)
		if err != nil {
			return model.TimeOfDay{}, err
		}
		for _, i := range p.records {
			r := idx.records[i]
			if !s.dayMatch(r) || r.Timestamp.Hour() < s.minHour {
				continue
			}
			tod.Samples = append(tod.Samples, model.HourSample{
				Name:        r.Name,
				Hour:        r.Timestamp.Hour(),
				Day:         r.Day,
				Star:        r.Star,
				Timestamp:   r.Timestamp,
				RecordIndex: i,
			})
		}
	}
	return tod, nil
}

// Standings returns every participant by local score descending with 1-based
// positions; equal scores keep first-seen order.
func Standings(records []model.CompletionRecord) ([]types.Entry, error) {
	idx, err := newIndex(records)
	if err != nil {
		return nil, err
	}
	return idx.standings(), nil
}

func (idx *index) standings() []types.Entry {
	return lo.Map(idx.byScoreDesc(), func(p *participant, i int) types.Entry {
		return types.Entry{Rank: i + 1, Name: p.name, Score: p.score, Stars: p.stars}
	})
}

// Summarize returns the numbers behind the textual run summary. topN <= 0
// keeps every participant.
func Summarize(records []model.CompletionRecord, topN int) (model.Summary, error) {
	idx, err := newIndex(records)
	if err != nil {
		return model.Summary{}, err
	}
	top := idx.standings()
	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}
	return model.Summary{
		Participants: len(idx.participants),
		Completions:  len(records),
		Top:          top,
	}, nil
}
