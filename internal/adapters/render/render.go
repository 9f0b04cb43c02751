// Package render turns aggregated views into a render description: a plain
// data structure naming panels, axes and points that any chart front end can
// draw. It knows nothing about pixels and keeps no global figure state.
package render

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/starboard/internal/domain/model"
)

// Panel kinds.
const (
	KindLine    = "line"
	KindHeatmap = "heatmap"
	KindBarH    = "barh"
	KindBar     = "bar"
	KindViolin  = "violin"
)

// Panel identifiers, one per view.
const (
	PanelProgress  = "progress"
	PanelMatrix    = "matrix"
	PanelRanking   = "ranking"
	PanelDayTotals = "day_totals"
	PanelTimeOfDay = "time_of_day"
)

const hoverTimeLayout = "2006-01-02 15:04"

// noRecord marks points that aggregate several records.
const noRecord = -1

// Meta describes the run a report belongs to.
type Meta struct {
	RunID       string    `json:"run_id"`
	Event       string    `json:"event,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Anonymized  bool      `json:"anonymized"`
	Location    string    `json:"location"`
}

// Report is the full render description of one run.
type Report struct {
	Title   string                   `json:"title"`
	Meta    Meta                     `json:"meta"`
	Layout  Layout                   `json:"layout"`
	Panels  []Panel                  `json:"panels"`
	Summary model.Summary            `json:"summary"`
	Records []model.CompletionRecord `json:"records"`
}

// Layout is a grid; panels address it by Row, Col and ColSpan.
type Layout struct {
	Rows         int       `json:"rows"`
	Cols         int       `json:"cols"`
	HeightRatios []float64 `json:"height_ratios"`
}

// Panel is one chart.
type Panel struct {
	ID            string      `json:"id"`
	Kind          string      `json:"kind"`
	Title         string      `json:"title"`
	XLabel        string      `json:"x_label,omitempty"`
	YLabel        string      `json:"y_label,omitempty"`
	Row           int         `json:"row"`
	Col           int         `json:"col"`
	ColSpan       int         `json:"col_span"`
	Legend        bool        `json:"legend"`
	XRange        *model.Axis `json:"x_range,omitempty"`
	Categories    []string    `json:"categories,omitempty"` // category axis order
	Series        []Series    `json:"series,omitempty"`
	Heatmap       *Heatmap    `json:"heatmap,omitempty"`
	ColorBarLabel string      `json:"color_bar_label,omitempty"`
}

// Series is a named run of points.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Point is one mark. X and Y hold a time, a number or a category name
// depending on the panel. RecordIndex keys back into Report.Records.
type Point struct {
	X           any    `json:"x"`
	Y           any    `json:"y"`
	Label       string `json:"label,omitempty"`
	Hover       string `json:"hover,omitempty"`
	RecordIndex int    `json:"record_index"`
}

// Heatmap is a dense row × column grid of counts.
type Heatmap struct {
	Rows    []string `json:"rows"`
	Columns []int    `json:"columns"`
	Values  [][]int  `json:"values"`
}

// Describe builds the render description. It is a pure function of its
// arguments.
func Describe(views model.Views, summary model.Summary, records []model.CompletionRecord, meta Meta) Report {
	return Report{
		Title: title(meta, records),
		Meta:  meta,
		Layout: Layout{
			Rows:         2,
			Cols:         4,
			HeightRatios: []float64{1.5, 1},
		},
		Panels: []Panel{
			progressPanel(views.Progress),
			matrixPanel(views.Matrix),
			rankingPanel(views.Ranking),
			dayTotalsPanel(views.DayTotals),
			timeOfDayPanel(views.TimeOfDay, meta.Location),
		},
		Summary: summary,
		Records: records,
	}
}

// Write encodes the report as indented JSON.
func Write(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func title(meta Meta, records []model.CompletionRecord) string {
	year := meta.Event
	if year == "" && len(records) > 0 {
		year = strconv.Itoa(records[0].Timestamp.Year())
	}
	if year == "" {
		return "Advent of Code Progress"
	}
	return fmt.Sprintf("Advent of Code %s Progress", year)
}

func progressPanel(progress []model.ProgressSeries) Panel {
	series := make([]Series, 0, len(progress))
	for _, s := range progress {
		points := make([]Point, len(s.Points))
		for i, p := range s.Points {
			points[i] = Point{
				X:           p.Timestamp,
				Y:           p.Count,
				Hover:       fmt.Sprintf("%s\n%s\nStars: %d", s.Name, p.Timestamp.Format(hoverTimeLayout), p.Count),
				RecordIndex: p.RecordIndex,
			}
		}
		series = append(series, Series{Name: s.Name, Points: points})
	}
	return Panel{
		ID:      PanelProgress,
		Kind:    KindLine,
		Title:   "Star Collection Progress Over Time",
		XLabel:  "Date",
		YLabel:  "Number of Stars",
		Row:     0,
		Col:     0,
		ColSpan: 4,
		Legend:  true,
		Series:  series,
	}
}

func matrixPanel(m model.DayMatrix) Panel {
	return Panel{
		ID:            PanelMatrix,
		Kind:          KindHeatmap,
		Title:         "Stars Completed by Day",
		XLabel:        "Day",
		YLabel:        "Participant",
		Row:           1,
		Col:           0,
		ColSpan:       1,
		Categories:    m.Participants,
		Heatmap:       &Heatmap{Rows: m.Participants, Columns: m.Days, Values: m.Cells},
		ColorBarLabel: "Stars per Day",
	}
}

func rankingPanel(ranking []model.RankedScore) Panel {
	points := make([]Point, len(ranking))
	categories := make([]string, len(ranking))
	for i, r := range ranking {
		categories[i] = r.Name
		points[i] = Point{X: r.Score, Y: r.Name, Label: r.Label, RecordIndex: noRecord}
	}
	return Panel{
		ID:         PanelRanking,
		Kind:       KindBarH,
		Title:      "Local Scores",
		XLabel:     "Score",
		Row:        1,
		Col:        1,
		ColSpan:    1,
		Categories: categories,
		Series:     []Series{{Name: "Local Score", Points: points}},
	}
}

func dayTotalsPanel(totals []model.DayTotal) Panel {
	points := make([]Point, len(totals))
	for i, d := range totals {
		points[i] = Point{X: d.Day, Y: d.Count, Label: strconv.Itoa(d.Count), RecordIndex: noRecord}
	}
	return Panel{
		ID:      PanelDayTotals,
		Kind:    KindBar,
		Title:   "Total Stars Collected per Day",
		XLabel:  "Day",
		YLabel:  "Number of Stars",
		Row:     1,
		Col:     2,
		ColSpan: 1,
		Series:  []Series{{Name: "Stars", Points: points}},
	}
}

func timeOfDayPanel(tod model.TimeOfDay, location string) Panel {
	byName := make(map[string][]Point, len(tod.Participants))
	for _, s := range tod.Samples {
		byName[s.Name] = append(byName[s.Name], Point{
			X:           s.Hour,
			Y:           s.Name,
			Hover:       fmt.Sprintf("%s\n%s\nDay %d, star %d", s.Name, s.Timestamp.Format(hoverTimeLayout), s.Day, s.Star),
			RecordIndex: s.RecordIndex,
		})
	}
	series := make([]Series, 0, len(tod.Participants))
	for _, name := range tod.Participants {
		points := byName[name]
		if points == nil {
			points = []Point{}
		}
		series = append(series, Series{Name: name, Points: points})
	}
	axis := tod.HourAxis
	xLabel := "Hour"
	if location != "" {
		xLabel = fmt.Sprintf("Hour (%s)", location)
	}
	return Panel{
		ID:         PanelTimeOfDay,
		Kind:       KindViolin,
		Title:      "Time of Day (Release Day Only)",
		XLabel:     xLabel,
		YLabel:     "Participant",
		Row:        1,
		Col:        3,
		ColSpan:    1,
		XRange:     &axis,
		Categories: tod.Participants,
		Series:     series,
	}
}
