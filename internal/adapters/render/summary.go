package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/okian/starboard/internal/domain/model"
)

// WriteSummary prints the run statistics and the top participants by local
// score. Styling is dropped automatically when w is not a terminal.
func WriteSummary(w io.Writer, s model.Summary) error {
	r := lipgloss.NewRenderer(w)
	heading := r.NewStyle().Bold(true)
	label := r.NewStyle().Faint(true)
	score := r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD700"})

	width := 0
	for _, e := range s.Top {
		width = max(width, lipgloss.Width(e.Name))
	}

	var b strings.Builder
	b.WriteString("\n" + heading.Render("Leaderboard Statistics:") + "\n")
	b.WriteString(label.Render("Active Participants:") + " " + strconv.Itoa(s.Participants) + "\n")
	b.WriteString(label.Render("Total Stars Collected:") + " " + strconv.Itoa(s.Completions) + "\n")
	if len(s.Top) > 0 {
		b.WriteString("\n" + heading.Render(fmt.Sprintf("Top %d by Local Score:", len(s.Top))) + "\n")
		for _, e := range s.Top {
			b.WriteString(padRight(e.Name+":", width+1) + " " + score.Render(strconv.Itoa(e.Score)) + "\n")
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// padRight pads s to a visual width, counting wide runes correctly.
func padRight(s string, width int) string {
	if vw := lipgloss.Width(s); vw < width {
		return s + strings.Repeat(" ", width-vw)
	}
	return s
}
