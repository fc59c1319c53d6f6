// Package render turns aggregated star data into Slack-ready text. All
// functions are pure; callers own caching and visibility decisions.
package render

import (
	"fmt"
	"strings"

	"starbot/internal/services"
)

const (
	EmptyTableMessage       = "No stars recorded yet this week."
	EmptyLeaderboardMessage = "No stars this week yet!"

	starGlyph    = "⭐"
	nameColWidth = 10
	nameMaxRunes = 20
)

var dayHeaders = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeeklyTable renders the fixed-width attendance table. A cell is blank for
// zero stars, a single glyph for one, and glyph×N beyond that.
func WeeklyTable(matrix *services.WeekMatrix) string {
	if matrix == nil || len(matrix.Rows) == 0 {
		return EmptyTableMessage
	}

	var b strings.Builder
	b.WriteString("*Weekly Workout Table*\n```\n")
	b.WriteString("| Name       | ")
	b.WriteString(strings.Join(dayHeaders[:], " | "))
	b.WriteString(" |\n")
	b.WriteString("|------------" + strings.Repeat("|-----", 7) + "|\n")

	for _, row := range matrix.Rows {
		cells := make([]string, len(row.Counts))
		for i, count := range row.Counts {
			cells[i] = cell(count)
		}
		fmt.Fprintf(&b, "| %s | %s |\n", padName(row.Label), strings.Join(cells, " | "))
	}
	b.WriteString("```")
	return b.String()
}

// Leaderboard renders the numbered descending ranking under the ISO week
// label header.
func Leaderboard(entries []services.LeaderboardEntry, weekLabel string) string {
	if len(entries) == 0 {
		return EmptyLeaderboardMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, ":trophy: *Weekly Star Leaderboard (%s)*", weekLabel)
	for i, entry := range entries {
		fmt.Fprintf(&b, "\n%d. %s – %d :star:", i+1, entry.Label, entry.Total)
	}
	return b.String()
}

func cell(count int) string {
	switch {
	case count <= 0:
		return " "
	case count == 1:
		return starGlyph
	default:
		return fmt.Sprintf("%s×%d", starGlyph, count)
	}
}

func padName(name string) string {
	runes := []rune(name)
	if len(runes) > nameMaxRunes {
		runes = runes[:nameMaxRunes]
	}
	padded := string(runes)
	if pad := nameColWidth - len(runes); pad > 0 {
		padded += strings.Repeat(" ", pad)
	}
	return padded
}
