// Package export renders final schedule grids as CSV matrices, aligned text
// tables, and PDF documents, plus convergence histories as CSV.
package export

import (
	"fmt"
	"strings"

	"horarium/internal/model"
	"horarium/internal/timetable"
)

// DefaultTitle heads schedule exports when the caller gives none.
const DefaultTitle = "Optimized Weekly Schedule"

func titleOrDefault(title string) string {
	if strings.TrimSpace(title) == "" {
		return DefaultTitle
	}
	return title
}

// cellText renders one placed section for human-facing exports.
func cellText(ref model.SectionRef) string {
	text := fmt.Sprintf("%s - %s", ref.Course, ref.Teacher)
	if ref.Room != "" {
		text += " @ " + ref.Room
	}
	return text
}

// stackText joins every section sharing a cell. Final schedules hold at most
// one section per cell; master grids may stack.
func stackText(g *timetable.Grid, day, block int) string {
	refs := g.SectionsAt(day, block)
	if len(refs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, cellText(ref))
	}
	return strings.Join(parts, "; ")
}

// trunc shortens s to at most max runes, marking the cut with an ellipsis.
func trunc(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
