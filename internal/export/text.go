package export

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"horarium/internal/timetable"
)

const (
	timeColWidth = 8
	dayColWidth  = 18
	tableWidth   = timeColWidth + timetable.Days*dayColWidth
)

// ScheduleText renders the grid as an aligned weekly table with a block
// count and per-day load footer.
func ScheduleText(g *timetable.Grid, title string) (string, error) {
	if g == nil {
		return "", errors.New("export: nil grid")
	}
	var b strings.Builder

	fmt.Fprintln(&b, strings.ToUpper(titleOrDefault(title)))
	fmt.Fprintln(&b, strings.Repeat("=", tableWidth))

	fmt.Fprintf(&b, "%*s", timeColWidth, "Time")
	for _, day := range timetable.DayNames {
		fmt.Fprintf(&b, "%*s", dayColWidth, day)
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, strings.Repeat("-", tableWidth))

	for block := 0; block < timetable.BlocksPerDay; block++ {
		fmt.Fprintf(&b, "%*s", timeColWidth, fmt.Sprintf("%d:00", 7+block))
		for day := 0; day < timetable.Days; day++ {
			fmt.Fprintf(&b, "%*s", dayColWidth, textCell(g, day, block))
		}
		fmt.Fprintln(&b)
	}
	fmt.Fprintln(&b, strings.Repeat("-", tableWidth))

	fmt.Fprintf(&b, "Occupied blocks: %d\n", g.OccupiedBlocks())
	loads := make([]string, 0, timetable.Days)
	for day := 0; day < timetable.Days; day++ {
		loads = append(loads, fmt.Sprintf("%s %d", timetable.DayNames[day], g.DayLoad(day)))
	}
	fmt.Fprintf(&b, "Day loads: %s\n", strings.Join(loads, ", "))

	return b.String(), nil
}

// textCell keeps cells narrow enough for the aligned columns. Stacked cells
// show the bottom section plus a count.
func textCell(g *timetable.Grid, day, block int) string {
	refs := g.SectionsAt(day, block)
	switch len(refs) {
	case 0:
		return "---"
	case 1:
		return trunc(refs[0].Course, dayColWidth-2)
	default:
		return fmt.Sprintf("%s +%d", trunc(refs[0].Course, dayColWidth-6), len(refs)-1)
	}
}

// WriteScheduleText writes the aligned table to path.
func WriteScheduleText(path string, g *timetable.Grid, title string) error {
	text, err := ScheduleText(g, title)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
