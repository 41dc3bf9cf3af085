package schedule

import (
	"fmt"

	"horarium/internal/model"
	"horarium/internal/timetable"
)

// Cells flattens a grid into persistable cell records in day-major order.
func Cells(g *timetable.Grid) []model.CellRecord {
	var out []model.CellRecord
	g.ForEach(func(day, block int, ref model.SectionRef) {
		out = append(out, model.CellRecord{
			Day:     day,
			Block:   block,
			ID:      ref.ID,
			Course:  ref.Course,
			Teacher: ref.Teacher,
			Room:    ref.Room,
			Kind:    ref.Kind,
		})
	})
	return out
}

// FromCells rebuilds a grid from persisted cell records. Records sharing a
// cell stack in input order, so Cells followed by FromCells is lossless.
func FromCells(cells []model.CellRecord) (*timetable.Grid, error) {
	g := timetable.NewGrid()
	for _, c := range cells {
		if !timetable.InBounds(c.Day, c.Block) {
			return nil, fmt.Errorf("schedule: cell (%d,%d) out of range", c.Day, c.Block)
		}
		g.Stack(c.Day, c.Block, model.SectionRef{
			ID:      c.ID,
			Course:  c.Course,
			Teacher: c.Teacher,
			Room:    c.Room,
			Kind:    c.Kind,
		})
	}
	return g, nil
}
