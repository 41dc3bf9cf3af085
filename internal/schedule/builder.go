// Package schedule builds candidate grids from the catalog and scores
// program trees against them.
package schedule

import (
	"math/rand"

	"horarium/internal/catalog"
	"horarium/internal/timetable"
)

// Build constructs a starting grid for the selected sections. Each section
// draws one of its time options uniformly at random and lands on the option's
// cell only when that cell is empty and its teacher is absent from it;
// sections losing the draw stay unassigned and are penalized later by the
// fitness function. Deterministic under a seeded source.
func Build(cat *catalog.Catalog, selected []int, rng *rand.Rand) *timetable.Grid {
	grid := timetable.NewGrid()
	for _, id := range selected {
		s, ok := cat.Section(id)
		if !ok || len(s.TimeOptions) == 0 {
			continue
		}
		pick := s.TimeOptions[rng.Intn(len(s.TimeOptions))]
		if !placeable(grid, pick.Day, pick.Block, s.Teacher) {
			continue
		}
		grid.Place(pick.Day, pick.Block, s.Ref())
	}
	return grid
}

func placeable(g *timetable.Grid, day, block int, teacher string) bool {
	if !timetable.InBounds(day, block) || g.Occupied(day, block) {
		return false
	}
	for _, ref := range g.SectionsAt(day, block) {
		if ref.Teacher == teacher {
			return false
		}
	}
	return true
}
