// Package timetable holds the weekly grid representation and the conflict
// validator that scores it.
package timetable

import "horarium/internal/model"

// Grid dimensions: Monday through Friday, fourteen one-hour blocks per day
// covering 07:00 to 21:00.
const (
	Days         = 5
	BlocksPerDay = 14
)

// Grid is a weekly timetable of Days x BlocksPerDay cells. Each cell holds an
// ordered stack of section references. Regular placement keeps cells at most
// single-occupancy; repair operators and the master catalog may stack several
// sections on one cell, and the validator treats every stack entry as an
// occupant of that (day, block).
type Grid struct {
	cells [Days][BlocksPerDay][]model.SectionRef
}

func NewGrid() *Grid {
	return &Grid{}
}

// InBounds reports whether day and block address a cell on the grid.
func InBounds(day, block int) bool {
	return day >= 0 && day < Days && block >= 0 && block < BlocksPerDay
}

// At returns the first section stacked on the cell, if any.
func (g *Grid) At(day, block int) (model.SectionRef, bool) {
	if !InBounds(day, block) || len(g.cells[day][block]) == 0 {
		return model.SectionRef{}, false
	}
	return g.cells[day][block][0], true
}

// SectionsAt returns a copy of the cell's stack in placement order.
func (g *Grid) SectionsAt(day, block int) []model.SectionRef {
	if !InBounds(day, block) || len(g.cells[day][block]) == 0 {
		return nil
	}
	out := make([]model.SectionRef, len(g.cells[day][block]))
	copy(out, g.cells[day][block])
	return out
}

// Occupied reports whether the cell holds at least one section.
func (g *Grid) Occupied(day, block int) bool {
	return InBounds(day, block) && len(g.cells[day][block]) > 0
}

// Place assigns a section to an empty cell. Occupied cells and out-of-range
// coordinates are refused.
func (g *Grid) Place(day, block int, ref model.SectionRef) bool {
	if !InBounds(day, block) || len(g.cells[day][block]) > 0 {
		return false
	}
	g.cells[day][block] = append(g.cells[day][block], ref)
	return true
}

// Stack appends a section to a cell regardless of occupancy.
func (g *Grid) Stack(day, block int, ref model.SectionRef) bool {
	if !InBounds(day, block) {
		return false
	}
	g.cells[day][block] = append(g.cells[day][block], ref)
	return true
}

// Take removes and returns the most recently stacked section of the cell.
func (g *Grid) Take(day, block int) (model.SectionRef, bool) {
	if !InBounds(day, block) || len(g.cells[day][block]) == 0 {
		return model.SectionRef{}, false
	}
	stack := g.cells[day][block]
	ref := stack[len(stack)-1]
	if len(stack) == 1 {
		g.cells[day][block] = nil
	} else {
		g.cells[day][block] = stack[:len(stack)-1]
	}
	return ref, true
}

// Clear empties the cell and returns the stack it held.
func (g *Grid) Clear(day, block int) []model.SectionRef {
	if !InBounds(day, block) {
		return nil
	}
	stack := g.cells[day][block]
	g.cells[day][block] = nil
	return stack
}

// Clone returns a deep copy sharing no cell storage with the receiver.
func (g *Grid) Clone() *Grid {
	clone := NewGrid()
	for day := 0; day < Days; day++ {
		for block := 0; block < BlocksPerDay; block++ {
			if len(g.cells[day][block]) == 0 {
				continue
			}
			stack := make([]model.SectionRef, len(g.cells[day][block]))
			copy(stack, g.cells[day][block])
			clone.cells[day][block] = stack
		}
	}
	return clone
}

// AssignedCount is the total number of section references on the grid,
// counting every entry of every stack.
func (g *Grid) AssignedCount() int {
	total := 0
	for day := 0; day < Days; day++ {
		for block := 0; block < BlocksPerDay; block++ {
			total += len(g.cells[day][block])
		}
	}
	return total
}

// OccupiedBlocks is the number of cells holding at least one section.
func (g *Grid) OccupiedBlocks() int {
	total := 0
	for day := 0; day < Days; day++ {
		for block := 0; block < BlocksPerDay; block++ {
			if len(g.cells[day][block]) > 0 {
				total++
			}
		}
	}
	return total
}

// DayLoad is the number of occupied cells on the given day.
func (g *Grid) DayLoad(day int) int {
	if day < 0 || day >= Days {
		return 0
	}
	load := 0
	for block := 0; block < BlocksPerDay; block++ {
		if len(g.cells[day][block]) > 0 {
			load++
		}
	}
	return load
}

// DaySpan returns the first and last occupied block of the day. ok is false
// when the day is empty.
func (g *Grid) DaySpan(day int) (first, last int, ok bool) {
	if day < 0 || day >= Days {
		return 0, 0, false
	}
	first = -1
	for block := 0; block < BlocksPerDay; block++ {
		if len(g.cells[day][block]) == 0 {
			continue
		}
		if first < 0 {
			first = block
		}
		last = block
	}
	if first < 0 {
		return 0, 0, false
	}
	return first, last, true
}

// IdleBlocks counts empty cells lying strictly between the first and last
// occupied block of each day. Days with at most one occupied block
// contribute nothing.
func (g *Grid) IdleBlocks() int {
	total := 0
	for day := 0; day < Days; day++ {
		first, last, ok := g.DaySpan(day)
		if !ok {
			continue
		}
		for block := first; block <= last; block++ {
			if len(g.cells[day][block]) == 0 {
				total++
			}
		}
	}
	return total
}

// CompactionPenalty scores per-day fragmentation: for every day whose
// occupied span exceeds its occupied count, two points per hole.
func (g *Grid) CompactionPenalty() int {
	penalty := 0
	for day := 0; day < Days; day++ {
		first, last, ok := g.DaySpan(day)
		if !ok {
			continue
		}
		span := last - first + 1
		count := g.DayLoad(day)
		if span > count {
			penalty += (span - count) * 2
		}
	}
	return penalty
}

// LoadVariance is the population variance of the five per-day occupied
// counts.
func (g *Grid) LoadVariance() float64 {
	var loads [Days]float64
	var sum float64
	for day := 0; day < Days; day++ {
		loads[day] = float64(g.DayLoad(day))
		sum += loads[day]
	}
	mean := sum / Days
	var variance float64
	for _, load := range loads {
		delta := load - mean
		variance += delta * delta
	}
	return variance / Days
}

// ForEach visits every placed section in day-major order, walking each cell
// stack bottom-up.
func (g *Grid) ForEach(fn func(day, block int, ref model.SectionRef)) {
	for day := 0; day < Days; day++ {
		for block := 0; block < BlocksPerDay; block++ {
			for _, ref := range g.cells[day][block] {
				fn(day, block, ref)
			}
		}
	}
}

// Placements flattens the grid into a placement list in ForEach order.
func (g *Grid) Placements() []Placement {
	var out []Placement
	g.ForEach(func(day, block int, ref model.SectionRef) {
		out = append(out, Placement{Day: day, Block: block, Ref: ref})
	})
	return out
}
