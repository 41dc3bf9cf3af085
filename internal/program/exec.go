package program

import (
	"math/rand"

	"horarium/internal/model"
	"horarium/internal/timetable"
)

// DefaultIdleThreshold is the idle-block count above which branch_on_idle
// takes its first branch.
const DefaultIdleThreshold = 3

// Room pools used by resolve_conflicts when reassigning a clashing room.
var (
	labRooms     = []string{"LAB F", "LAB FI", "LAB 12", "LAB 33C"}
	lectureRooms = []string{"R1-450", "R1-460", "J3-182A", "J3-232", "SALA 1"}
)

// Env carries the ambient inputs of program execution: the injected random
// source, the conflict validator, and the branch_on_idle threshold (zero
// value applies DefaultIdleThreshold).
type Env struct {
	Rand          *rand.Rand
	Validator     timetable.Validator
	IdleThreshold int
}

func (e Env) idleThreshold() int {
	if e.IdleThreshold > 0 {
		return e.IdleThreshold
	}
	return DefaultIdleThreshold
}

// Execute applies the node's transform to the grid and returns the result.
// Execution is total: it never errors, structurally deficient nodes act as
// identity, and the input grid is never mutated (transforms work on clones
// or freshly built grids, though identity may return the input unchanged).
func (n *Node) Execute(env Env, g *timetable.Grid) *timetable.Grid {
	if n == nil || g == nil {
		return g
	}
	switch n.Kind {
	case KindSequence:
		out := g
		for _, child := range n.Children {
			out = child.Execute(env, out)
		}
		return out
	case KindBranchOnIdle:
		if len(n.Children) < 2 {
			return g
		}
		if g.IdleBlocks() > env.idleThreshold() {
			return n.Children[0].Execute(env, g)
		}
		return n.Children[1].Execute(env, g)
	case KindTryAlternatives:
		if len(n.Children) < 2 {
			return g
		}
		first := n.Children[0].Execute(env, g.Clone())
		second := n.Children[1].Execute(env, g.Clone())
		if basicFitness(env, first) < basicFitness(env, second) {
			return first
		}
		return second
	case KindCompact, KindMoveToMorning:
		return compact(g)
	case KindSmartSwap:
		return smartSwap(env, g)
	case KindResolveConflicts:
		return resolveConflicts(env, g)
	case KindDistributeLoad:
		return distributeLoad(g)
	case KindOptimizeBlocks:
		return optimizeBlocks(g)
	default:
		return g
	}
}

// basicFitness is the cheap comparison score used by try_alternatives:
// ten points per idle block plus the conflict score.
func basicFitness(env Env, g *timetable.Grid) float64 {
	return float64(g.IdleBlocks()*10) + env.Validator.Detect(g).Score()
}

// compact left-packs every day: occupied cell stacks move to blocks 0,1,2...
// in block order. Idempotent.
func compact(g *timetable.Grid) *timetable.Grid {
	out := timetable.NewGrid()
	for day := 0; day < timetable.Days; day++ {
		target := 0
		for block := 0; block < timetable.BlocksPerDay; block++ {
			stack := g.SectionsAt(day, block)
			if len(stack) == 0 {
				continue
			}
			for _, ref := range stack {
				out.Stack(day, target, ref)
			}
			target++
		}
	}
	return out
}

// smartSwap repairs hard conflicts when any exist, otherwise attempts one
// random swap of two occupied cells, keeping it only if the swapped grid
// stays free of teacher and room conflicts.
func smartSwap(env Env, g *timetable.Grid) *timetable.Grid {
	out := g.Clone()
	report := env.Validator.Detect(out)
	if report.HasHardConflicts() {
		for _, c := range report.Teacher {
			relocateOffender(env, out, c.Day, c.Block)
		}
		for _, c := range report.Room {
			relocateOffender(env, out, c.Day, c.Block)
		}
		return out
	}
	trySwapRandomCells(env, out)
	return out
}

// relocateOffender pops the most recent section of a clashing cell and moves
// it to a uniformly chosen empty cell where its teacher is free. With no
// candidate cell the section stays unplaced.
func relocateOffender(env Env, g *timetable.Grid, day, block int) {
	ref, ok := g.Take(day, block)
	if !ok {
		return
	}
	var candidates [][2]int
	for d := 0; d < timetable.Days; d++ {
		for b := 0; b < timetable.BlocksPerDay; b++ {
			if !g.Occupied(d, b) && teacherFree(g, ref.Teacher, d, b) {
				candidates = append(candidates, [2]int{d, b})
			}
		}
	}
	if len(candidates) == 0 {
		return
	}
	pick := candidates[env.Rand.Intn(len(candidates))]
	g.Place(pick[0], pick[1], ref)
}

func trySwapRandomCells(env Env, g *timetable.Grid) {
	type cell struct{ day, block int }
	var occupied []cell
	for day := 0; day < timetable.Days; day++ {
		for block := 0; block < timetable.BlocksPerDay; block++ {
			if g.Occupied(day, block) {
				occupied = append(occupied, cell{day, block})
			}
		}
	}
	if len(occupied) < 2 {
		return
	}
	perm := env.Rand.Perm(len(occupied))
	a, b := occupied[perm[0]], occupied[perm[1]]

	trial := g.Clone()
	swapCells(trial, a.day, a.block, b.day, b.block)
	if env.Validator.Detect(trial).HasHardConflicts() {
		return
	}
	swapCells(g, a.day, a.block, b.day, b.block)
}

func swapCells(g *timetable.Grid, aDay, aBlock, bDay, bBlock int) {
	stackA := g.Clear(aDay, aBlock)
	stackB := g.Clear(bDay, bBlock)
	for _, ref := range stackB {
		g.Stack(aDay, aBlock, ref)
	}
	for _, ref := range stackA {
		g.Stack(bDay, bBlock, ref)
	}
}

// resolveConflicts clears teacher conflicts first by moving each offending
// section to the first empty, teacher-free cell in day-major order, then
// clears room conflicts by reassigning the offending section's room from the
// pool matching its kind.
func resolveConflicts(env Env, g *timetable.Grid) *timetable.Grid {
	out := g.Clone()
	report := env.Validator.Detect(out)
	for _, c := range report.Teacher {
		moveToFirstFreeCell(out, c.Day, c.Block)
	}
	for _, c := range report.Room {
		reassignRoom(env, out, c.Day, c.Block)
	}
	return out
}

func moveToFirstFreeCell(g *timetable.Grid, day, block int) {
	ref, ok := g.Take(day, block)
	if !ok {
		return
	}
	for d := 0; d < timetable.Days; d++ {
		for b := 0; b < timetable.BlocksPerDay; b++ {
			if !g.Occupied(d, b) && teacherFree(g, ref.Teacher, d, b) {
				g.Place(d, b, ref)
				return
			}
		}
	}
}

func reassignRoom(env Env, g *timetable.Grid, day, block int) {
	ref, ok := g.Take(day, block)
	if !ok {
		return
	}
	if ref.Room != "" {
		pool := lectureRooms
		if ref.Kind == model.KindLab {
			pool = labRooms
		}
		ref.Room = pool[env.Rand.Intn(len(pool))]
	}
	g.Stack(day, block, ref)
}

// distributeLoad moves one cell from the busiest day to the least busy day
// when their load difference exceeds one. The donor is the last occupied
// block of the busiest day; the destination is its first empty, teacher-free
// block. At most one move per application.
func distributeLoad(g *timetable.Grid) *timetable.Grid {
	out := g.Clone()
	busiest, lightest := 0, 0
	for day := 1; day < timetable.Days; day++ {
		if out.DayLoad(day) > out.DayLoad(busiest) {
			busiest = day
		}
		if out.DayLoad(day) < out.DayLoad(lightest) {
			lightest = day
		}
	}
	if out.DayLoad(busiest) <= out.DayLoad(lightest)+1 {
		return out
	}
	for block := timetable.BlocksPerDay - 1; block >= 0; block-- {
		if !out.Occupied(busiest, block) {
			continue
		}
		stack := out.SectionsAt(busiest, block)
		for target := 0; target < timetable.BlocksPerDay; target++ {
			if out.Occupied(lightest, target) || !stackTeachersFree(out, stack, lightest, target) {
				continue
			}
			for _, ref := range out.Clear(busiest, block) {
				out.Stack(lightest, target, ref)
			}
			break
		}
		break
	}
	return out
}

// optimizeBlocks regroups each day by teacher: sections come off the grid in
// block order, group by teacher preserving first-seen teacher order, and go
// back contiguously from block zero.
func optimizeBlocks(g *timetable.Grid) *timetable.Grid {
	out := g.Clone()
	for day := 0; day < timetable.Days; day++ {
		var extracted []model.SectionRef
		for block := 0; block < timetable.BlocksPerDay; block++ {
			extracted = append(extracted, out.Clear(day, block)...)
		}

		byTeacher := make(map[string][]model.SectionRef)
		var teachers []string
		for _, ref := range extracted {
			if _, ok := byTeacher[ref.Teacher]; !ok {
				teachers = append(teachers, ref.Teacher)
			}
			byTeacher[ref.Teacher] = append(byTeacher[ref.Teacher], ref)
		}

		block := 0
		for _, teacher := range teachers {
			for _, ref := range byTeacher[teacher] {
				if block >= timetable.BlocksPerDay {
					break
				}
				out.Place(day, block, ref)
				block++
			}
		}
	}
	return out
}

func teacherFree(g *timetable.Grid, teacher string, day, block int) bool {
	for _, ref := range g.SectionsAt(day, block) {
		if ref.Teacher == teacher {
			return false
		}
	}
	return true
}

func stackTeachersFree(g *timetable.Grid, stack []model.SectionRef, day, block int) bool {
	for _, ref := range stack {
		if !teacherFree(g, ref.Teacher, day, block) {
			return false
		}
	}
	return true
}
