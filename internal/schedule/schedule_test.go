package schedule

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"horarium/internal/catalog"
	"horarium/internal/model"
	"horarium/internal/program"
	"horarium/internal/timetable"
)

func mustCatalog(t *testing.T, sections ...model.Section) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(sections...)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func section(id int, teacher string, opts ...model.TimeOption) model.Section {
	return model.Section{
		ID:          id,
		Course:      "Curso",
		Teacher:     teacher,
		Kind:        model.KindLecture,
		TimeOptions: opts,
	}
}

func opt(day, block int) model.TimeOption {
	return model.TimeOption{Day: day, Block: block, Duration: 1}
}

func TestBuildPlacesSingleOptionSections(t *testing.T) {
	cat := mustCatalog(t,
		section(1, "GARCIA", opt(0, 0)),
		section(2, "MARTINEZ", opt(0, 1)),
		section(3, "LOPEZ", opt(1, 0)),
	)

	grid := Build(cat, []int{1, 2, 3}, rand.New(rand.NewSource(1)))
	if got := grid.AssignedCount(); got != 3 {
		t.Fatalf("assigned = %d, want 3", got)
	}
	for _, tc := range []struct{ day, block, id int }{{0, 0, 1}, {0, 1, 2}, {1, 0, 3}} {
		ref, ok := grid.At(tc.day, tc.block)
		if !ok || ref.ID != tc.id {
			t.Errorf("cell (%d,%d) = %+v ok=%v, want id %d", tc.day, tc.block, ref, ok, tc.id)
		}
	}
}

func TestBuildSkipsOccupiedCells(t *testing.T) {
	cat := mustCatalog(t,
		section(1, "GARCIA", opt(2, 5)),
		section(2, "MARTINEZ", opt(2, 5)),
	)

	grid := Build(cat, []int{1, 2}, rand.New(rand.NewSource(1)))
	if got := grid.AssignedCount(); got != 1 {
		t.Fatalf("assigned = %d, want 1", got)
	}
	ref, _ := grid.At(2, 5)
	if ref.ID != 1 {
		t.Fatalf("cell kept id %d, want first-placed 1", ref.ID)
	}
}

func TestBuildIgnoresUnknownIDs(t *testing.T) {
	cat := mustCatalog(t, section(1, "GARCIA", opt(0, 0)))
	grid := Build(cat, []int{42, 1}, rand.New(rand.NewSource(1)))
	if got := grid.AssignedCount(); got != 1 {
		t.Fatalf("assigned = %d, want 1", got)
	}
}

func TestBuildDeterministicUnderSeed(t *testing.T) {
	sections := []model.Section{
		section(1, "GARCIA", opt(0, 0), opt(1, 3), opt(4, 8)),
		section(2, "MARTINEZ", opt(0, 0), opt(2, 2)),
		section(3, "LOPEZ", opt(1, 3), opt(3, 7), opt(4, 8)),
		section(4, "TORRES", opt(2, 2), opt(2, 3)),
	}
	ids := []int{1, 2, 3, 4}

	a := Build(mustCatalog(t, sections...), ids, rand.New(rand.NewSource(99)))
	b := Build(mustCatalog(t, sections...), ids, rand.New(rand.NewSource(99)))
	if !reflect.DeepEqual(a.Placements(), b.Placements()) {
		t.Fatalf("same seed produced different grids:\n%+v\n%+v", a.Placements(), b.Placements())
	}
}

func TestEnsureRunnable(t *testing.T) {
	cat := mustCatalog(t, section(1, "GARCIA", opt(0, 0)))

	if err := (Environment{Catalog: cat, Selected: []int{1}}).EnsureRunnable(); err != nil {
		t.Fatalf("valid environment rejected: %v", err)
	}
	if err := (Environment{Catalog: cat}).EnsureRunnable(); err == nil {
		t.Fatal("empty selection accepted")
	}
	if err := (Environment{Selected: []int{1}}).EnsureRunnable(); err == nil {
		t.Fatal("nil catalog accepted")
	}
	if err := (Environment{Catalog: cat, Selected: []int{1, 9}}).EnsureRunnable(); err == nil {
		t.Fatal("unknown selected id accepted")
	}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestEvaluateComponentsOnCleanGrid(t *testing.T) {
	cat := mustCatalog(t,
		section(1, "GARCIA", opt(0, 0)),
		section(2, "MARTINEZ", opt(0, 1)),
		section(3, "LOPEZ", opt(1, 0)),
	)
	env := Environment{Catalog: cat, Selected: []int{1, 2, 3}}

	ev := env.Evaluate(rand.New(rand.NewSource(5)), program.New(program.KindNoOp))

	// Loads 2,1,0,0,0: no idle, no holes, 17 of 20 expected blocks missing,
	// day-load variance 0.64.
	approx(t, "idle", ev.IdlePenalty, 0)
	approx(t, "unassigned", ev.UnassignedPenalty, 170)
	approx(t, "conflict", ev.ConflictPenalty, 0)
	approx(t, "compaction", ev.CompactionPenalty, 0)
	approx(t, "distribution", ev.DistributionPenalty, 1.28)
	approx(t, "fitness", ev.Fitness, 171.28)
	if ev.Final == nil || ev.Final.AssignedCount() != 3 {
		t.Fatalf("final grid = %+v", ev.Final)
	}
}

func TestEvaluateChargesIdleAndCompaction(t *testing.T) {
	cat := mustCatalog(t,
		section(1, "GARCIA", opt(0, 0)),
		section(2, "MARTINEZ", opt(0, 2)),
	)
	env := Environment{Catalog: cat, Selected: []int{1, 2}}

	ev := env.Evaluate(rand.New(rand.NewSource(5)), program.New(program.KindNoOp))

	approx(t, "idle", ev.IdlePenalty, 8)
	approx(t, "unassigned", ev.UnassignedPenalty, 180)
	approx(t, "compaction", ev.CompactionPenalty, 10)
	approx(t, "distribution", ev.DistributionPenalty, 1.28)
	approx(t, "fitness", ev.Fitness, 199.28)
}

func TestEvaluateEmptySelectionChargesFullUnassigned(t *testing.T) {
	cat := mustCatalog(t, section(1, "GARCIA", opt(0, 0)))
	env := Environment{Catalog: cat}

	ev := env.Evaluate(rand.New(rand.NewSource(5)), program.New(program.KindNoOp))

	if ev.Report.TotalEntries() != 0 {
		t.Fatalf("empty grid produced conflicts: %+v", ev.Report)
	}
	approx(t, "idle", ev.IdlePenalty, 0)
	approx(t, "unassigned", ev.UnassignedPenalty, 200)
	approx(t, "fitness", ev.Fitness, 200)
	if ev.Final == nil || ev.Final.AssignedCount() != 0 {
		t.Fatalf("final grid = %+v", ev.Final)
	}
}

func TestEvaluateReportsOverload(t *testing.T) {
	sections := make([]model.Section, 0, 21)
	ids := make([]int, 0, 21)
	for i := 0; i < 21; i++ {
		sections = append(sections, section(i+1, "TORRES", opt(i/7, i%7)))
		ids = append(ids, i+1)
	}
	env := Environment{Catalog: mustCatalog(t, sections...), Selected: ids}

	ev := env.Evaluate(rand.New(rand.NewSource(5)), program.New(program.KindNoOp))

	if len(ev.Report.Overload) != 1 {
		t.Fatalf("overload entries = %d, want 1", len(ev.Report.Overload))
	}
	approx(t, "conflict", ev.ConflictPenalty, 20)
	approx(t, "unassigned", ev.UnassignedPenalty, 0)
}

func TestEvaluateRewardsCompactTransform(t *testing.T) {
	cat := mustCatalog(t,
		section(1, "GARCIA", opt(0, 0)),
		section(2, "MARTINEZ", opt(0, 2)),
	)
	env := Environment{Catalog: cat, Selected: []int{1, 2}}

	idle := env.Evaluate(rand.New(rand.NewSource(5)), program.New(program.KindNoOp))
	packed := env.Evaluate(rand.New(rand.NewSource(5)), program.New(program.KindCompact))

	if packed.Fitness >= idle.Fitness {
		t.Fatalf("compact fitness %v not better than no_op %v", packed.Fitness, idle.Fitness)
	}
	approx(t, "fitness", packed.Fitness, 181.28)
}

func TestCellsRoundTrip(t *testing.T) {
	g := timetable.NewGrid()
	g.Place(0, 0, model.SectionRef{ID: 1, Course: "Calculo I", Teacher: "GARCIA", Kind: model.KindLecture})
	g.Place(1, 7, model.SectionRef{ID: 4, Course: "Programacion I Lab", Teacher: "LOPEZ", Room: "LAB 12", Kind: model.KindLab})
	g.Stack(0, 0, model.SectionRef{ID: 2, Course: "Fisica I", Teacher: "MARTINEZ", Kind: model.KindLecture})

	cells := Cells(g)
	if len(cells) != 3 {
		t.Fatalf("cells = %d, want 3", len(cells))
	}
	if cells[0].ID != 1 || cells[1].ID != 2 {
		t.Fatalf("stack order lost: %+v", cells[:2])
	}
	if cells[2].Room != "LAB 12" {
		t.Fatalf("room dropped: %+v", cells[2])
	}

	rebuilt, err := FromCells(cells)
	if err != nil {
		t.Fatalf("from cells: %v", err)
	}
	if !reflect.DeepEqual(g.Placements(), rebuilt.Placements()) {
		t.Fatalf("round trip changed grid:\n%+v\n%+v", g.Placements(), rebuilt.Placements())
	}
}

func TestFromCellsRejectsOutOfRange(t *testing.T) {
	_, err := FromCells([]model.CellRecord{{Day: 5, Block: 0, ID: 1}})
	if err == nil {
		t.Fatal("out-of-range day accepted")
	}
	_, err = FromCells([]model.CellRecord{{Day: 0, Block: 14, ID: 1}})
	if err == nil {
		t.Fatal("out-of-range block accepted")
	}
}

func TestEvaluateDeterministicUnderSeed(t *testing.T) {
	cat := mustCatalog(t,
		section(1, "GARCIA", opt(0, 0), opt(1, 1)),
		section(2, "MARTINEZ", opt(0, 1), opt(2, 4)),
		section(3, "LOPEZ", opt(1, 1), opt(3, 6)),
	)
	env := Environment{Catalog: cat, Selected: []int{1, 2, 3}}
	tree := program.New(program.KindSequence,
		program.New(program.KindCompact),
		program.New(program.KindSmartSwap),
	)

	a := env.Evaluate(rand.New(rand.NewSource(11)), tree)
	b := env.Evaluate(rand.New(rand.NewSource(11)), tree)

	approx(t, "fitness", a.Fitness, b.Fitness)
	if !reflect.DeepEqual(a.Final.Placements(), b.Final.Placements()) {
		t.Fatal("same seed produced different final grids")
	}
}
