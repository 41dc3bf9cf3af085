package schedule

import (
	"errors"
	"fmt"
	"math/rand"

	"horarium/internal/catalog"
	"horarium/internal/program"
	"horarium/internal/timetable"
)

// DefaultExpectedBlocks is the weekly coverage target feeding the
// unassigned-section penalty.
const DefaultExpectedBlocks = 20

// Environment fixes the inputs shared by every evaluation in a run: catalog,
// section selection, validator, coverage target, and the branch threshold.
// Zero values for ExpectedBlocks and IdleThreshold apply the defaults.
type Environment struct {
	Catalog        *catalog.Catalog
	Selected       []int
	Validator      timetable.Validator
	ExpectedBlocks int
	IdleThreshold  int
}

func (e Environment) expectedBlocks() int {
	if e.ExpectedBlocks > 0 {
		return e.ExpectedBlocks
	}
	return DefaultExpectedBlocks
}

// EnsureRunnable rejects degenerate environments before an evolution run.
func (e Environment) EnsureRunnable() error {
	if e.Catalog == nil || e.Catalog.Len() == 0 {
		return errors.New("schedule: empty catalog")
	}
	if len(e.Selected) == 0 {
		return errors.New("schedule: empty selection")
	}
	for _, id := range e.Selected {
		if _, ok := e.Catalog.Section(id); !ok {
			return fmt.Errorf("schedule: selected id %d not in catalog", id)
		}
	}
	return nil
}

// Evaluation is one scored execution of a program tree. The penalty fields
// are the contributions already weighted into Fitness.
type Evaluation struct {
	Fitness             float64
	IdlePenalty         float64
	UnassignedPenalty   float64
	ConflictPenalty     float64
	CompactionPenalty   float64
	DistributionPenalty float64
	Report              timetable.Report
	Final               *timetable.Grid
}

// Evaluate builds a fresh starting grid, runs the tree over it, and scores
// the outcome. Lower fitness is strictly better; values are only compared
// within one run, never normalized.
func (e Environment) Evaluate(rng *rand.Rand, tree *program.Node) Evaluation {
	initial := Build(e.Catalog, e.Selected, rng)
	env := program.Env{Rand: rng, Validator: e.Validator, IdleThreshold: e.IdleThreshold}
	final := tree.Execute(env, initial)

	report := e.Validator.Detect(final)
	missing := e.expectedBlocks() - final.OccupiedBlocks()
	if missing < 0 {
		missing = 0
	}

	ev := Evaluation{
		IdlePenalty:         float64(final.IdleBlocks() * 8),
		UnassignedPenalty:   float64(missing * 10),
		ConflictPenalty:     report.Score(),
		CompactionPenalty:   float64(final.CompactionPenalty() * 5),
		DistributionPenalty: final.LoadVariance() * 2,
		Report:              report,
		Final:               final,
	}
	ev.Fitness = ev.IdlePenalty + ev.UnassignedPenalty + ev.ConflictPenalty +
		ev.CompactionPenalty + ev.DistributionPenalty
	return ev
}
