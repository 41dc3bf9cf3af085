package evo

import (
	"fmt"
	"math/rand"
)

// DefaultTournamentSize is the sample size used when a tournament selector
// is built without one.
const DefaultTournamentSize = 3

// Selector chooses a parent from the scored population for replication.
// Lower fitness is better throughout.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, scored []ScoredProgram) (ScoredProgram, error)
}

// TournamentSelector samples Size distinct candidates uniformly and keeps
// the one with the lowest fitness. Size zero applies the default of three;
// populations smaller than Size shrink the sample instead of erroring.
type TournamentSelector struct {
	Size int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, scored []ScoredProgram) (ScoredProgram, error) {
	if rng == nil {
		return ScoredProgram{}, fmt.Errorf("random source is required")
	}
	if len(scored) == 0 {
		return ScoredProgram{}, fmt.Errorf("empty population")
	}

	size := s.Size
	if size <= 0 {
		size = DefaultTournamentSize
	}
	if size > len(scored) {
		size = len(scored)
	}

	sample := rng.Perm(len(scored))[:size]
	best := scored[sample[0]]
	for _, idx := range sample[1:] {
		if scored[idx].Fitness < best.Fitness {
			best = scored[idx]
		}
	}
	return best, nil
}
