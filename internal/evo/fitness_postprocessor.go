package evo

import (
	"fmt"
	"math"
)

const sizeProportionalEfficiency = 0.05

// FitnessPostprocessor adjusts fitness values after evaluation and before
// ranking and selection.
type FitnessPostprocessor interface {
	Name() string
	Process(scored []ScoredProgram) []ScoredProgram
}

type NoopFitnessPostprocessor struct{}

func (NoopFitnessPostprocessor) Name() string {
	return "none"
}

func (NoopFitnessPostprocessor) Process(scored []ScoredProgram) []ScoredProgram {
	return cloneScored(scored)
}

// SizeProportionalPostprocessor charges larger trees a complexity premium:
// fitness scales by node-count^0.05, which nudges selection toward smaller
// programs without overriding real quality differences.
type SizeProportionalPostprocessor struct{}

func (SizeProportionalPostprocessor) Name() string {
	return "size_proportional"
}

func (SizeProportionalPostprocessor) Process(scored []ScoredProgram) []ScoredProgram {
	out := cloneScored(scored)
	for i := range out {
		complexity := float64(out[i].Tree.Count())
		if complexity < 1 {
			complexity = 1
		}
		out[i].Fitness = out[i].Fitness * math.Pow(complexity, sizeProportionalEfficiency)
	}
	return out
}

// PostprocessorByName resolves the configured postprocessor name.
func PostprocessorByName(name string) (FitnessPostprocessor, error) {
	switch name {
	case "", "none":
		return NoopFitnessPostprocessor{}, nil
	case "size_proportional":
		return SizeProportionalPostprocessor{}, nil
	default:
		return nil, fmt.Errorf("unknown fitness postprocessor %q", name)
	}
}

func cloneScored(scored []ScoredProgram) []ScoredProgram {
	out := make([]ScoredProgram, len(scored))
	copy(out, scored)
	return out
}
