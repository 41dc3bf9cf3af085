package evo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"horarium/internal/model"
	"horarium/internal/program"
	"horarium/internal/schedule"
)

// Engine defaults, applied when the corresponding MonitorConfig field is
// zero.
const (
	DefaultPopulationSize       = 30
	DefaultGenerations          = 50
	DefaultEliteCount           = 3
	DefaultCrossoverProbability = 0.8
	DefaultMutationProbability  = 0.3
)

// programNamespace scopes the deterministic name-based individual IDs, so a
// fixed seed reproduces the full lineage byte for byte.
var programNamespace = uuid.MustParse("54f50115-8a3e-4d1c-9f6e-0c17a2a9d801")

// ScoredProgram is one evaluated individual.
type ScoredProgram struct {
	ID      string
	Tree    *program.Node
	Fitness float64
	Eval    schedule.Evaluation
}

// RunResult carries everything a finished run produced. FinalPopulation is
// ranked best-first; Best is the best-ever individual across all
// generations, holding a private clone of its tree and final grid.
type RunResult struct {
	History         []model.HistoryPoint
	Diagnostics     []model.GenerationDiagnostics
	Lineage         []model.LineageRecord
	FinalPopulation []ScoredProgram
	Best            ScoredProgram
	BestGeneration  int
}

// MonitorConfig configures a run. Zero-valued counts and probabilities take
// the package defaults; out-of-range values fail construction rather than
// being clamped.
type MonitorConfig struct {
	Environment           schedule.Environment
	PopulationSize        int
	Generations           int
	MaxDepth              int
	FunctionalProbability float64
	CrossoverProbability  float64
	MutationProbability   float64
	EliteCount            int
	Selector              Selector
	Postprocessor         FitnessPostprocessor
	Workers               int
	Seed                  int64
	SeedPrograms          []*program.Node
	Logger                *zap.Logger
}

// PopulationMonitor owns one evolution run: population, breeding randomness,
// and generation bookkeeping.
type PopulationMonitor struct {
	cfg MonitorConfig
	rng *rand.Rand
}

func NewPopulationMonitor(cfg MonitorConfig) (*PopulationMonitor, error) {
	if cfg.PopulationSize == 0 {
		cfg.PopulationSize = DefaultPopulationSize
	}
	if cfg.PopulationSize < 4 {
		return nil, fmt.Errorf("population size must be >= 4, got %d", cfg.PopulationSize)
	}
	if cfg.Generations == 0 {
		cfg.Generations = DefaultGenerations
	}
	if cfg.Generations < 1 {
		return nil, fmt.Errorf("generations must be >= 1, got %d", cfg.Generations)
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = program.DefaultMaxDepth
	}
	if cfg.MaxDepth < 1 {
		return nil, fmt.Errorf("max depth must be >= 1, got %d", cfg.MaxDepth)
	}
	if cfg.FunctionalProbability == 0 {
		cfg.FunctionalProbability = program.DefaultFunctionalProbability
	}
	if cfg.CrossoverProbability == 0 {
		cfg.CrossoverProbability = DefaultCrossoverProbability
	}
	if cfg.MutationProbability == 0 {
		cfg.MutationProbability = DefaultMutationProbability
	}
	if cfg.FunctionalProbability < 0 || cfg.FunctionalProbability > 1 {
		return nil, fmt.Errorf("functional probability must be in [0,1], got %v", cfg.FunctionalProbability)
	}
	if cfg.CrossoverProbability < 0 || cfg.CrossoverProbability > 1 {
		return nil, fmt.Errorf("crossover probability must be in [0,1], got %v", cfg.CrossoverProbability)
	}
	if cfg.MutationProbability < 0 || cfg.MutationProbability > 1 {
		return nil, fmt.Errorf("mutation probability must be in [0,1], got %v", cfg.MutationProbability)
	}
	if cfg.EliteCount == 0 {
		cfg.EliteCount = DefaultEliteCount
	}
	if cfg.EliteCount < 0 || cfg.EliteCount > cfg.PopulationSize {
		return nil, fmt.Errorf("elite count must be in [1, population size], got %d", cfg.EliteCount)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Selector == nil {
		cfg.Selector = TournamentSelector{}
	}
	if cfg.Postprocessor == nil {
		cfg.Postprocessor = NoopFitnessPostprocessor{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if len(cfg.SeedPrograms) > cfg.PopulationSize {
		return nil, fmt.Errorf("%d seed programs exceed population size %d", len(cfg.SeedPrograms), cfg.PopulationSize)
	}
	for i, tree := range cfg.SeedPrograms {
		if err := tree.Validate(); err != nil {
			return nil, fmt.Errorf("seed program %d: %w", i, err)
		}
	}
	if err := cfg.Environment.EnsureRunnable(); err != nil {
		return nil, err
	}

	return &PopulationMonitor{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

type individual struct {
	id   string
	tree *program.Node
}

// Run executes the full generational loop. Fitness is minimized; the
// returned history's best-ever column is non-increasing.
func (m *PopulationMonitor) Run(ctx context.Context) (RunResult, error) {
	population, lineage := m.initialPopulation()

	var (
		history     []model.HistoryPoint
		diagnostics []model.GenerationDiagnostics
		scored      []ScoredProgram
		best        ScoredProgram
		bestGen     int
	)
	best.Fitness = math.Inf(1)

	for gen := 0; gen < m.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		var err error
		scored, err = m.evaluatePopulation(ctx, population, gen)
		if err != nil {
			return RunResult{}, err
		}
		scored = m.cfg.Postprocessor.Process(scored)
		sort.SliceStable(scored, func(i, j int) bool { return scored[i].Fitness < scored[j].Fitness })

		if scored[0].Fitness < best.Fitness {
			best = scored[0]
			best.Tree = scored[0].Tree.Clone()
			if best.Eval.Final != nil {
				best.Eval.Final = scored[0].Eval.Final.Clone()
			}
			bestGen = gen
		}

		conflictEntries := 0
		for _, item := range scored {
			conflictEntries += len(item.Eval.Report.Teacher) + len(item.Eval.Report.Room)
		}
		history = append(history, model.HistoryPoint{
			Generation:    gen,
			BestFitness:   best.Fitness,
			ConflictCount: conflictEntries,
		})
		diagnostics = append(diagnostics, m.summarize(gen, best.Fitness, scored))

		if gen%10 == 0 || gen == m.cfg.Generations-1 {
			m.cfg.Logger.Info("generation complete",
				zap.Int("generation", gen),
				zap.Float64("best_fitness", scored[0].Fitness),
				zap.Float64("best_ever_fitness", best.Fitness),
				zap.Int("conflict_entries", conflictEntries))
		}

		if gen == m.cfg.Generations-1 {
			break
		}
		var stepLineage []model.LineageRecord
		population, stepLineage, err = m.nextGeneration(ctx, scored, gen)
		if err != nil {
			return RunResult{}, err
		}
		lineage = append(lineage, stepLineage...)
	}

	return RunResult{
		History:         history,
		Diagnostics:     diagnostics,
		Lineage:         lineage,
		FinalPopulation: scored,
		Best:            best,
		BestGeneration:  bestGen,
	}, nil
}

func (m *PopulationMonitor) growConfig() program.GrowConfig {
	return program.GrowConfig{
		MaxDepth:              m.cfg.MaxDepth,
		FunctionalProbability: m.cfg.FunctionalProbability,
	}
}

// initialPopulation fills the first generation: configured seed programs
// first, randomly grown trees for the rest.
func (m *PopulationMonitor) initialPopulation() ([]individual, []model.LineageRecord) {
	population := make([]individual, 0, m.cfg.PopulationSize)
	lineage := make([]model.LineageRecord, 0, m.cfg.PopulationSize)
	for i := 0; i < m.cfg.PopulationSize; i++ {
		var tree *program.Node
		operation := "grow"
		if i < len(m.cfg.SeedPrograms) {
			tree = m.cfg.SeedPrograms[i].Clone()
			operation = "seed"
		} else {
			tree = program.Grow(m.rng, m.growConfig())
		}
		ind := individual{id: m.programID(0, i), tree: tree}
		population = append(population, ind)
		lineage = append(lineage, m.lineageRecord(ind, "", 0, operation))
	}
	return population, lineage
}

// programID derives a stable name-based ID from (seed, generation, slot).
func (m *PopulationMonitor) programID(generation, slot int) string {
	name := fmt.Sprintf("%d/%d/%d", m.cfg.Seed, generation, slot)
	return uuid.NewSHA1(programNamespace, []byte(name)).String()
}

func (m *PopulationMonitor) lineageRecord(ind individual, parentID string, generation int, operation string) model.LineageRecord {
	sig := program.ComputeSignature(ind.tree)
	return model.LineageRecord{
		ProgramID:   ind.id,
		ParentID:    parentID,
		Generation:  generation,
		Operation:   operation,
		Fingerprint: sig.Fingerprint,
		Summary:     sig.Summary,
	}
}

// deriveSeed gives every (generation, index) evaluation its own stream, so
// results are bit-identical for any worker count.
func deriveSeed(seed int64, generation, index int) int64 {
	return seed + int64(generation)*1000003 + int64(index)*7919
}

func (m *PopulationMonitor) evaluatePopulation(ctx context.Context, population []individual, generation int) ([]ScoredProgram, error) {
	type job struct {
		idx int
		ind individual
	}
	type result struct {
		idx    int
		scored ScoredProgram
		err    error
	}

	jobs := make(chan job)
	results := make(chan result, len(population))

	workerCount := m.cfg.Workers
	if workerCount > len(population) {
		workerCount = len(population)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				rng := rand.New(rand.NewSource(deriveSeed(m.cfg.Seed, generation, j.idx)))
				eval := m.cfg.Environment.Evaluate(rng, j.ind.tree)
				results <- result{idx: j.idx, scored: ScoredProgram{
					ID:      j.ind.id,
					Tree:    j.ind.tree,
					Fitness: eval.Fitness,
					Eval:    eval,
				}}
			}
		}()
	}

	for i := range population {
		jobs <- job{idx: i, ind: population[i]}
	}
	close(jobs)
	wg.Wait()
	close(results)

	scored := make([]ScoredProgram, len(population))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		scored[res.idx] = res.scored
	}
	return scored, nil
}

func (m *PopulationMonitor) summarize(generation int, bestEver float64, scored []ScoredProgram) model.GenerationDiagnostics {
	total := 0.0
	teacherConflicts, roomConflicts, overloaded := 0, 0, 0
	fingerprints := make(map[string]struct{}, len(scored))
	for _, item := range scored {
		total += item.Fitness
		teacherConflicts += len(item.Eval.Report.Teacher)
		roomConflicts += len(item.Eval.Report.Room)
		overloaded += len(item.Eval.Report.Overload)
		fingerprints[program.ComputeSignature(item.Tree).Fingerprint] = struct{}{}
	}
	return model.GenerationDiagnostics{
		Generation:           generation,
		BestFitness:          scored[0].Fitness,
		MeanFitness:          total / float64(len(scored)),
		WorstFitness:         scored[len(scored)-1].Fitness,
		BestEverFitness:      bestEver,
		TeacherConflicts:     teacherConflicts,
		RoomConflicts:        roomConflicts,
		OverloadedTeachers:   overloaded,
		FingerprintDiversity: len(fingerprints),
	}
}

// nextGeneration breeds the following population: elite clones of the ranked
// best keep their IDs, the rest come from tournament parents through
// crossover, cloning, and regrow mutation.
func (m *PopulationMonitor) nextGeneration(ctx context.Context, ranked []ScoredProgram, generation int) ([]individual, []model.LineageRecord, error) {
	nextGen := generation + 1
	next := make([]individual, 0, m.cfg.PopulationSize)
	lineage := make([]model.LineageRecord, 0, m.cfg.PopulationSize)

	eliteCount := m.cfg.EliteCount
	if eliteCount > len(ranked) {
		eliteCount = len(ranked)
	}
	for i := 0; i < eliteCount; i++ {
		elite := individual{id: ranked[i].ID, tree: ranked[i].Tree.Clone()}
		next = append(next, elite)
		lineage = append(lineage, m.lineageRecord(elite, ranked[i].ID, nextGen, "clone"))
	}

	for len(next) < m.cfg.PopulationSize {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		parent, err := m.cfg.Selector.PickParent(m.rng, ranked)
		if err != nil {
			return nil, nil, err
		}

		var tree *program.Node
		operation := "clone"
		if m.rng.Float64() < m.cfg.CrossoverProbability {
			mate, err := m.cfg.Selector.PickParent(m.rng, ranked)
			if err != nil {
				return nil, nil, err
			}
			tree = Crossover(m.rng, parent.Tree, mate.Tree)
			operation = "crossover"
		} else {
			tree = parent.Tree.Clone()
		}
		if m.rng.Float64() < m.cfg.MutationProbability {
			tree = Mutate(m.rng, tree, m.growConfig())
			if operation == "crossover" {
				operation = "crossover+mutate"
			} else {
				operation = "mutate"
			}
		}

		child := individual{id: m.programID(nextGen, len(next)), tree: tree}
		next = append(next, child)
		lineage = append(lineage, m.lineageRecord(child, parent.ID, nextGen, operation))
	}
	return next, lineage, nil
}
