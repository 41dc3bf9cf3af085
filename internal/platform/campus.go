// Package platform hosts the campus: the long-lived owner of the store, the
// scenario registry, and optimization runs. Everything a run persists goes
// through here; callers read it back straight from the store.
package platform

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"horarium/internal/catalog"
	"horarium/internal/evo"
	"horarium/internal/generator"
	"horarium/internal/model"
	"horarium/internal/schedule"
	"horarium/internal/storage"
	"horarium/internal/timetable"
)

// Built-in scenario names, registered on Init.
const (
	ScenarioBasic    = "basic"
	ScenarioAdvanced = "advanced"
)

// leaderboardSize caps how many final programs a run persists.
const leaderboardSize = 5

type StopReason string

const (
	StopReasonNormal   StopReason = "normal"
	StopReasonShutdown StopReason = "shutdown"
)

// Scenario is a named catalog source for optimization runs. Build receives
// the run seed, so generated scenarios reproduce per run instead of being
// frozen at registration.
type Scenario struct {
	Name        string
	Description string
	Build       func(seed int64) (*catalog.Catalog, error)
}

type Config struct {
	Store     storage.Store
	Logger    *zap.Logger
	Scenarios []Scenario
}

// OptimizationConfig parameterizes one run. Zero-valued engine knobs take
// the engine defaults; RunID defaults to "<scenario>-<seed>-<unix>".
type OptimizationConfig struct {
	RunID     string
	Scenario  string
	Selection string

	Seed                  int64
	PopulationSize        int
	Generations           int
	MaxDepth              int
	FunctionalProbability float64
	CrossoverProbability  float64
	MutationProbability   float64
	EliteCount            int
	TournamentSize        int
	Postprocessor         string
	Workers               int
	ExpectedBlocks        int
	IdleThreshold         int
	OverloadLimit         int
}

// OptimizationResult is what RunOptimization hands back once every record
// family is persisted. TopPrograms is ranked best-first.
type OptimizationResult struct {
	RunID          string
	Scenario       string
	History        []model.HistoryPoint
	Diagnostics    []model.GenerationDiagnostics
	Lineage        []model.LineageRecord
	TopPrograms    []model.TopProgramRecord
	BestFitness    float64
	BestGeneration int
	Schedule       model.ScheduleRecord
	Report         timetable.Report

	SectionCount     int
	SelectedCount    int
	AssignedSections int
}

type Campus struct {
	store  storage.Store
	logger *zap.Logger

	mu sync.RWMutex
	// summaryMu serializes the scenario-summary upsert, which is a
	// read-modify-write against the store.
	summaryMu sync.Mutex

	scenarios      map[string]Scenario
	started        bool
	lastStopReason StopReason
	runs           map[string]context.CancelFunc

	config Config
}

var (
	defaultCampusMu sync.Mutex
	defaultCampus   *Campus
)

func NewCampus(cfg Config) *Campus {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Campus{
		store:          cfg.Store,
		logger:         logger,
		scenarios:      make(map[string]Scenario),
		runs:           make(map[string]context.CancelFunc),
		config:         cfg,
		lastStopReason: StopReasonNormal,
	}
}

func StartDefault(ctx context.Context, cfg Config) (*Campus, error) {
	defaultCampusMu.Lock()
	defer defaultCampusMu.Unlock()

	if defaultCampus != nil && defaultCampus.Started() {
		return defaultCampus, nil
	}

	c := NewCampus(cfg)
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	defaultCampus = c
	return defaultCampus, nil
}

func Default() (*Campus, bool) {
	defaultCampusMu.Lock()
	c := defaultCampus
	defaultCampusMu.Unlock()

	if c == nil || !c.Started() {
		return nil, false
	}
	return c, true
}

func StopDefault(reason StopReason) error {
	defaultCampusMu.Lock()
	c := defaultCampus
	defaultCampusMu.Unlock()
	if c == nil {
		return nil
	}
	if err := c.StopWithReason(reason); err != nil {
		return err
	}
	defaultCampusMu.Lock()
	if defaultCampus == c {
		defaultCampus = nil
	}
	defaultCampusMu.Unlock()
	return nil
}

func (c *Campus) Init(ctx context.Context) error {
	if c.store == nil {
		return fmt.Errorf("store is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}

	for _, s := range builtinScenarios(c.logger) {
		c.scenarios[s.Name] = s
	}
	for i, s := range c.config.Scenarios {
		if s.Name == "" {
			c.scenarios = make(map[string]Scenario)
			return fmt.Errorf("scenario name is required at index %d", i)
		}
		if s.Build == nil {
			c.scenarios = make(map[string]Scenario)
			return fmt.Errorf("scenario %s has no catalog builder", s.Name)
		}
		if _, exists := c.scenarios[s.Name]; exists {
			c.scenarios = make(map[string]Scenario)
			return fmt.Errorf("duplicate scenario: %s", s.Name)
		}
		c.scenarios[s.Name] = s
	}

	c.started = true
	return nil
}

func (c *Campus) Create(ctx context.Context) error {
	return c.Init(ctx)
}

func (c *Campus) Reset(ctx context.Context) error {
	_ = c.StopWithReason(StopReasonShutdown)
	if resetter, ok := c.store.(storage.Resetter); ok {
		if err := resetter.Reset(ctx); err != nil {
			return err
		}
	}
	return c.Init(ctx)
}

// RegisterScenario adds or replaces a scenario on a started campus.
func (c *Campus) RegisterScenario(s Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if s.Build == nil {
		return fmt.Errorf("scenario %s has no catalog builder", s.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return fmt.Errorf("campus is not initialized")
	}
	c.scenarios[s.Name] = s
	return nil
}

// RegisterCatalog registers a fixed catalog as a scenario, ignoring the run
// seed.
func (c *Campus) RegisterCatalog(name, description string, cat *catalog.Catalog) error {
	if cat == nil {
		return fmt.Errorf("catalog is required")
	}
	return c.RegisterScenario(Scenario{
		Name:        name,
		Description: description,
		Build:       func(int64) (*catalog.Catalog, error) { return cat, nil },
	})
}

func (c *Campus) GetScenario(name string) (Scenario, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.scenarios[name]
	return s, ok
}

func (c *Campus) Stop() {
	_ = c.StopWithReason(StopReasonNormal)
}

func (c *Campus) Shutdown() {
	_ = c.StopWithReason(StopReasonShutdown)
}

func (c *Campus) StopWithReason(reason StopReason) error {
	if reason == "" {
		reason = StopReasonNormal
	}
	if !isValidStopReason(reason) {
		return fmt.Errorf("unsupported stop reason: %s", reason)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cancel := range c.runs {
		cancel()
	}

	c.started = false
	c.lastStopReason = reason
	c.scenarios = make(map[string]Scenario)
	c.runs = make(map[string]context.CancelFunc)
	return nil
}

// RunOptimization executes one evolution run against a registered scenario
// and persists every record family before returning. A failed persistence
// step fails the run.
func (c *Campus) RunOptimization(ctx context.Context, cfg OptimizationConfig) (OptimizationResult, error) {
	if cfg.Scenario == "" {
		return OptimizationResult{}, fmt.Errorf("scenario name is required")
	}
	if cfg.Selection == "" {
		cfg.Selection = "all"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	postprocessor, err := evo.PostprocessorByName(cfg.Postprocessor)
	if err != nil {
		return OptimizationResult{}, err
	}

	c.mu.RLock()
	scenario, ok := c.scenarios[cfg.Scenario]
	started := c.started
	c.mu.RUnlock()

	if !started {
		return OptimizationResult{}, fmt.Errorf("campus is not initialized")
	}
	if !ok {
		return OptimizationResult{}, fmt.Errorf("scenario not registered: %s", cfg.Scenario)
	}

	runID := cfg.RunID
	if runID == "" {
		runID = fmt.Sprintf("%s-%d-%d", cfg.Scenario, cfg.Seed, time.Now().Unix())
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := c.registerRun(runID, cancel); err != nil {
		return OptimizationResult{}, err
	}
	defer c.unregisterRun(runID)

	cat, err := scenario.Build(cfg.Seed)
	if err != nil {
		return OptimizationResult{}, fmt.Errorf("build scenario %s: %w", cfg.Scenario, err)
	}
	selected, err := cat.ParseSelection(cfg.Selection)
	if err != nil {
		return OptimizationResult{}, err
	}

	monitor, err := evo.NewPopulationMonitor(evo.MonitorConfig{
		Environment: schedule.Environment{
			Catalog:        cat,
			Selected:       selected,
			Validator:      timetable.Validator{OverloadLimit: cfg.OverloadLimit},
			ExpectedBlocks: cfg.ExpectedBlocks,
			IdleThreshold:  cfg.IdleThreshold,
		},
		PopulationSize:        cfg.PopulationSize,
		Generations:           cfg.Generations,
		MaxDepth:              cfg.MaxDepth,
		FunctionalProbability: cfg.FunctionalProbability,
		CrossoverProbability:  cfg.CrossoverProbability,
		MutationProbability:   cfg.MutationProbability,
		EliteCount:            cfg.EliteCount,
		Selector:              evo.TournamentSelector{Size: cfg.TournamentSize},
		Postprocessor:         postprocessor,
		Workers:               cfg.Workers,
		Seed:                  cfg.Seed,
		Logger:                c.logger.With(zap.String("run_id", runID)),
	})
	if err != nil {
		return OptimizationResult{}, err
	}

	result, err := monitor.Run(runCtx)
	if err != nil {
		return OptimizationResult{}, err
	}

	if err := c.store.SaveHistory(ctx, runID, result.History); err != nil {
		return OptimizationResult{}, err
	}
	if err := c.store.SaveDiagnostics(ctx, runID, result.Diagnostics); err != nil {
		return OptimizationResult{}, err
	}
	if err := c.store.SaveLineage(ctx, runID, result.Lineage); err != nil {
		return OptimizationResult{}, err
	}
	top := leaderboard(result.FinalPopulation)
	if err := c.store.SaveTopPrograms(ctx, runID, top); err != nil {
		return OptimizationResult{}, err
	}
	scheduleRecord := model.ScheduleRecord{
		RunID:   runID,
		Fitness: result.Best.Fitness,
		Cells:   schedule.Cells(result.Best.Eval.Final),
	}
	if err := c.store.SaveSchedule(ctx, scheduleRecord); err != nil {
		return OptimizationResult{}, err
	}
	if err := c.updateScenarioSummary(ctx, cfg.Scenario, result.Best.Fitness, runID); err != nil {
		return OptimizationResult{}, err
	}

	assigned := result.Best.Eval.Final.AssignedCount()
	c.logger.Info("optimization run complete",
		zap.String("run_id", runID),
		zap.String("scenario", cfg.Scenario),
		zap.Float64("best_fitness", result.Best.Fitness),
		zap.Int("best_generation", result.BestGeneration),
		zap.Int("assigned_sections", assigned))

	return OptimizationResult{
		RunID:            runID,
		Scenario:         cfg.Scenario,
		History:          result.History,
		Diagnostics:      result.Diagnostics,
		Lineage:          result.Lineage,
		TopPrograms:      top,
		BestFitness:      result.Best.Fitness,
		BestGeneration:   result.BestGeneration,
		Schedule:         scheduleRecord,
		Report:           result.Best.Eval.Report,
		SectionCount:     cat.Len(),
		SelectedCount:    len(selected),
		AssignedSections: assigned,
	}, nil
}

// leaderboard keeps the top entries of the already-ranked final population.
func leaderboard(ranked []evo.ScoredProgram) []model.TopProgramRecord {
	count := leaderboardSize
	if len(ranked) < count {
		count = len(ranked)
	}
	top := make([]model.TopProgramRecord, 0, count)
	for i := 0; i < count; i++ {
		top = append(top, model.TopProgramRecord{
			Rank:    i + 1,
			Fitness: ranked[i].Fitness,
			Program: ranked[i].Tree.ToRecord(),
		})
	}
	return top
}

// updateScenarioSummary upserts a scenario's best observed result. Fitness
// is minimized, so only a strictly lower value displaces the record.
func (c *Campus) updateScenarioSummary(ctx context.Context, name string, fitness float64, runID string) error {
	c.summaryMu.Lock()
	defer c.summaryMu.Unlock()

	summary, ok, err := c.store.GetScenarioSummary(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		summary = model.ScenarioSummary{
			Name:        name,
			Description: fmt.Sprintf("best observed fitness for scenario %s", name),
			BestFitness: fitness,
			BestRunID:   runID,
		}
	} else if fitness < summary.BestFitness {
		summary.BestFitness = fitness
		summary.BestRunID = runID
	}
	return c.store.SaveScenarioSummary(ctx, summary)
}

// StopRun cancels an active run's context. The run returns from
// RunOptimization with the context error and persists nothing.
func (c *Campus) StopRun(runID string) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	c.mu.RLock()
	cancel, ok := c.runs[runID]
	c.mu.RUnlock()
	if !ok {
		return fmt.Errorf("run not active: %s", runID)
	}
	cancel()
	return nil
}

func (c *Campus) registerRun(runID string, cancel context.CancelFunc) error {
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return fmt.Errorf("campus is not initialized")
	}
	if _, exists := c.runs[runID]; exists {
		return fmt.Errorf("run already active: %s", runID)
	}
	c.runs[runID] = cancel
	return nil
}

func (c *Campus) unregisterRun(runID string) {
	if runID == "" {
		return
	}
	c.mu.Lock()
	delete(c.runs, runID)
	c.mu.Unlock()
}

func (c *Campus) RegisteredScenarios() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.scenarios))
	for name := range c.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Campus) ActiveRuns() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.runs))
	for name := range c.runs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Campus) Started() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started
}

func (c *Campus) LastStopReason() StopReason {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastStopReason
}

func builtinScenarios(logger *zap.Logger) []Scenario {
	return []Scenario{
		{
			Name:        ScenarioBasic,
			Description: "fixed fifteen-section catalog with deterministic placements",
			Build: func(int64) (*catalog.Catalog, error) {
				return generator.Basic(), nil
			},
		},
		{
			Name:        ScenarioAdvanced,
			Description: "seeded random catalog across the five default schools",
			Build: func(seed int64) (*catalog.Catalog, error) {
				return generator.Advanced(generator.Config{Seed: seed, Logger: logger})
			},
		},
	}
}

func isValidStopReason(reason StopReason) bool {
	switch reason {
	case StopReasonNormal, StopReasonShutdown:
		return true
	default:
		return false
	}
}
