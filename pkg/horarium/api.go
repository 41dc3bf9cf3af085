package horarium

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"horarium/internal/catalog"
	"horarium/internal/evo"
	"horarium/internal/export"
	"horarium/internal/model"
	"horarium/internal/platform"
	"horarium/internal/program"
	"horarium/internal/schedule"
	"horarium/internal/stats"
	"horarium/internal/storage"
	"horarium/internal/timetable"
)

const (
	defaultBenchmarksDir = "benchmarks"
	defaultExportsDir    = "exports"
	defaultDBPath        = "horarium.db"

	defaultRunWorkers       = 4
	defaultSweepConcurrency = 2
)

type Options struct {
	StoreKind     string
	DBPath        string
	BenchmarksDir string
	ExportsDir    string
	Logger        *zap.Logger
}

type Client struct {
	store  storage.Store
	logger *zap.Logger

	campusMu sync.Mutex
	campus   *platform.Campus

	// indexMu serializes run-index upserts; concurrent sweep runs share one
	// runs_index.json.
	indexMu sync.Mutex

	benchmarksDir string
	exportsDir    string
}

type RunRequest struct {
	RunID                 string
	Scenario              string
	Selection             string
	Seed                  int64
	Population            int
	Generations           int
	MaxDepth              int
	FunctionalProbability float64
	CrossoverProbability  float64
	MutationProbability   float64
	EliteCount            int
	TournamentSize        int
	FitnessPostprocessor  string
	Workers               int
	ExpectedBlocks        int
	IdleThreshold         int
	OverloadLimit         int
}

type RunSummary struct {
	RunID            string
	Scenario         string
	ArtifactsDir     string
	History          []model.HistoryPoint
	BestFitness      float64
	BestGeneration   int
	ConflictScore    float64
	HardConflicts    bool
	AssignedSections int
	SelectedSections int
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	Scenario         string
	Seed             int64
	Population       int
	Generations      int
	Workers          int
	EliteCount       int
	FinalBestFitness float64
}

type HistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type LineageRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type TopProgramsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type ScheduleRequest struct {
	RunID  string
	Latest bool
}

type ScheduleView struct {
	RunID   string
	Fitness float64
	Cells   []model.CellRecord
	Grid    *timetable.Grid
}

type ReportRequest struct {
	RunID         string
	Latest        bool
	OverloadLimit int
}

type ReportView struct {
	RunID    string
	Report   timetable.Report
	Analysis stats.ConflictAnalysis
	Metrics  stats.ScheduleMetrics
	Text     string
}

type ScenarioSummaryItem struct {
	Name        string
	Description string
	BestFitness float64
	BestRunID   string
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type SweepRequest struct {
	Scenario    string
	Selection   string
	Seeds       []int64
	Concurrency int
	Retries     int
	Population  int
	Generations int
	Workers     int
}

type SweepRun struct {
	Seed           int64
	RunID          string
	BestFitness    float64
	BestGeneration int
	ArtifactsDir   string
}

type SweepFailure struct {
	Seed     int64
	Error    string
	Attempts int
}

type SweepSummary struct {
	Scenario    string
	Runs        []SweepRun
	Failures    []SweepFailure
	BestRunID   string
	BestFitness float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	benchmarksDir := opts.BenchmarksDir
	if benchmarksDir == "" {
		benchmarksDir = defaultBenchmarksDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:         store,
		logger:        logger,
		benchmarksDir: benchmarksDir,
		exportsDir:    exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	_, err := c.ensureCampus(ctx)
	return err
}

// Reset drops every persisted record and reopens the campus with the
// built-in scenarios. Caller-registered catalogs are gone afterwards.
func (c *Client) Reset(ctx context.Context) error {
	campus, err := c.ensureCampus(ctx)
	if err != nil {
		return err
	}
	return campus.Reset(ctx)
}

// RegisterCatalog makes a fixed catalog runnable under the given scenario
// name, alongside the built-in generated scenarios.
func (c *Client) RegisterCatalog(ctx context.Context, name, description string, cat *catalog.Catalog) error {
	campus, err := c.ensureCampus(ctx)
	if err != nil {
		return err
	}
	return campus.RegisterCatalog(name, description, cat)
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Scenario == "" {
		req.Scenario = platform.ScenarioBasic
	}
	if req.Selection == "" {
		req.Selection = "all"
	}
	if req.Population <= 0 {
		req.Population = evo.DefaultPopulationSize
	}
	if req.Generations <= 0 {
		req.Generations = evo.DefaultGenerations
	}
	if req.MaxDepth <= 0 {
		req.MaxDepth = program.DefaultMaxDepth
	}
	if req.FunctionalProbability <= 0 {
		req.FunctionalProbability = program.DefaultFunctionalProbability
	}
	if req.CrossoverProbability <= 0 {
		req.CrossoverProbability = evo.DefaultCrossoverProbability
	}
	if req.MutationProbability <= 0 {
		req.MutationProbability = evo.DefaultMutationProbability
	}
	if req.EliteCount <= 0 {
		req.EliteCount = evo.DefaultEliteCount
	}
	if req.TournamentSize <= 0 {
		req.TournamentSize = evo.DefaultTournamentSize
	}
	if req.FitnessPostprocessor == "" {
		req.FitnessPostprocessor = "none"
	}
	if req.Workers <= 0 {
		req.Workers = defaultRunWorkers
	}
	if req.ExpectedBlocks <= 0 {
		req.ExpectedBlocks = schedule.DefaultExpectedBlocks
	}
	if req.IdleThreshold <= 0 {
		req.IdleThreshold = program.DefaultIdleThreshold
	}

	campus, err := c.ensureCampus(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := req.RunID
	if runID == "" {
		runID = fmt.Sprintf("%s-%d-%d", req.Scenario, req.Seed, now.Unix())
	}

	result, err := campus.RunOptimization(ctx, platform.OptimizationConfig{
		RunID:                 runID,
		Scenario:              req.Scenario,
		Selection:             req.Selection,
		Seed:                  req.Seed,
		PopulationSize:        req.Population,
		Generations:           req.Generations,
		MaxDepth:              req.MaxDepth,
		FunctionalProbability: req.FunctionalProbability,
		CrossoverProbability:  req.CrossoverProbability,
		MutationProbability:   req.MutationProbability,
		EliteCount:            req.EliteCount,
		TournamentSize:        req.TournamentSize,
		Postprocessor:         req.FitnessPostprocessor,
		Workers:               req.Workers,
		ExpectedBlocks:        req.ExpectedBlocks,
		IdleThreshold:         req.IdleThreshold,
		OverloadLimit:         req.OverloadLimit,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.benchmarksDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:                 runID,
			Scenario:              req.Scenario,
			Selection:             req.Selection,
			Seed:                  req.Seed,
			PopulationSize:        req.Population,
			Generations:           req.Generations,
			MaxDepth:              req.MaxDepth,
			FunctionalProbability: req.FunctionalProbability,
			CrossoverProbability:  req.CrossoverProbability,
			MutationProbability:   req.MutationProbability,
			EliteCount:            req.EliteCount,
			TournamentSize:        req.TournamentSize,
			FitnessPostprocessor:  req.FitnessPostprocessor,
			Workers:               req.Workers,
			ExpectedBlocks:        req.ExpectedBlocks,
			IdleThreshold:         req.IdleThreshold,
			SectionCount:          result.SectionCount,
			SelectedCount:         result.SelectedCount,
		},
		History:          result.History,
		Diagnostics:      result.Diagnostics,
		FinalBestFitness: result.BestFitness,
		TopPrograms:      result.TopPrograms,
		Lineage:          result.Lineage,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.WriteBenchmarkSeries(runDir, result.History); err != nil {
		return RunSummary{}, err
	}

	c.indexMu.Lock()
	err = stats.AppendRunIndex(c.benchmarksDir, stats.RunIndexEntry{
		RunID:            runID,
		Scenario:         req.Scenario,
		PopulationSize:   req.Population,
		Generations:      req.Generations,
		Seed:             req.Seed,
		Workers:          req.Workers,
		EliteCount:       req.EliteCount,
		FinalBestFitness: result.BestFitness,
		CreatedAtUTC:     now.Format(time.RFC3339Nano),
	})
	c.indexMu.Unlock()
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:            runID,
		Scenario:         req.Scenario,
		ArtifactsDir:     filepath.Clean(runDir),
		History:          append([]model.HistoryPoint(nil), result.History...),
		BestFitness:      result.BestFitness,
		BestGeneration:   result.BestGeneration,
		ConflictScore:    result.Report.Score(),
		HardConflicts:    result.Report.HasHardConflicts(),
		AssignedSections: result.AssignedSections,
		SelectedSections: result.SelectedCount,
	}, nil
}

// Sweep runs one optimization per seed under a task supervisor, so a flaky
// seed can be retried without aborting the batch. Results come back in seed
// order; seeds whose retries are exhausted are reported as failures.
func (c *Client) Sweep(ctx context.Context, req SweepRequest) (SweepSummary, error) {
	if req.Scenario == "" {
		req.Scenario = platform.ScenarioBasic
	}
	if len(req.Seeds) == 0 {
		return SweepSummary{}, errors.New("sweep requires at least one seed")
	}
	if req.Concurrency <= 0 {
		req.Concurrency = defaultSweepConcurrency
	}
	if req.Retries < 0 {
		return SweepSummary{}, errors.New("retries must be >= 0")
	}
	seen := make(map[int64]struct{}, len(req.Seeds))
	for _, seed := range req.Seeds {
		if _, dup := seen[seed]; dup {
			return SweepSummary{}, fmt.Errorf("duplicate sweep seed: %d", seed)
		}
		seen[seed] = struct{}{}
	}

	if _, err := c.ensureCampus(ctx); err != nil {
		return SweepSummary{}, err
	}

	restart := platform.TaskRestartNever
	if req.Retries > 0 {
		restart = platform.TaskRestartOnFailure
	}
	sup := platform.NewSupervisor(platform.TaskPolicy{
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2,
		MaxRestarts:    req.Retries,
	})

	var mu sync.Mutex
	results := make(map[int64]RunSummary, len(req.Seeds))
	sem := make(chan struct{}, req.Concurrency)
	seedsByTask := make(map[string]int64, len(req.Seeds))

	for _, seed := range req.Seeds {
		seed := seed
		name := fmt.Sprintf("seed-%d", seed)
		seedsByTask[name] = seed
		err := sup.StartSpec(platform.TaskSpec{Name: name, Group: req.Scenario, Restart: restart}, func(taskCtx context.Context) error {
			select {
			case sem <- struct{}{}:
			case <-taskCtx.Done():
				return taskCtx.Err()
			}
			defer func() { <-sem }()

			// Tasks live on the supervisor's context; tie them to the
			// sweep context as well so callers can cancel the batch.
			runCtx, cancel := context.WithCancel(taskCtx)
			defer cancel()
			stop := context.AfterFunc(ctx, cancel)
			defer stop()

			summary, err := c.Run(runCtx, RunRequest{
				Scenario:    req.Scenario,
				Selection:   req.Selection,
				Seed:        seed,
				Population:  req.Population,
				Generations: req.Generations,
				Workers:     req.Workers,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			results[seed] = summary
			mu.Unlock()
			return nil
		})
		if err != nil {
			sup.StopAll()
			return SweepSummary{}, err
		}
	}

	if err := sup.Wait(ctx); err != nil {
		sup.StopAll()
		return SweepSummary{}, err
	}

	summary := SweepSummary{Scenario: req.Scenario}
	for _, status := range sup.Statuses() {
		if !status.Failed {
			continue
		}
		summary.Failures = append(summary.Failures, SweepFailure{
			Seed:     seedsByTask[status.Name],
			Error:    status.LastError,
			Attempts: status.RestartCount + 1,
		})
	}
	for _, seed := range req.Seeds {
		run, ok := results[seed]
		if !ok {
			continue
		}
		summary.Runs = append(summary.Runs, SweepRun{
			Seed:           seed,
			RunID:          run.RunID,
			BestFitness:    run.BestFitness,
			BestGeneration: run.BestGeneration,
			ArtifactsDir:   run.ArtifactsDir,
		})
		if summary.BestRunID == "" || run.BestFitness < summary.BestFitness {
			summary.BestRunID = run.RunID
			summary.BestFitness = run.BestFitness
		}
	}
	if len(summary.Runs) == 0 {
		if len(summary.Failures) > 0 {
			return SweepSummary{}, fmt.Errorf("sweep failed for all %d seeds: %s", len(req.Seeds), summary.Failures[0].Error)
		}
		return SweepSummary{}, fmt.Errorf("sweep completed no runs for scenario %s", req.Scenario)
	}
	return summary, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.benchmarksDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			Scenario:         e.Scenario,
			Seed:             e.Seed,
			Population:       e.PopulationSize,
			Generations:      e.Generations,
			Workers:          e.Workers,
			EliteCount:       e.EliteCount,
			FinalBestFitness: e.FinalBestFitness,
		})
	}
	return out, nil
}

func (c *Client) History(ctx context.Context, req HistoryRequest) ([]model.HistoryPoint, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("history requires run id or latest")
	}

	if _, err := c.ensureCampus(ctx); err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]model.HistoryPoint(nil), history...), nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("diagnostics requires run id or latest")
	}

	if _, err := c.ensureCampus(ctx); err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	out := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(out, diagnostics)
	return out, nil
}

func (c *Client) Lineage(ctx context.Context, req LineageRequest) ([]model.LineageRecord, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("lineage requires run id or latest")
	}

	if _, err := c.ensureCampus(ctx); err != nil {
		return nil, err
	}
	lineage, ok, err := c.store.GetLineage(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("lineage not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(lineage) > req.Limit {
		lineage = lineage[:req.Limit]
	}
	out := make([]model.LineageRecord, len(lineage))
	copy(out, lineage)
	return out, nil
}

func (c *Client) TopPrograms(ctx context.Context, req TopProgramsRequest) ([]model.TopProgramRecord, error) {
	if req.RunID != "" && req.Latest {
		return nil, errors.New("use either run id or latest")
	}
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return nil, errors.New("top programs requires run id or latest")
	}

	if _, err := c.ensureCampus(ctx); err != nil {
		return nil, err
	}
	top, ok, err := c.store.GetTopPrograms(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("top programs not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(top) > req.Limit {
		top = top[:req.Limit]
	}
	out := make([]model.TopProgramRecord, len(top))
	copy(out, top)
	return out, nil
}

func (c *Client) Schedule(ctx context.Context, req ScheduleRequest) (ScheduleView, error) {
	if req.RunID != "" && req.Latest {
		return ScheduleView{}, errors.New("use either run id or latest")
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return ScheduleView{}, err
		}
		if len(entries) == 0 {
			return ScheduleView{}, errors.New("no runs available")
		}
		runID = entries[0].RunID
	}
	if runID == "" {
		return ScheduleView{}, errors.New("schedule requires run id or latest")
	}

	if _, err := c.ensureCampus(ctx); err != nil {
		return ScheduleView{}, err
	}
	record, ok, err := c.store.GetSchedule(ctx, runID)
	if err != nil {
		return ScheduleView{}, err
	}
	if !ok {
		return ScheduleView{}, fmt.Errorf("schedule not found for run id: %s", runID)
	}
	grid, err := schedule.FromCells(record.Cells)
	if err != nil {
		return ScheduleView{}, err
	}
	return ScheduleView{
		RunID:   record.RunID,
		Fitness: record.Fitness,
		Cells:   append([]model.CellRecord(nil), record.Cells...),
		Grid:    grid,
	}, nil
}

// Report re-validates a stored schedule and renders the conflict report
// with its severity analysis and schedule metrics.
func (c *Client) Report(ctx context.Context, req ReportRequest) (ReportView, error) {
	view, err := c.Schedule(ctx, ScheduleRequest{RunID: req.RunID, Latest: req.Latest})
	if err != nil {
		return ReportView{}, err
	}

	report := timetable.Validator{OverloadLimit: req.OverloadLimit}.Detect(view.Grid)
	metrics := stats.ComputeScheduleMetrics(view.Grid)
	return ReportView{
		RunID:    view.RunID,
		Report:   report,
		Analysis: stats.AnalyzeReport(report),
		Metrics:  metrics,
		Text:     stats.RenderScheduleReport(report, metrics),
	}, nil
}

func (c *Client) ScenarioSummary(ctx context.Context, name string) (ScenarioSummaryItem, error) {
	if name == "" {
		return ScenarioSummaryItem{}, errors.New("scenario name is required")
	}
	if _, err := c.ensureCampus(ctx); err != nil {
		return ScenarioSummaryItem{}, err
	}
	summary, ok, err := c.store.GetScenarioSummary(ctx, name)
	if err != nil {
		return ScenarioSummaryItem{}, err
	}
	if !ok {
		return ScenarioSummaryItem{}, fmt.Errorf("scenario summary not found: %s", name)
	}
	return ScenarioSummaryItem{
		Name:        summary.Name,
		Description: summary.Description,
		BestFitness: summary.BestFitness,
		BestRunID:   summary.BestRunID,
	}, nil
}

// Export copies a run's artifact files and renders the stored schedule as
// CSV, text and PDF next to them.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.benchmarksDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	dir, err := stats.ExportRunArtifacts(c.benchmarksDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}

	if _, err := c.ensureCampus(ctx); err != nil {
		return ExportSummary{}, err
	}
	record, ok, err := c.store.GetSchedule(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if ok {
		grid, err := schedule.FromCells(record.Cells)
		if err != nil {
			return ExportSummary{}, err
		}
		if err := export.WriteScheduleCSV(filepath.Join(dir, "schedule.csv"), grid); err != nil {
			return ExportSummary{}, err
		}
		if err := export.WriteScheduleText(filepath.Join(dir, "schedule.txt"), grid, ""); err != nil {
			return ExportSummary{}, err
		}
		if err := export.WriteSchedulePDF(filepath.Join(dir, "schedule.pdf"), grid, ""); err != nil {
			return ExportSummary{}, err
		}
	}
	if history, ok, err := c.store.GetHistory(ctx, runID); err != nil {
		return ExportSummary{}, err
	} else if ok {
		if err := export.WriteHistoryCSV(filepath.Join(dir, "history.csv"), history); err != nil {
			return ExportSummary{}, err
		}
	}

	return ExportSummary{RunID: runID, Directory: filepath.Clean(dir)}, nil
}

func (c *Client) ensureCampus(ctx context.Context) (*platform.Campus, error) {
	c.campusMu.Lock()
	defer c.campusMu.Unlock()

	if c.campus != nil {
		return c.campus, nil
	}
	campus := platform.NewCampus(platform.Config{Store: c.store, Logger: c.logger})
	if err := campus.Init(ctx); err != nil {
		return nil, err
	}
	c.campus = campus
	return c.campus, nil
}
