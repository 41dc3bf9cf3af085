package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"horarium/internal/catalog"
	"horarium/internal/config"
	"horarium/internal/evo"
	"horarium/internal/export"
	"horarium/internal/generator"
	"horarium/internal/logging"
	"horarium/internal/model"
	"horarium/internal/platform"
	"horarium/internal/program"
	"horarium/internal/schedule"
	"horarium/internal/stats"
	"horarium/internal/storage"
	horapi "horarium/pkg/horarium"
)

const (
	benchmarksDir = "benchmarks"
	exportsDir    = "exports"
	defaultDBPath = "horarium.db"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "benchmark":
		return runBenchmark(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "lineage":
		return runLineage(ctx, args[1:])
	case "top":
		return runTop(ctx, args[1:])
	case "schedule":
		return runSchedule(ctx, args[1:])
	case "report":
		return runReport(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "scenario-summary":
		return runScenarioSummary(ctx, args[1:])
	case "generate":
		return runGenerate(ctx, args[1:])
	case "catalog":
		return runCatalog(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	campus := platform.NewCampus(platform.Config{Store: store})
	if err := campus.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s scenarios=%v\n", *storeKind, campus.RegisteredScenarios())
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()

	campus := platform.NewCampus(platform.Config{Store: store})
	if err := campus.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run profile path (yaml/json/toml)")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	scenarioName := fs.String("scenario", platform.ScenarioBasic, "scenario name")
	catalogPathFlag := fs.String("catalog", "", "catalog file to register and run (json or csv)")
	catalogName := fs.String("catalog-name", "catalog", "scenario name for a catalog file run")
	selection := fs.String("selection", "all", "section selection: all|auto|ids|ranges|school names")
	seed := fs.Int64("seed", 1, "rng seed")
	population := fs.Int("pop", evo.DefaultPopulationSize, "population size")
	generations := fs.Int("gens", evo.DefaultGenerations, "generation count")
	maxDepth := fs.Int("max-depth", program.DefaultMaxDepth, "maximum program tree depth")
	functionalProb := fs.Float64("functional-prob", program.DefaultFunctionalProbability, "probability of growing a functional node")
	crossoverProb := fs.Float64("crossover-prob", evo.DefaultCrossoverProbability, "crossover probability")
	mutationProb := fs.Float64("mutation-prob", evo.DefaultMutationProbability, "mutation probability")
	eliteCount := fs.Int("elite", evo.DefaultEliteCount, "elite count carried per generation")
	tournamentSize := fs.Int("tournament", evo.DefaultTournamentSize, "tournament sample size")
	postprocessorName := fs.String("fitness-postprocessor", "none", "fitness postprocessor: none|size_proportional")
	workers := fs.Int("workers", 4, "evaluation worker count")
	expectedBlocks := fs.Int("expected-blocks", schedule.DefaultExpectedBlocks, "expected occupied blocks for the unassigned penalty")
	idleThreshold := fs.Int("idle-threshold", program.DefaultIdleThreshold, "idle-gap threshold for terminal conditionals")
	overloadLimit := fs.Int("overload-limit", 0, "weekly blocks per teacher before overload (0 uses the validator default)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	logDev := fs.Bool("dev", false, "development (console) log encoding")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req := horapi.RunRequest{
		RunID:                 *runID,
		Scenario:              *scenarioName,
		Selection:             *selection,
		Seed:                  *seed,
		Population:            *population,
		Generations:           *generations,
		MaxDepth:              *maxDepth,
		FunctionalProbability: *functionalProb,
		CrossoverProbability:  *crossoverProb,
		MutationProbability:   *mutationProb,
		EliteCount:            *eliteCount,
		TournamentSize:        *tournamentSize,
		FitnessPostprocessor:  *postprocessorName,
		Workers:               *workers,
		ExpectedBlocks:        *expectedBlocks,
		IdleThreshold:         *idleThreshold,
		OverloadLimit:         *overloadLimit,
	}
	opts := runOptions{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
		LogLevel:      *logLevel,
		LogDev:        *logDev,
		CatalogPath:   *catalogPathFlag,
	}
	if *configPath != "" {
		profile, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		req = requestFromProfile(profile)
		req.RunID = *runID
		overrideFromFlags(&req, setFlags, map[string]any{
			"scenario":              *scenarioName,
			"selection":             *selection,
			"seed":                  *seed,
			"pop":                   *population,
			"gens":                  *generations,
			"max-depth":             *maxDepth,
			"functional-prob":       *functionalProb,
			"crossover-prob":        *crossoverProb,
			"mutation-prob":         *mutationProb,
			"elite":                 *eliteCount,
			"tournament":            *tournamentSize,
			"fitness-postprocessor": *postprocessorName,
			"workers":               *workers,
			"expected-blocks":       *expectedBlocks,
			"idle-threshold":        *idleThreshold,
			"overload-limit":        *overloadLimit,
		})
		opts = optionsFromProfile(profile, opts, setFlags)
	}
	if opts.CatalogPath != "" && setFlags["scenario"] {
		return errors.New("use either -scenario or -catalog, not both")
	}

	logger, err := logging.New(opts.LogLevel, opts.LogDev)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	client, err := horapi.New(horapi.Options{
		StoreKind:     opts.StoreKind,
		DBPath:        opts.DBPath,
		BenchmarksDir: opts.BenchmarksDir,
		ExportsDir:    opts.ExportsDir,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if opts.CatalogPath != "" {
		cat, err := loadCatalogFile(opts.CatalogPath)
		if err != nil {
			return err
		}
		description := fmt.Sprintf("catalog file %s", filepath.Base(opts.CatalogPath))
		if err := client.RegisterCatalog(ctx, *catalogName, description, cat); err != nil {
			return err
		}
		req.Scenario = *catalogName
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("run completed run_id=%s scenario=%s pop=%d gens=%d seed=%d\n",
		summary.RunID, summary.Scenario, req.Population, req.Generations, req.Seed)
	for _, point := range summary.History {
		fmt.Printf("generation=%d best_fitness=%.6f conflicts=%d\n", point.Generation, point.BestFitness, point.ConflictCount)
	}
	fmt.Printf("final_best_fitness=%.6f best_generation=%d\n", summary.BestFitness, summary.BestGeneration)
	fmt.Printf("conflict_score=%.2f hard_conflicts=%t assigned_sections=%d selected_sections=%d\n",
		summary.ConflictScore, summary.HardConflicts, summary.AssignedSections, summary.SelectedSections)
	fmt.Printf("artifacts_dir=%s\n", summary.ArtifactsDir)
	return nil
}

func runBenchmark(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("benchmark", flag.ContinueOnError)
	scenarioName := fs.String("scenario", platform.ScenarioBasic, "scenario name")
	selection := fs.String("selection", "all", "section selection expression")
	seedList := fs.String("seeds", "1,2,3,4,5", "comma-separated rng seeds, one run per seed")
	concurrency := fs.Int("concurrency", 2, "parallel runs")
	retries := fs.Int("retries", 0, "per-seed retry budget")
	population := fs.Int("pop", evo.DefaultPopulationSize, "population size")
	generations := fs.Int("gens", evo.DefaultGenerations, "generation count")
	workers := fs.Int("workers", 4, "evaluation worker count per run")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	jsonOut := fs.Bool("json", false, "emit sweep summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	seeds, err := parseSeeds(*seedList)
	if err != nil {
		return err
	}

	client, err := horapi.New(horapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Sweep(ctx, horapi.SweepRequest{
		Scenario:    *scenarioName,
		Selection:   *selection,
		Seeds:       seeds,
		Concurrency: *concurrency,
		Retries:     *retries,
		Population:  *population,
		Generations: *generations,
		Workers:     *workers,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		type sweepRunItem struct {
			Seed           int64   `json:"seed"`
			RunID          string  `json:"run_id"`
			BestFitness    float64 `json:"best_fitness"`
			BestGeneration int     `json:"best_generation"`
			ArtifactsDir   string  `json:"artifacts_dir"`
		}
		type sweepFailureItem struct {
			Seed     int64  `json:"seed"`
			Error    string `json:"error"`
			Attempts int    `json:"attempts"`
		}
		type sweepOut struct {
			Scenario    string             `json:"scenario"`
			Runs        []sweepRunItem     `json:"runs"`
			Failures    []sweepFailureItem `json:"failures,omitempty"`
			BestRunID   string             `json:"best_run_id"`
			BestFitness float64            `json:"best_fitness"`
		}
		out := sweepOut{
			Scenario:    summary.Scenario,
			Runs:        make([]sweepRunItem, 0, len(summary.Runs)),
			BestRunID:   summary.BestRunID,
			BestFitness: summary.BestFitness,
		}
		for _, item := range summary.Runs {
			out.Runs = append(out.Runs, sweepRunItem{
				Seed:           item.Seed,
				RunID:          item.RunID,
				BestFitness:    item.BestFitness,
				BestGeneration: item.BestGeneration,
				ArtifactsDir:   item.ArtifactsDir,
			})
		}
		for _, item := range summary.Failures {
			out.Failures = append(out.Failures, sweepFailureItem{
				Seed:     item.Seed,
				Error:    item.Error,
				Attempts: item.Attempts,
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, item := range summary.Runs {
		fmt.Printf("seed=%d run_id=%s best_fitness=%.6f best_generation=%d\n",
			item.Seed, item.RunID, item.BestFitness, item.BestGeneration)
	}
	for _, item := range summary.Failures {
		fmt.Printf("seed=%d failed attempts=%d error=%s\n", item.Seed, item.Attempts, item.Error)
	}
	fmt.Printf("benchmark completed scenario=%s runs=%d failures=%d best_run_id=%s best_fitness=%.6f\n",
		summary.Scenario, len(summary.Runs), len(summary.Failures), summary.BestRunID, summary.BestFitness)
	return nil
}

func runRuns(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	entries, err := stats.ListRunIndex(benchmarksDir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if len(entries) > *limit {
		entries = entries[:*limit]
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		fmt.Printf("run_id=%s created_at=%s scenario=%s seed=%d pop=%d gens=%d workers=%d elite=%d final_best_fitness=%.6f\n",
			e.RunID,
			e.CreatedAtUTC,
			e.Scenario,
			e.Seed,
			e.PopulationSize,
			e.Generations,
			e.Workers,
			e.EliteCount,
			e.FinalBestFitness,
		)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show history for the most recent run from run index")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := horapi.New(horapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.History(ctx, horapi.HistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for _, point := range history {
		fmt.Printf("generation=%d best_fitness=%.6f conflicts=%d\n", point.Generation, point.BestFitness, point.ConflictCount)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run from run index")
	limit := fs.Int("limit", 50, "max generations to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := horapi.New(horapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, horapi.DiagnosticsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(diagnostics) == 0 {
		fmt.Println("no diagnostics")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnostics)
	}

	for _, d := range diagnostics {
		fmt.Printf("generation=%d best=%.6f mean=%.6f worst=%.6f best_ever=%.6f teacher_conflicts=%d room_conflicts=%d overloaded_teachers=%d fingerprints=%d\n",
			d.Generation,
			d.BestFitness,
			d.MeanFitness,
			d.WorstFitness,
			d.BestEverFitness,
			d.TeacherConflicts,
			d.RoomConflicts,
			d.OverloadedTeachers,
			d.FingerprintDiversity,
		)
	}
	return nil
}

func runLineage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lineage", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show lineage for the most recent run from run index")
	limit := fs.Int("limit", 50, "max lineage rows to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit lineage rows as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := horapi.New(horapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	lineage, err := client.Lineage(ctx, horapi.LineageRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(lineage) == 0 {
		fmt.Println("no lineage records")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(lineage)
	}

	for _, rec := range lineage {
		fmt.Printf("gen=%d program_id=%s parent_id=%s op=%s fingerprint=%s nodes=%d depth=%d\n",
			rec.Generation,
			rec.ProgramID,
			rec.ParentID,
			rec.Operation,
			rec.Fingerprint,
			rec.Summary.TotalNodes,
			rec.Summary.Depth,
		)
	}
	return nil
}

func runTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show top programs for the most recent run from run index")
	limit := fs.Int("limit", 5, "max top programs to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit top programs as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := horapi.New(horapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	top, err := client.TopPrograms(ctx, horapi.TopProgramsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(top) == 0 {
		fmt.Println("no top programs")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(top)
	}

	for _, item := range top {
		node, err := program.FromRecord(item.Program)
		if err != nil {
			return fmt.Errorf("decode rank %d program: %w", item.Rank, err)
		}
		fmt.Printf("rank=%d fitness=%.6f nodes=%d depth=%d program=%s\n",
			item.Rank,
			item.Fitness,
			node.Count(),
			node.Depth(),
			node.Canonical(),
		)
	}
	return nil
}

func runSchedule(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show the schedule of the most recent run from run index")
	jsonOut := fs.Bool("json", false, "emit schedule cells as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := horapi.New(horapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	view, err := client.Schedule(ctx, horapi.ScheduleRequest{RunID: *runID, Latest: *latest})
	if err != nil {
		return err
	}
	if *jsonOut {
		type scheduleOut struct {
			RunID   string             `json:"run_id"`
			Fitness float64            `json:"fitness"`
			Cells   []model.CellRecord `json:"cells"`
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scheduleOut{RunID: view.RunID, Fitness: view.Fitness, Cells: view.Cells})
	}

	text, err := export.ScheduleText(view.Grid, "")
	if err != nil {
		return err
	}
	fmt.Printf("run_id=%s fitness=%.6f assigned=%d\n", view.RunID, view.Fitness, view.Grid.AssignedCount())
	fmt.Print(text)
	return nil
}

func runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "report on the most recent run from run index")
	overloadLimit := fs.Int("overload-limit", 0, "weekly blocks per teacher before overload (0 uses the validator default)")
	jsonOut := fs.Bool("json", false, "emit report analysis as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := horapi.New(horapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	view, err := client.Report(ctx, horapi.ReportRequest{
		RunID:         *runID,
		Latest:        *latest,
		OverloadLimit: *overloadLimit,
	})
	if err != nil {
		return err
	}
	if *jsonOut {
		type reportOut struct {
			RunID         string                 `json:"run_id"`
			HardConflicts bool                   `json:"hard_conflicts"`
			Analysis      stats.ConflictAnalysis `json:"analysis"`
			Metrics       stats.ScheduleMetrics  `json:"metrics"`
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reportOut{
			RunID:         view.RunID,
			HardConflicts: view.Report.HasHardConflicts(),
			Analysis:      view.Analysis,
			Metrics:       view.Metrics,
		})
	}

	fmt.Printf("run_id=%s\n", view.RunID)
	fmt.Print(view.Text)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "export the most recent run from run index")
	outDir := fs.String("out", exportsDir, "export output directory")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := horapi.New(horapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, horapi.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}

	fmt.Printf("exported run_id=%s to=%s\n", exported.RunID, exported.Directory)
	return nil
}

func runScenarioSummary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scenario-summary", flag.ContinueOnError)
	scenarioName := fs.String("scenario", "", "scenario name")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scenarioName == "" {
		return errors.New("scenario-summary requires -scenario")
	}

	client, err := horapi.New(horapi.Options{
		StoreKind:     *storeKind,
		DBPath:        *dbPath,
		BenchmarksDir: benchmarksDir,
		ExportsDir:    exportsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.ScenarioSummary(ctx, *scenarioName)
	if err != nil {
		return err
	}
	fmt.Printf("scenario=%s best_fitness=%.6f best_run_id=%s description=%s\n",
		summary.Name,
		summary.BestFitness,
		summary.BestRunID,
		summary.Description,
	)
	return nil
}

func runGenerate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	kind := fs.String("kind", "advanced", "catalog kind: basic|advanced")
	seed := fs.Int64("seed", 1, "rng seed for the advanced generator")
	perSchool := fs.Int("sections-per-school", 0, "sections per school for the advanced generator (0 uses the default)")
	outPath := fs.String("out", "", "output catalog path (json or csv)")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outPath == "" {
		return errors.New("generate requires -out")
	}

	var cat *catalog.Catalog
	switch *kind {
	case "basic":
		cat = generator.Basic()
	case "advanced":
		logger, err := logging.New(*logLevel, false)
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()
		cat, err = generator.Advanced(generator.Config{
			Seed:              *seed,
			SectionsPerSchool: *perSchool,
			Logger:            logger,
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown catalog kind: %s", *kind)
	}

	if err := writeCatalogFile(*outPath, cat); err != nil {
		return err
	}
	fmt.Printf("generated catalog kind=%s sections=%d schools=%v out=%s\n",
		*kind, cat.Len(), cat.Schools(), filepath.Clean(*outPath))
	return nil
}

func runCatalog(_ context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("catalog requires a subcommand: show|convert")
	}
	switch args[0] {
	case "show":
		fs := flag.NewFlagSet("catalog show", flag.ContinueOnError)
		path := fs.String("path", "", "catalog file path (json or csv)")
		jsonOut := fs.Bool("json", false, "emit sections as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *path == "" {
			return errors.New("catalog show requires -path")
		}
		cat, err := loadCatalogFile(*path)
		if err != nil {
			return err
		}
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(cat.Sections())
		}
		fmt.Printf("catalog sections=%d schools=%v\n", cat.Len(), cat.Schools())
		for _, s := range cat.Sections() {
			fmt.Printf("id=%d course=%s teacher=%s kind=%s school=%s options=%d\n",
				s.ID, s.Course, s.Teacher, s.Kind, s.School, len(s.TimeOptions))
		}
		return nil
	case "convert":
		fs := flag.NewFlagSet("catalog convert", flag.ContinueOnError)
		inPath := fs.String("in", "", "input catalog path (json or csv)")
		outPath := fs.String("out", "", "output catalog path (json or csv)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *inPath == "" || *outPath == "" {
			return errors.New("catalog convert requires -in and -out")
		}
		cat, err := loadCatalogFile(*inPath)
		if err != nil {
			return err
		}
		if err := writeCatalogFile(*outPath, cat); err != nil {
			return err
		}
		fmt.Printf("converted sections=%d in=%s out=%s\n", cat.Len(), *inPath, filepath.Clean(*outPath))
		return nil
	default:
		return fmt.Errorf("unsupported catalog subcommand: %s", args[0])
	}
}

func parseSeeds(list string) ([]int64, error) {
	var seeds []int64
	for _, token := range strings.Split(list, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		seed, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad seed %q", token)
		}
		seeds = append(seeds, seed)
	}
	if len(seeds) == 0 {
		return nil, errors.New("no seeds given")
	}
	return seeds, nil
}

func loadCatalogFile(path string) (*catalog.Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return catalog.LoadJSON(path)
	case ".csv":
		return catalog.LoadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

func writeCatalogFile(path string, cat *catalog.Catalog) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return catalog.WriteJSON(path, cat)
	case ".csv":
		return catalog.WriteCSV(path, cat)
	default:
		return fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: horariumctl <init|reset|run|benchmark|runs|history|diagnostics|lineage|top|schedule|report|export|scenario-summary|generate|catalog> [flags]", msg)
}
