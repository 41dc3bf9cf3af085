// Package stats writes run artifacts to disk and renders conflict reports.
// The store keeps queryable records; this package keeps the human-facing
// files: per-run JSON artifacts, the run index, benchmark CSV series and
// text reports.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"horarium/internal/model"
)

const runIndexFile = "runs_index.json"

// RunConfig is the full parameterization of one optimization run, persisted
// so any run can be re-executed or audited later.
type RunConfig struct {
	RunID                 string  `json:"run_id"`
	Scenario              string  `json:"scenario"`
	Selection             string  `json:"selection"`
	Strategy              string  `json:"strategy,omitempty"`
	Seed                  int64   `json:"seed"`
	PopulationSize        int     `json:"population_size"`
	Generations           int     `json:"generations"`
	MaxDepth              int     `json:"max_depth"`
	FunctionalProbability float64 `json:"functional_probability"`
	CrossoverProbability  float64 `json:"crossover_probability"`
	MutationProbability   float64 `json:"mutation_probability"`
	EliteCount            int     `json:"elite_count"`
	TournamentSize        int     `json:"tournament_size"`
	FitnessPostprocessor  string  `json:"fitness_postprocessor,omitempty"`
	Workers               int     `json:"workers"`
	ExpectedBlocks        int     `json:"expected_blocks"`
	IdleThreshold         int     `json:"idle_threshold"`
	SectionCount          int     `json:"section_count"`
	SelectedCount         int     `json:"selected_count"`
}

// RunArtifacts is everything one run leaves behind on disk.
type RunArtifacts struct {
	Config           RunConfig                     `json:"config"`
	History          []model.HistoryPoint          `json:"history"`
	Diagnostics      []model.GenerationDiagnostics `json:"diagnostics,omitempty"`
	FinalBestFitness float64                       `json:"final_best_fitness"`
	TopPrograms      []model.TopProgramRecord      `json:"top_programs"`
	Lineage          []model.LineageRecord         `json:"lineage"`
}

// RunIndexEntry is one row of the run index.
type RunIndexEntry struct {
	RunID            string  `json:"run_id"`
	Scenario         string  `json:"scenario"`
	PopulationSize   int     `json:"population_size"`
	Generations      int     `json:"generations"`
	Seed             int64   `json:"seed"`
	Workers          int     `json:"workers"`
	EliteCount       int     `json:"elite_count"`
	FinalBestFitness float64 `json:"final_best_fitness"`
	CreatedAtUTC     string  `json:"created_at_utc"`
}

// WriteRunArtifacts writes the per-run artifact files under
// baseDir/<run id>/ and returns the run directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "history.json"), map[string]any{"points": artifacts.History, "final_best_fitness": artifacts.FinalBestFitness}); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "diagnostics.json"), artifacts.Diagnostics); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "top_programs.json"), artifacts.TopPrograms); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "lineage.json"), artifacts.Lineage); err != nil {
		return "", err
	}

	return runDir, nil
}

// AppendRunIndex upserts one entry into the run index by run ID.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the run index newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies one run's artifact files into outDir/<run id>/
// and returns the destination directory. The benchmark series is copied when
// present.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{"config.json", "history.json", "diagnostics.json", "top_programs.json", "lineage.json"}
	for _, file := range files {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	seriesPath := filepath.Join(src, "benchmark_series.csv")
	if _, err := os.Stat(seriesPath); err == nil {
		if err := copyFile(seriesPath, filepath.Join(dst, "benchmark_series.csv")); err != nil {
			return "", err
		}
	} else if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	return dst, nil
}

// ReadRunConfig loads a persisted run configuration.
func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

// WriteRunConfig writes config.json for a run, creating the run directory.
func WriteRunConfig(baseDir, runID string, cfg RunConfig) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(cfg.RunID) == "" {
		cfg.RunID = strings.TrimSpace(runID)
	}
	if cfg.RunID != strings.TrimSpace(runID) {
		return fmt.Errorf("run config run id mismatch: got=%s want=%s", cfg.RunID, strings.TrimSpace(runID))
	}
	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(runDir, "config.json"), cfg)
}

// ReadTopPrograms loads a run's leaderboard file.
func ReadTopPrograms(baseDir, runID string) ([]model.TopProgramRecord, bool, error) {
	path := filepath.Join(baseDir, runID, "top_programs.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var top []model.TopProgramRecord
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, false, err
	}
	return top, true, nil
}

// WriteBenchmarkSeries writes the convergence history as a CSV of
// generation, best fitness and conflict count rows.
func WriteBenchmarkSeries(runDir string, history []model.HistoryPoint) error {
	path := filepath.Join(runDir, "benchmark_series.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best_fitness", "conflicts"}); err != nil {
		return err
	}
	for _, point := range history {
		if err := writer.Write([]string{
			strconv.Itoa(point.Generation),
			strconv.FormatFloat(point.BestFitness, 'f', -1, 64),
			strconv.Itoa(point.ConflictCount),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadBenchmarkSeries parses a run's benchmark CSV back into history points.
func ReadBenchmarkSeries(baseDir, runID string) ([]model.HistoryPoint, bool, error) {
	path := filepath.Join(baseDir, runID, "benchmark_series.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.HistoryPoint{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 3 {
		return nil, false, fmt.Errorf("benchmark series header must have at least 3 columns")
	}

	series := make([]model.HistoryPoint, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 3 {
			return nil, false, fmt.Errorf("benchmark series row must have at least 3 columns")
		}
		generation, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, false, err
		}
		best, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		conflicts, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, false, err
		}
		series = append(series, model.HistoryPoint{
			Generation:    generation,
			BestFitness:   best,
			ConflictCount: conflicts,
		})
	}
	return series, true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
