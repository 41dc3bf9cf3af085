package storage

import (
	"context"
	"testing"

	"horarium/internal/model"
)

func TestMemoryStoreHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.HistoryPoint{
		{Generation: 0, BestFitness: 240.5, ConflictCount: 0},
		{Generation: 1, BestFitness: 198.2, ConflictCount: 0},
	}
	if err := store.SaveHistory(ctx, "run-1", input); err != nil {
		t.Fatalf("save history: %v", err)
	}

	output, ok, err := store.GetHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted history")
	}
	if len(output) != 2 || output[1].BestFitness != 198.2 {
		t.Fatalf("unexpected history: %+v", output)
	}
}

func TestMemoryStoreDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.GenerationDiagnostics{
		{Generation: 0, BestFitness: 240.5, MeanFitness: 310.1, WorstFitness: 402.0, BestEverFitness: 240.5, FingerprintDiversity: 12},
	}
	if err := store.SaveDiagnostics(ctx, "run-1", input); err != nil {
		t.Fatalf("save diagnostics: %v", err)
	}
	output, ok, err := store.GetDiagnostics(ctx, "run-1")
	if err != nil {
		t.Fatalf("get diagnostics: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted diagnostics")
	}
	if len(output) != 1 || output[0].FingerprintDiversity != 12 {
		t.Fatalf("unexpected diagnostics: %+v", output)
	}
}

func TestMemoryStoreStampsLineageVersions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.LineageRecord{{
		ProgramID:   "p1",
		Generation:  1,
		Operation:   "mutate",
		Fingerprint: "fp1",
	}}
	if err := store.SaveLineage(ctx, "run-1", input); err != nil {
		t.Fatalf("save lineage: %v", err)
	}

	output, ok, err := store.GetLineage(ctx, "run-1")
	if err != nil {
		t.Fatalf("get lineage: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted lineage")
	}
	if len(output) != 1 || output[0].ProgramID != "p1" {
		t.Fatalf("unexpected lineage: %+v", output)
	}
	if output[0].SchemaVersion != CurrentSchemaVersion || output[0].CodecVersion != CurrentCodecVersion {
		t.Fatalf("expected stamped versions, got: %+v", output[0].VersionedRecord)
	}
	if input[0].SchemaVersion != 0 {
		t.Fatalf("input slice was mutated: %+v", input[0].VersionedRecord)
	}
}

func TestMemoryStoreTopProgramsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := []model.TopProgramRecord{
		{Rank: 1, Fitness: 198.2, Program: model.ProgramRecord{Kind: "compact"}},
		{Rank: 2, Fitness: 213.9, Program: model.ProgramRecord{Kind: "no_op"}},
	}
	if err := store.SaveTopPrograms(ctx, "run-1", input); err != nil {
		t.Fatalf("save top programs: %v", err)
	}
	output, ok, err := store.GetTopPrograms(ctx, "run-1")
	if err != nil {
		t.Fatalf("get top programs: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted top programs")
	}
	if len(output) != 2 || output[0].Rank != 1 || output[0].Program.Kind != "compact" {
		t.Fatalf("unexpected top programs: %+v", output)
	}
	if output[1].SchemaVersion != CurrentSchemaVersion {
		t.Fatalf("expected stamped versions, got: %+v", output[1].VersionedRecord)
	}
}

func TestMemoryStoreScheduleRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.ScheduleRecord{
		RunID:   "run-1",
		Fitness: 132.8,
		Cells: []model.CellRecord{
			{Day: 0, Block: 0, ID: 1, Course: "Calculo I", Teacher: "Garcia", Kind: model.KindLecture},
		},
	}
	if err := store.SaveSchedule(ctx, input); err != nil {
		t.Fatalf("save schedule: %v", err)
	}
	output, ok, err := store.GetSchedule(ctx, "run-1")
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted schedule")
	}
	if output.Fitness != input.Fitness || len(output.Cells) != 1 {
		t.Fatalf("unexpected schedule: %+v", output)
	}
	if output.SchemaVersion != CurrentSchemaVersion || output.CodecVersion != CurrentCodecVersion {
		t.Fatalf("expected stamped versions, got: %+v", output.VersionedRecord)
	}
}

func TestMemoryStoreScenarioSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.ScenarioSummary{
		Name:        "basic",
		Description: "fixed fifteen-section starter catalog",
		BestFitness: 132.8,
		BestRunID:   "run-1",
	}
	if err := store.SaveScenarioSummary(ctx, input); err != nil {
		t.Fatalf("save scenario summary: %v", err)
	}
	output, ok, err := store.GetScenarioSummary(ctx, "basic")
	if err != nil {
		t.Fatalf("get scenario summary: %v", err)
	}
	if !ok {
		t.Fatal("expected scenario summary basic")
	}
	if output.BestFitness != input.BestFitness || output.BestRunID != "run-1" {
		t.Fatalf("unexpected scenario summary: %+v", output)
	}
}

func TestMemoryStoreMissingKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, ok, err := store.GetHistory(ctx, "absent"); err != nil || ok {
		t.Fatalf("expected absent history, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.GetSchedule(ctx, "absent"); err != nil || ok {
		t.Fatalf("expected absent schedule, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := store.GetScenarioSummary(ctx, "absent"); err != nil || ok {
		t.Fatalf("expected absent scenario summary, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreInitWipes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.SaveHistory(ctx, "run-1", []model.HistoryPoint{{Generation: 0, BestFitness: 240.5}}); err != nil {
		t.Fatalf("save history: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		t.Fatalf("re-init: %v", err)
	}

	_, ok, err := store.GetHistory(ctx, "run-1")
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if ok {
		t.Fatal("expected init to wipe history")
	}
}
