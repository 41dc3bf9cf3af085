package storage

import (
	"context"

	"horarium/internal/model"
)

// Store persists the records produced by optimization runs. History,
// diagnostics, lineage and leaderboards are keyed by run ID; scenario
// summaries are keyed by scenario name.
type Store interface {
	Init(ctx context.Context) error
	SaveHistory(ctx context.Context, runID string, history []model.HistoryPoint) error
	GetHistory(ctx context.Context, runID string) ([]model.HistoryPoint, bool, error)
	SaveDiagnostics(ctx context.Context, runID string, diagnostics []model.GenerationDiagnostics) error
	GetDiagnostics(ctx context.Context, runID string) ([]model.GenerationDiagnostics, bool, error)
	SaveLineage(ctx context.Context, runID string, lineage []model.LineageRecord) error
	GetLineage(ctx context.Context, runID string) ([]model.LineageRecord, bool, error)
	SaveTopPrograms(ctx context.Context, runID string, top []model.TopProgramRecord) error
	GetTopPrograms(ctx context.Context, runID string) ([]model.TopProgramRecord, bool, error)
	SaveSchedule(ctx context.Context, schedule model.ScheduleRecord) error
	GetSchedule(ctx context.Context, runID string) (model.ScheduleRecord, bool, error)
	SaveScenarioSummary(ctx context.Context, summary model.ScenarioSummary) error
	GetScenarioSummary(ctx context.Context, name string) (model.ScenarioSummary, bool, error)
}

// Resetter is implemented by backends that can drop every persisted record.
type Resetter interface {
	Reset(ctx context.Context) error
}
