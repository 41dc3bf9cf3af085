package storage

import (
	"context"
	"sync"

	"horarium/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	history     map[string][]model.HistoryPoint
	diagnostics map[string][]model.GenerationDiagnostics
	lineage     map[string][]model.LineageRecord
	topPrograms map[string][]model.TopProgramRecord
	schedules   map[string]model.ScheduleRecord
	scenarios   map[string]model.ScenarioSummary
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.reset()
	return s
}

// Init wipes the store. Backends share the convention that Init leaves an
// empty, usable store behind.
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Init(ctx)
}

func (s *MemoryStore) reset() {
	s.history = make(map[string][]model.HistoryPoint)
	s.diagnostics = make(map[string][]model.GenerationDiagnostics)
	s.lineage = make(map[string][]model.LineageRecord)
	s.topPrograms = make(map[string][]model.TopProgramRecord)
	s.schedules = make(map[string]model.ScheduleRecord)
	s.scenarios = make(map[string]model.ScenarioSummary)
}

func (s *MemoryStore) SaveHistory(_ context.Context, runID string, history []model.HistoryPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.HistoryPoint, len(history))
	copy(copied, history)
	s.history[runID] = copied
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, runID string) ([]model.HistoryPoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.HistoryPoint, len(history))
	copy(copied, history)
	return copied, true, nil
}

func (s *MemoryStore) SaveDiagnostics(_ context.Context, runID string, diagnostics []model.GenerationDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetDiagnostics(_ context.Context, runID string) ([]model.GenerationDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.GenerationDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}

func (s *MemoryStore) SaveLineage(_ context.Context, runID string, lineage []model.LineageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lineage[runID] = stampLineage(lineage)
	return nil
}

func (s *MemoryStore) GetLineage(_ context.Context, runID string) ([]model.LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lineage, ok := s.lineage[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.LineageRecord, len(lineage))
	copy(copied, lineage)
	return copied, true, nil
}

func (s *MemoryStore) SaveTopPrograms(_ context.Context, runID string, top []model.TopProgramRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topPrograms[runID] = stampTopPrograms(top)
	return nil
}

func (s *MemoryStore) GetTopPrograms(_ context.Context, runID string) ([]model.TopProgramRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	top, ok := s.topPrograms[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.TopProgramRecord, len(top))
	copy(copied, top)
	return copied, true, nil
}

func (s *MemoryStore) SaveSchedule(_ context.Context, schedule model.ScheduleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schedules[schedule.RunID] = stampSchedule(schedule)
	return nil
}

func (s *MemoryStore) GetSchedule(_ context.Context, runID string) (model.ScheduleRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, ok := s.schedules[runID]
	return schedule, ok, nil
}

func (s *MemoryStore) SaveScenarioSummary(_ context.Context, summary model.ScenarioSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scenarios[summary.Name] = stampScenarioSummary(summary)
	return nil
}

func (s *MemoryStore) GetScenarioSummary(_ context.Context, name string) (model.ScenarioSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.scenarios[name]
	return summary, ok, nil
}
