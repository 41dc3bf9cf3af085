package storage

import (
	"encoding/json"
	"errors"

	"horarium/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeHistory(history []model.HistoryPoint) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeHistory(data []byte) ([]model.HistoryPoint, error) {
	var history []model.HistoryPoint
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodeDiagnostics(diagnostics []model.GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeDiagnostics(data []byte) ([]model.GenerationDiagnostics, error) {
	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func EncodeLineage(records []model.LineageRecord) ([]byte, error) {
	return json.Marshal(records)
}

func DecodeLineage(data []byte) ([]model.LineageRecord, error) {
	var records []model.LineageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	for _, record := range records {
		if err := checkVersion(record.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func EncodeTopPrograms(top []model.TopProgramRecord) ([]byte, error) {
	return json.Marshal(top)
}

func DecodeTopPrograms(data []byte) ([]model.TopProgramRecord, error) {
	var top []model.TopProgramRecord
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	for _, record := range top {
		if err := checkVersion(record.VersionedRecord); err != nil {
			return nil, err
		}
	}
	return top, nil
}

func EncodeSchedule(schedule model.ScheduleRecord) ([]byte, error) {
	return json.Marshal(schedule)
}

func DecodeSchedule(data []byte) (model.ScheduleRecord, error) {
	var schedule model.ScheduleRecord
	if err := json.Unmarshal(data, &schedule); err != nil {
		return model.ScheduleRecord{}, err
	}
	if err := checkVersion(schedule.VersionedRecord); err != nil {
		return model.ScheduleRecord{}, err
	}
	return schedule, nil
}

func EncodeScenarioSummary(summary model.ScenarioSummary) ([]byte, error) {
	return json.Marshal(summary)
}

func DecodeScenarioSummary(data []byte) (model.ScenarioSummary, error) {
	var summary model.ScenarioSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.ScenarioSummary{}, err
	}
	if err := checkVersion(summary.VersionedRecord); err != nil {
		return model.ScenarioSummary{}, err
	}
	return summary, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}

// Versions are stamped by the stores on save; callers never set them.

func currentVersions() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func stampLineage(records []model.LineageRecord) []model.LineageRecord {
	copied := make([]model.LineageRecord, len(records))
	copy(copied, records)
	for i := range copied {
		copied[i].VersionedRecord = currentVersions()
	}
	return copied
}

func stampTopPrograms(top []model.TopProgramRecord) []model.TopProgramRecord {
	copied := make([]model.TopProgramRecord, len(top))
	copy(copied, top)
	for i := range copied {
		copied[i].VersionedRecord = currentVersions()
	}
	return copied
}

func stampSchedule(schedule model.ScheduleRecord) model.ScheduleRecord {
	schedule.VersionedRecord = currentVersions()
	return schedule
}

func stampScenarioSummary(summary model.ScenarioSummary) model.ScenarioSummary {
	summary.VersionedRecord = currentVersions()
	return summary
}
