package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// SectionKind classifies how a section meets.
type SectionKind string

const (
	KindLecture SectionKind = "lecture"
	KindLab     SectionKind = "lab"
	KindSeminar SectionKind = "seminar"
)

// Valid reports whether k is one of the known section kinds.
func (k SectionKind) Valid() bool {
	switch k {
	case KindLecture, KindLab, KindSeminar:
		return true
	}
	return false
}

// TimeOption is one candidate placement from the catalog: a start cell plus a
// duration in consecutive blocks on the same day.
type TimeOption struct {
	Day      int `json:"day"`
	Block    int `json:"block"`
	Duration int `json:"duration"`
}

// Section is one offering of a course. Sections are owned by the catalog and
// referenced by ID; grids only ever hold SectionRef snapshots.
type Section struct {
	ID          int          `json:"id"`
	Code        string       `json:"code,omitempty"`
	Course      string       `json:"course"`
	School      string       `json:"school,omitempty"`
	Teacher     string       `json:"teacher"`
	Room        string       `json:"room,omitempty"`
	Kind        SectionKind  `json:"kind"`
	Capacity    int          `json:"capacity,omitempty"`
	TimeOptions []TimeOption `json:"time_options"`
}

// SectionRef is the denormalized snapshot stored in grid cells so conflict
// checks never need a catalog lookup.
type SectionRef struct {
	ID      int         `json:"id"`
	Course  string      `json:"course"`
	Teacher string      `json:"teacher"`
	Room    string      `json:"room,omitempty"`
	Kind    SectionKind `json:"kind"`
}

// Ref builds the grid snapshot for a section.
func (s Section) Ref() SectionRef {
	return SectionRef{
		ID:      s.ID,
		Course:  s.Course,
		Teacher: s.Teacher,
		Room:    s.Room,
		Kind:    s.Kind,
	}
}

// ProgramRecord is the serialized form of one program-tree node. Children are
// nested in place so a whole tree round-trips as a single document.
type ProgramRecord struct {
	Kind     string          `json:"kind"`
	Children []ProgramRecord `json:"children,omitempty"`
}

// ShapeSummary describes a program tree's structure for lineage and
// diversity diagnostics.
type ShapeSummary struct {
	TotalNodes      int            `json:"total_nodes"`
	Depth           int            `json:"depth"`
	FunctionalCount int            `json:"functional_count"`
	TerminalCount   int            `json:"terminal_count"`
	KindCounts      map[string]int `json:"kind_counts,omitempty"`
}

// LineageRecord traces how one individual entered a run.
type LineageRecord struct {
	VersionedRecord
	ProgramID   string       `json:"program_id"`
	ParentID    string       `json:"parent_id,omitempty"`
	Generation  int          `json:"generation"`
	Operation   string       `json:"operation"`
	Fingerprint string       `json:"fingerprint"`
	Summary     ShapeSummary `json:"summary"`
}

// HistoryPoint is one generation's entry in the convergence history: the
// best-ever fitness seen so far and the population-wide total of teacher and
// room conflict entries.
type HistoryPoint struct {
	Generation    int     `json:"generation"`
	BestFitness   float64 `json:"best_fitness"`
	ConflictCount int     `json:"conflict_count"`
}

// GenerationDiagnostics is the per-generation population summary.
type GenerationDiagnostics struct {
	Generation           int     `json:"generation"`
	BestFitness          float64 `json:"best_fitness"`
	MeanFitness          float64 `json:"mean_fitness"`
	WorstFitness         float64 `json:"worst_fitness"`
	BestEverFitness      float64 `json:"best_ever_fitness"`
	TeacherConflicts     int     `json:"teacher_conflicts"`
	RoomConflicts        int     `json:"room_conflicts"`
	OverloadedTeachers   int     `json:"overloaded_teachers"`
	FingerprintDiversity int     `json:"fingerprint_diversity"`
}

// TopProgramRecord is one entry of a run's final leaderboard.
type TopProgramRecord struct {
	VersionedRecord
	Rank    int           `json:"rank"`
	Fitness float64       `json:"fitness"`
	Program ProgramRecord `json:"program"`
}

// CellRecord is one occupied grid cell in a persisted schedule.
type CellRecord struct {
	Day     int         `json:"day"`
	Block   int         `json:"block"`
	ID      int         `json:"id"`
	Course  string      `json:"course"`
	Teacher string      `json:"teacher"`
	Room    string      `json:"room,omitempty"`
	Kind    SectionKind `json:"kind"`
}

// ScheduleRecord is the best final grid of a run, flattened to occupied cells.
type ScheduleRecord struct {
	VersionedRecord
	RunID   string       `json:"run_id"`
	Fitness float64      `json:"fitness"`
	Cells   []CellRecord `json:"cells"`
}

// ScenarioSummary aggregates the best result observed for a named scenario.
type ScenarioSummary struct {
	VersionedRecord
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BestFitness float64 `json:"best_fitness"`
	BestRunID   string  `json:"best_run_id,omitempty"`
}
