package stats

import (
	"fmt"
	"sort"
	"strings"

	"horarium/internal/model"
	"horarium/internal/timetable"
)

// Severity classifies a weighted conflict score.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

const (
	mildCeiling     = 50
	moderateCeiling = 200
)

// ClassifySeverity maps a conflict score onto a severity band: zero is none,
// up to 50 mild, up to 200 moderate, anything above severe.
func ClassifySeverity(score float64) Severity {
	switch {
	case score == 0:
		return SeverityNone
	case score <= mildCeiling:
		return SeverityMild
	case score <= moderateCeiling:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

// ConflictAnalysis is the severity summary of one conflict report.
type ConflictAnalysis struct {
	TotalConflicts  int      `json:"total_conflicts"`
	Score           float64  `json:"score"`
	Severity        Severity `json:"severity"`
	Recommendations []string `json:"recommendations"`
}

// AnalyzeReport scores and classifies a conflict report.
func AnalyzeReport(report timetable.Report) ConflictAnalysis {
	analysis := ConflictAnalysis{
		TotalConflicts: report.TotalEntries(),
		Score:          report.Score(),
	}
	analysis.Severity = ClassifySeverity(analysis.Score)
	analysis.Recommendations = recommendations(analysis.Severity)
	return analysis
}

func recommendations(severity Severity) []string {
	switch severity {
	case SeverityNone:
		return []string{"schedule is conflict-free"}
	case SeverityMild:
		return []string{
			"minor conflicts detected",
			"review overloaded teachers",
			"an additional optimization pass is recommended",
		}
	case SeverityModerate:
		return []string{
			"significant conflicts detected",
			"resolve teacher and room conflicts first",
			"redistribute the weekly load",
			"run more generations",
		}
	default:
		return []string{
			"severe conflicts require immediate attention",
			"review the catalog for inconsistent data",
			"reduce the number of selected sections",
			"verify teacher and room availability",
		}
	}
}

// ScheduleMetrics summarizes the shape of a finished schedule.
type ScheduleMetrics struct {
	OccupiedBlocks    int                 `json:"occupied_blocks"`
	AssignedSections  int                 `json:"assigned_sections"`
	IdleBlocks        int                 `json:"idle_blocks"`
	CompactionPenalty int                 `json:"compaction_penalty"`
	LoadVariance      float64             `json:"load_variance"`
	DayLoads          [timetable.Days]int `json:"day_loads"`
	TeacherLoads      map[string]int      `json:"teacher_loads"`
}

// ComputeScheduleMetrics reads every reported metric off a grid.
func ComputeScheduleMetrics(grid *timetable.Grid) ScheduleMetrics {
	metrics := ScheduleMetrics{
		OccupiedBlocks:    grid.OccupiedBlocks(),
		AssignedSections:  grid.AssignedCount(),
		IdleBlocks:        grid.IdleBlocks(),
		CompactionPenalty: grid.CompactionPenalty(),
		LoadVariance:      grid.LoadVariance(),
		TeacherLoads:      map[string]int{},
	}
	for day := 0; day < timetable.Days; day++ {
		metrics.DayLoads[day] = grid.DayLoad(day)
	}
	grid.ForEach(func(_, _ int, ref model.SectionRef) {
		metrics.TeacherLoads[ref.Teacher]++
	})
	return metrics
}

// RenderScheduleReport renders the conflict report, its severity analysis and
// the schedule metrics as plain text.
func RenderScheduleReport(report timetable.Report, metrics ScheduleMetrics) string {
	var b strings.Builder

	b.WriteString("CONFLICT REPORT\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")
	if report.TotalEntries() == 0 {
		b.WriteString("No conflicts found in the schedule.\n")
	} else {
		fmt.Fprintf(&b, "Total conflicts: %d\n", report.TotalEntries())
		writeTeacherConflicts(&b, report.Teacher)
		writeRoomConflicts(&b, report.Room)
		writeOverloads(&b, report.Overload)
	}

	analysis := AnalyzeReport(report)
	b.WriteString("\nSEVERITY ANALYSIS\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&b, "Score: %.0f\n", analysis.Score)
	fmt.Fprintf(&b, "Severity: %s\n", analysis.Severity)
	b.WriteString("Recommendations:\n")
	for i, recommendation := range analysis.Recommendations {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, recommendation)
	}

	b.WriteString("\nSCHEDULE METRICS\n")
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&b, "Occupied blocks:    %d\n", metrics.OccupiedBlocks)
	fmt.Fprintf(&b, "Assigned sections:  %d\n", metrics.AssignedSections)
	fmt.Fprintf(&b, "Idle blocks:        %d\n", metrics.IdleBlocks)
	fmt.Fprintf(&b, "Compaction penalty: %d\n", metrics.CompactionPenalty)
	fmt.Fprintf(&b, "Load variance:      %.2f\n", metrics.LoadVariance)
	for day := 0; day < timetable.Days; day++ {
		fmt.Fprintf(&b, "  %-10s %d\n", timetable.DayNames[day], metrics.DayLoads[day])
	}
	if len(metrics.TeacherLoads) > 0 {
		b.WriteString("Teacher loads:\n")
		teachers := make([]string, 0, len(metrics.TeacherLoads))
		for teacher := range metrics.TeacherLoads {
			teachers = append(teachers, teacher)
		}
		sort.Strings(teachers)
		for _, teacher := range teachers {
			fmt.Fprintf(&b, "  %-10s %d\n", teacher, metrics.TeacherLoads[teacher])
		}
	}

	return b.String()
}

func writeTeacherConflicts(b *strings.Builder, conflicts []timetable.TeacherConflict) {
	if len(conflicts) == 0 {
		return
	}
	fmt.Fprintf(b, "\nTEACHER CONFLICTS (%d)\n", len(conflicts))
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for i, conflict := range conflicts {
		fmt.Fprintf(b, "%d. Teacher: %s\n", i+1, conflict.Teacher)
		// Blocks display one-based.
		fmt.Fprintf(b, "   Day: %s, Block: %d\n", dayName(conflict.Day), conflict.Block+1)
		if len(conflict.Courses) > 0 {
			fmt.Fprintf(b, "   Courses: %s\n", strings.Join(conflict.Courses, ", "))
		}
	}
}

func writeRoomConflicts(b *strings.Builder, conflicts []timetable.RoomConflict) {
	if len(conflicts) == 0 {
		return
	}
	fmt.Fprintf(b, "\nROOM CONFLICTS (%d)\n", len(conflicts))
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for i, conflict := range conflicts {
		fmt.Fprintf(b, "%d. Room: %s\n", i+1, conflict.Room)
		fmt.Fprintf(b, "   Day: %s, Block: %d\n", dayName(conflict.Day), conflict.Block+1)
		if len(conflict.Courses) > 0 {
			fmt.Fprintf(b, "   Courses: %s\n", strings.Join(conflict.Courses, ", "))
		}
	}
}

func writeOverloads(b *strings.Builder, overloads []timetable.Overload) {
	if len(overloads) == 0 {
		return
	}
	fmt.Fprintf(b, "\nOVERLOADED TEACHERS (%d)\n", len(overloads))
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for i, overload := range overloads {
		fmt.Fprintf(b, "%d. Teacher: %s\n", i+1, overload.Teacher)
		fmt.Fprintf(b, "   Weekly blocks: %d\n", overload.Blocks)
	}
}

func dayName(day int) string {
	if day >= 0 && day < timetable.Days {
		return timetable.DayNames[day]
	}
	return fmt.Sprintf("Day %d", day)
}
