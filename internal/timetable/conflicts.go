package timetable

import "horarium/internal/model"

// Placement pins one section reference to a grid coordinate. Placement lists
// are the validator's generic input: a grid flattens to one placement per
// stack entry, and catalog cross-checks build the lists directly.
type Placement struct {
	Day   int
	Block int
	Ref   model.SectionRef
}

// DefaultOverloadLimit is the weekly block count a teacher may carry before
// being reported as overloaded.
const DefaultOverloadLimit = 20

// Conflict score weights. Teacher conflicts dominate because a double-booked
// teacher is the least repairable failure.
const (
	teacherWeight  = 100
	roomWeight     = 80
	studentWeight  = 60
	overloadWeight = 20
)

// TeacherConflict is one duplicate-teacher occurrence inside a (day, block)
// group. Courses lists every course the teacher holds in that group.
type TeacherConflict struct {
	Day     int
	Block   int
	Teacher string
	Courses []string
}

// RoomConflict is one duplicate-room occurrence inside a (day, block) group.
type RoomConflict struct {
	Day     int
	Block   int
	Room    string
	Courses []string
}

// StudentConflict is reserved: the category participates in scoring but the
// detector never fills it.
type StudentConflict struct {
	Day     int
	Block   int
	Courses []string
}

// Overload reports a teacher whose weekly block total exceeds the limit.
type Overload struct {
	Teacher string
	Blocks  int
}

// Report is the categorized result of one detection pass. It is recomputed
// fresh on every query and never maintained incrementally.
type Report struct {
	Teacher  []TeacherConflict
	Room     []RoomConflict
	Student  []StudentConflict
	Overload []Overload
}

// Score collapses the report into a single penalty: teacher entries weigh
// 100, room 80, student 60, overload 20.
func (r Report) Score() float64 {
	return float64(len(r.Teacher)*teacherWeight +
		len(r.Room)*roomWeight +
		len(r.Student)*studentWeight +
		len(r.Overload)*overloadWeight)
}

// HasHardConflicts reports whether any teacher or room conflicts remain.
func (r Report) HasHardConflicts() bool {
	return len(r.Teacher) > 0 || len(r.Room) > 0
}

// TotalEntries is the number of entries across every category.
func (r Report) TotalEntries() int {
	return len(r.Teacher) + len(r.Room) + len(r.Student) + len(r.Overload)
}

// Validator detects scheduling conflicts. The zero value applies
// DefaultOverloadLimit.
type Validator struct {
	OverloadLimit int
}

func (v Validator) limit() int {
	if v.OverloadLimit > 0 {
		return v.OverloadLimit
	}
	return DefaultOverloadLimit
}

// Detect recomputes the full conflict report for a grid.
func (v Validator) Detect(g *Grid) Report {
	return v.DetectPlacements(g.Placements())
}

// DetectPlacements groups placements by (day, block) and walks each group
// with seen-sets, reporting one teacher entry per duplicate teacher
// occurrence and one room entry per duplicate room occurrence. Empty rooms
// never conflict. Teachers whose total placement count exceeds the weekly
// limit are reported once each. Entry order follows first occurrence in the
// input, so detection is deterministic for a fixed placement order.
func (v Validator) DetectPlacements(placements []Placement) Report {
	var report Report

	type cellKey struct{ day, block int }
	index := make(map[cellKey]int)
	var keys []cellKey
	var groups [][]model.SectionRef
	for _, p := range placements {
		key := cellKey{p.Day, p.Block}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			keys = append(keys, key)
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], p.Ref)
	}

	for i, key := range keys {
		if len(groups[i]) > 1 {
			analyzeGroup(key.day, key.block, groups[i], &report)
		}
	}

	loads := make(map[string]int)
	var teachers []string
	for _, p := range placements {
		if _, ok := loads[p.Ref.Teacher]; !ok {
			teachers = append(teachers, p.Ref.Teacher)
		}
		loads[p.Ref.Teacher]++
	}
	for _, teacher := range teachers {
		if loads[teacher] > v.limit() {
			report.Overload = append(report.Overload, Overload{Teacher: teacher, Blocks: loads[teacher]})
		}
	}

	return report
}

func analyzeGroup(day, block int, refs []model.SectionRef, report *Report) {
	seenTeachers := make(map[string]bool)
	seenRooms := make(map[string]bool)

	for _, ref := range refs {
		if seenTeachers[ref.Teacher] {
			report.Teacher = append(report.Teacher, TeacherConflict{
				Day:     day,
				Block:   block,
				Teacher: ref.Teacher,
				Courses: coursesMatching(refs, func(r model.SectionRef) bool { return r.Teacher == ref.Teacher }),
			})
		}
		seenTeachers[ref.Teacher] = true

		if ref.Room == "" {
			continue
		}
		if seenRooms[ref.Room] {
			report.Room = append(report.Room, RoomConflict{
				Day:     day,
				Block:   block,
				Room:    ref.Room,
				Courses: coursesMatching(refs, func(r model.SectionRef) bool { return r.Room == ref.Room }),
			})
		}
		seenRooms[ref.Room] = true
	}
}

func coursesMatching(refs []model.SectionRef, match func(model.SectionRef) bool) []string {
	var courses []string
	for _, ref := range refs {
		if match(ref) {
			courses = append(courses, ref.Course)
		}
	}
	return courses
}
