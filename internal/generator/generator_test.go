package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horarium/internal/model"
	"horarium/internal/timetable"
)

func TestBasicCatalogShape(t *testing.T) {
	c := Basic()
	require.Equal(t, 15, c.Len())

	for id := 1; id <= 15; id++ {
		_, ok := c.Section(id)
		assert.True(t, ok, "missing section %d", id)
	}

	calc, _ := c.Section(1)
	assert.Equal(t, "Calculo I", calc.Course)
	assert.Equal(t, "Garcia", calc.Teacher)
	assert.Equal(t, model.KindLecture, calc.Kind)
	require.Len(t, calc.TimeOptions, 2)
	assert.Equal(t, model.TimeOption{Day: 0, Block: 0, Duration: 2}, calc.TimeOptions[0])

	lab, _ := c.Section(4)
	assert.Equal(t, "Programacion I Lab", lab.Course)
	assert.Equal(t, model.KindLab, lab.Kind)
	require.Len(t, lab.TimeOptions, 1)
	assert.Equal(t, model.TimeOption{Day: 1, Block: 7, Duration: 3}, lab.TimeOptions[0])
}

func TestBasicMasterGridIsConflictFree(t *testing.T) {
	report := timetable.Validator{}.Detect(Basic().MasterGrid())
	assert.Zero(t, report.TotalEntries(), "fixture placements must be disjoint: %+v", report)
}

func TestAdvancedDeterministicUnderSeed(t *testing.T) {
	a, err := Advanced(Config{Seed: 42})
	require.NoError(t, err)
	b, err := Advanced(Config{Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, a.Sections(), b.Sections())

	c, err := Advanced(Config{Seed: 43})
	require.NoError(t, err)
	assert.NotEqual(t, a.Sections(), c.Sections())
}

func TestAdvancedCountsAndSchools(t *testing.T) {
	c, err := Advanced(Config{Seed: 7, SectionsPerSchool: 4})
	require.NoError(t, err)

	assert.Equal(t, 20, c.Len())
	assert.Equal(t, []string{"BF", "CF", "CM", "CQ", "CC"}, c.Schools())

	for i, s := range c.Sections() {
		assert.Equal(t, i+1, s.ID, "ids must be sequential")
	}
}

func TestAdvancedSectionShapes(t *testing.T) {
	c, err := Advanced(Config{Seed: 99})
	require.NoError(t, err)

	labRoomSet := map[string]bool{}
	for _, r := range labRooms {
		labRoomSet[r] = true
	}
	lectureRoomSet := map[string]bool{}
	for _, r := range lectureRooms {
		lectureRoomSet[r] = true
	}

	for _, s := range c.Sections() {
		assert.True(t, strings.HasPrefix(s.Code, s.School), "code %q school %q", s.Code, s.School)
		assert.Contains(t, s.Code, "_")
		assert.NotEmpty(t, s.Teacher)

		switch s.Kind {
		case model.KindLab:
			assert.True(t, strings.HasSuffix(s.Course, " LAB"), "lab course %q", s.Course)
			assert.True(t, labRoomSet[s.Room], "lab room %q", s.Room)
			assert.GreaterOrEqual(t, s.Capacity, 15)
			assert.LessOrEqual(t, s.Capacity, 25)
			require.Len(t, s.TimeOptions, 1)
			opt := s.TimeOptions[0]
			assert.LessOrEqual(t, opt.Block, 10)
			assert.Contains(t, []int{3, 4}, opt.Duration)
		case model.KindLecture:
			assert.True(t, lectureRoomSet[s.Room], "lecture room %q", s.Room)
			assert.GreaterOrEqual(t, s.Capacity, 25)
			assert.LessOrEqual(t, s.Capacity, 50)
			require.Len(t, s.TimeOptions, 2)
			assert.NotEqual(t, s.TimeOptions[0].Day, s.TimeOptions[1].Day, "lecture sessions share a day")
			for _, opt := range s.TimeOptions {
				assert.LessOrEqual(t, opt.Block, 12)
				assert.Equal(t, 2, opt.Duration)
			}
		default:
			t.Fatalf("unexpected kind %q", s.Kind)
		}

		for _, opt := range s.TimeOptions {
			assert.True(t, timetable.InBounds(opt.Day, opt.Block), "option %+v", opt)
			assert.True(t, timetable.InBounds(opt.Day, opt.Block+opt.Duration-1), "option runs past the day: %+v", opt)
		}
	}
}

func TestAdvancedCustomSchools(t *testing.T) {
	c, err := Advanced(Config{
		Seed:              1,
		SectionsPerSchool: 3,
		Schools: []School{{
			Code:     "XX",
			Courses:  []string{"TOPOLOGIA"},
			Teachers: []string{"BLANCO"},
		}},
	})
	require.NoError(t, err)

	require.Equal(t, 3, c.Len())
	for _, s := range c.Sections() {
		assert.Equal(t, "XX", s.School)
		assert.Equal(t, "BLANCO", s.Teacher)
		assert.True(t, strings.HasPrefix(s.Course, "TOPOLOGIA"))
	}
}

func TestAdvancedRejectsBadConfig(t *testing.T) {
	_, err := Advanced(Config{SectionsPerSchool: -1})
	require.Error(t, err)

	_, err = Advanced(Config{Schools: []School{{Code: "XX"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "school needs")
}
