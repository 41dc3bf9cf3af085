package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horarium/internal/model"
	"horarium/internal/timetable"
)

func sampleGrid(t *testing.T) *timetable.Grid {
	t.Helper()
	g := timetable.NewGrid()
	require.True(t, g.Place(0, 0, model.SectionRef{
		ID: 1, Course: "Calculo I", Teacher: "GARCIA", Kind: model.KindLecture,
	}))
	require.True(t, g.Place(1, 7, model.SectionRef{
		ID: 4, Course: "Programacion I Lab", Teacher: "LOPEZ", Room: "LAB 12", Kind: model.KindLab,
	}))
	return g
}

func TestScheduleCSVMatrix(t *testing.T) {
	raw, err := ScheduleCSV(sampleGrid(t))
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, timetable.BlocksPerDay+1)

	assert.Equal(t, []string{"Time", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, rows[0])
	assert.Equal(t, "7:00 - 8:00", rows[1][0])
	assert.Equal(t, "Calculo I - GARCIA", rows[1][1])
	assert.Equal(t, "Programacion I Lab - LOPEZ @ LAB 12", rows[8][2])
	assert.Empty(t, rows[1][2])
}

func TestScheduleCSVJoinsStackedCells(t *testing.T) {
	g := sampleGrid(t)
	require.True(t, g.Stack(0, 0, model.SectionRef{
		ID: 2, Course: "Fisica I", Teacher: "MARTINEZ", Kind: model.KindLecture,
	}))

	raw, err := ScheduleCSV(g)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Calculo I - GARCIA; Fisica I - MARTINEZ", rows[1][1])
}

func TestScheduleCSVNilGrid(t *testing.T) {
	_, err := ScheduleCSV(nil)
	require.Error(t, err)
}

func TestHistoryCSV(t *testing.T) {
	raw, err := HistoryCSV([]model.HistoryPoint{
		{Generation: 0, BestFitness: 412.5, ConflictCount: 3},
		{Generation: 1, BestFitness: 180, ConflictCount: 1},
	})
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"generation", "best_fitness", "conflicts"}, rows[0])
	assert.Equal(t, []string{"0", "412.5", "3"}, rows[1])
	assert.Equal(t, []string{"1", "180", "1"}, rows[2])
}

func TestScheduleTextLayout(t *testing.T) {
	text, err := ScheduleText(sampleGrid(t), "basic run")
	require.NoError(t, err)

	assert.Contains(t, text, "BASIC RUN")
	assert.Contains(t, text, "Monday")
	assert.Contains(t, text, "7:00")
	assert.Contains(t, text, "Calculo I")
	assert.Contains(t, text, "---")
	assert.Contains(t, text, "Occupied blocks: 2")
	assert.Contains(t, text, "Day loads: Monday 1, Tuesday 1, Wednesday 0, Thursday 0, Friday 0")

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	// Title, rule, header, rule, 14 block rows, rule, 2 footer lines.
	require.Len(t, lines, 6+timetable.BlocksPerDay)
	assert.True(t, strings.HasPrefix(lines[1], "===="))
}

func TestScheduleTextTruncatesLongCourses(t *testing.T) {
	g := timetable.NewGrid()
	require.True(t, g.Place(2, 3, model.SectionRef{
		ID: 9, Course: "Arquitectura de Computadoras", Teacher: "TORRES", Kind: model.KindLecture,
	}))

	text, err := ScheduleText(g, "")
	require.NoError(t, err)
	assert.Contains(t, text, "Arquitectura ...")
	assert.NotContains(t, text, "Arquitectura de Computadoras")
	assert.Contains(t, text, strings.ToUpper(DefaultTitle))
}

func TestSchedulePDFRendersDocument(t *testing.T) {
	raw, err := SchedulePDF(sampleGrid(t), "basic run")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")), "missing pdf magic")
	assert.Greater(t, len(raw), 1000)
}

func TestSchedulePDFNilGrid(t *testing.T) {
	_, err := SchedulePDF(nil, "")
	require.Error(t, err)
}

func TestWriteHelpersCreateFiles(t *testing.T) {
	dir := t.TempDir()
	g := sampleGrid(t)
	history := []model.HistoryPoint{{Generation: 0, BestFitness: 100, ConflictCount: 0}}

	require.NoError(t, WriteScheduleCSV(filepath.Join(dir, "schedule.csv"), g))
	require.NoError(t, WriteScheduleText(filepath.Join(dir, "schedule.txt"), g, "basic"))
	require.NoError(t, WriteSchedulePDF(filepath.Join(dir, "schedule.pdf"), g, "basic"))
	require.NoError(t, WriteHistoryCSV(filepath.Join(dir, "history.csv"), history))

	for _, name := range []string{"schedule.csv", "schedule.txt", "schedule.pdf", "history.csv"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}
