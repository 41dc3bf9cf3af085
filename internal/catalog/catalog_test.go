package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horarium/internal/model"
	"horarium/internal/timetable"
)

func section(id int, course, teacher string, kind model.SectionKind, opts ...model.TimeOption) model.Section {
	return model.Section{
		ID:          id,
		Course:      course,
		Teacher:     teacher,
		Kind:        kind,
		TimeOptions: opts,
	}
}

func opt(day, block, duration int) model.TimeOption {
	return model.TimeOption{Day: day, Block: block, Duration: duration}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New(
		section(1, "Calculo I", "Garcia", model.KindLecture, opt(0, 0, 2)),
		section(1, "Fisica I", "Martinez", model.KindLecture, opt(0, 2, 2)),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate section id 1")
}

func TestSectionLookup(t *testing.T) {
	c, err := New(
		section(1, "Calculo I", "Garcia", model.KindLecture, opt(0, 0, 2)),
		section(7, "Fisica I", "Martinez", model.KindLecture, opt(0, 2, 2)),
	)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	s, ok := c.Section(7)
	require.True(t, ok)
	assert.Equal(t, "Fisica I", s.Course)

	_, ok = c.Section(99)
	assert.False(t, ok)
}

func TestSchoolsFirstSeenOrder(t *testing.T) {
	a := section(1, "Calculo I", "Garcia", model.KindLecture, opt(0, 0, 2))
	a.School = "CF"
	b := section(2, "Biologia", "Rivera", model.KindLecture, opt(0, 2, 2))
	b.School = "CC"
	d := section(3, "Fisica I", "Martinez", model.KindLecture, opt(0, 4, 2))
	d.School = "CF"
	e := section(4, "Algebra", "Gomez", model.KindLecture, opt(0, 6, 2))

	c, err := New(a, b, d, e)
	require.NoError(t, err)
	assert.Equal(t, []string{"CF", "CC"}, c.Schools())
}

func TestMasterGridExpandsDurations(t *testing.T) {
	c, err := New(
		section(1, "Programacion I Lab", "Lopez", model.KindLab, opt(1, 7, 3)),
		section(2, "Calculo I", "Garcia", model.KindLecture, opt(0, 0, 2), opt(2, 0, 2)),
	)
	require.NoError(t, err)

	master := c.MasterGrid()
	assert.Equal(t, 7, master.AssignedCount())
	for block := 7; block <= 9; block++ {
		ref, ok := master.At(1, block)
		require.True(t, ok, "lab block %d", block)
		assert.Equal(t, 1, ref.ID)
	}
	ref, ok := master.At(2, 1)
	require.True(t, ok)
	assert.Equal(t, 2, ref.ID)
}

func TestMasterGridClipsAtLastBlock(t *testing.T) {
	c, err := New(section(1, "Seminario", "Vega", model.KindSeminar, opt(0, 12, 4)))
	require.NoError(t, err)
	assert.Equal(t, 2, c.MasterGrid().AssignedCount())
}

func TestMasterGridStacksOverlaps(t *testing.T) {
	c, err := New(
		section(1, "Calculo I", "Garcia", model.KindLecture, opt(0, 0, 2)),
		section(2, "Fisica I", "Martinez", model.KindLecture, opt(0, 1, 2)),
	)
	require.NoError(t, err)

	master := c.MasterGrid()
	stack := master.SectionsAt(0, 1)
	require.Len(t, stack, 2)
	assert.Equal(t, 1, stack[0].ID)
	assert.Equal(t, 2, stack[1].ID)
}

func selectionCatalog(t *testing.T) *Catalog {
	t.Helper()
	sections := []model.Section{
		section(1, "Calculo I", "Garcia", model.KindLecture, opt(0, 0, 2)),
		section(2, "Fisica I", "Martinez", model.KindLecture, opt(0, 2, 2)),
		section(3, "Programacion I", "Lopez", model.KindLecture, opt(1, 0, 2)),
		section(5, "Algebra Lineal", "Gomez", model.KindLecture, opt(1, 2, 2)),
		section(9, "Estadistica", "Ramirez", model.KindLecture, opt(2, 0, 2)),
	}
	schools := []string{"BF", "BF", "CF", "CF", "CM"}
	for i := range sections {
		sections[i].School = schools[i]
	}
	c, err := New(sections...)
	require.NoError(t, err)
	return c
}

func TestParseSelectionAll(t *testing.T) {
	c := selectionCatalog(t)
	ids, err := c.ParseSelection("all")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 5, 9}, ids)
}

func TestParseSelectionIDsAndRanges(t *testing.T) {
	c := selectionCatalog(t)

	ids, err := c.ParseSelection("9, 1")
	require.NoError(t, err)
	assert.Equal(t, []int{9, 1}, ids)

	ids, err = c.ParseSelection("2-5")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 5}, ids)
}

func TestParseSelectionSchoolCaseInsensitive(t *testing.T) {
	c := selectionCatalog(t)
	ids, err := c.ParseSelection("cf")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5}, ids)
}

func TestParseSelectionDeduplicates(t *testing.T) {
	c := selectionCatalog(t)
	ids, err := c.ParseSelection("3, all, 1")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2, 5, 9}, ids)
}

func TestParseSelectionSkipsEmptyTokens(t *testing.T) {
	c := selectionCatalog(t)
	ids, err := c.ParseSelection("1, ,2,")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)
}

func TestParseSelectionErrors(t *testing.T) {
	c := selectionCatalog(t)
	for _, expr := range []string{"zz", "99", "1-x", "QQ"} {
		_, err := c.ParseSelection(expr)
		assert.Error(t, err, "expression %q", expr)
	}
}

func TestParseSelectionAuto(t *testing.T) {
	sections := make([]model.Section, 0, 10)
	for i := 1; i <= 8; i++ {
		s := section(i, "Curso BF", "Garcia", model.KindLecture, opt(0, 0, 1))
		s.School = "BF"
		sections = append(sections, s)
	}
	for i := 9; i <= 10; i++ {
		s := section(i, "Curso CF", "Diaz", model.KindLecture, opt(1, 0, 1))
		s.School = "CF"
		sections = append(sections, s)
	}
	c, err := New(sections...)
	require.NoError(t, err)

	ids, err := c.ParseSelection("auto")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 9, 10}, ids)
}

func TestJSONRoundTrip(t *testing.T) {
	full := section(4, "Programacion I Lab", "Lopez", model.KindLab, opt(1, 7, 3))
	full.Code = "BF04_A"
	full.School = "BF"
	full.Room = "LAB F"
	full.Capacity = 18

	c, err := New(
		section(1, "Calculo I", "Garcia", model.KindLecture, opt(0, 0, 2), opt(2, 0, 2)),
		full,
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, WriteJSON(path, c))

	loaded, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, c.Sections(), loaded.Sections())
}

func TestLoadJSONRejectsBadSections(t *testing.T) {
	cases := map[string]string{
		"bad kind":     `{"sections":[{"id":1,"course":"X","teacher":"Y","kind":"studio","time_options":[{"day":0,"block":0,"duration":1}]}]}`,
		"no options":   `{"sections":[{"id":1,"course":"X","teacher":"Y","kind":"lecture","time_options":[]}]}`,
		"out of range": `{"sections":[{"id":1,"course":"X","teacher":"Y","kind":"lecture","time_options":[{"day":5,"block":0,"duration":1}]}]}`,
		"zero id":      `{"sections":[{"id":0,"course":"X","teacher":"Y","kind":"lecture","time_options":[{"day":0,"block":0,"duration":1}]}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadJSON(path)
			assert.Error(t, err)
		})
	}
}

func TestCSVRoundTrip(t *testing.T) {
	c, err := New(
		section(1, "Calculo I", "Garcia", model.KindLecture, opt(0, 0, 2), opt(2, 0, 2)),
		section(2, "Programacion I Lab", "Lopez", model.KindLab, opt(1, 7, 3)),
		section(3, "Fisica I", "Martinez", model.KindLecture, opt(0, 2, 2), opt(3, 2, 2)),
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, WriteCSV(path, c))

	loaded, err := LoadCSV(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, c.Sections(), loaded.Sections())
}

func TestWriteCSVKeepsFirstOnOverlap(t *testing.T) {
	c, err := New(
		section(1, "Calculo I", "Garcia", model.KindLecture, opt(0, 0, 1)),
		section(2, "Fisica I", "Martinez", model.KindLecture, opt(0, 0, 1)),
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, WriteCSV(path, c))

	loaded, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	s, ok := loaded.Section(1)
	require.True(t, ok)
	assert.Equal(t, "Garcia", s.Teacher)
}

func TestLoadCSVRejectsMalformedFiles(t *testing.T) {
	const header = "Time,Monday,Tuesday,Wednesday,Thursday,Friday"
	matrix := func(cell string) string {
		rows := []string{header}
		for block := 0; block < 14; block++ {
			value := ""
			if block == 0 {
				value = cell
			}
			rows = append(rows, timetable.BlockLabel(block)+","+value+",,,,")
		}
		return strings.Join(rows, "\n") + "\n"
	}

	cases := map[string]string{
		"bad day header": "Time,Lunes,Tuesday,Wednesday,Thursday,Friday\n",
		"short body":     header + "\n" + timetable.BlockLabel(0) + ",,,,,\n",
		"bad cell":       matrix("1|Calculo"),
		"bad kind":       matrix("1|Calculo|Garcia|studio"),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.csv")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadCSV(path)
			assert.Error(t, err)
		})
	}
}
