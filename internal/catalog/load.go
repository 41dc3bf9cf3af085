package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"horarium/internal/model"
	"horarium/internal/timetable"
)

// Document is the structured JSON catalog layout. It carries full section
// fidelity: rooms, schools, capacities and every time option.
type Document struct {
	Sections []model.Section `json:"sections"`
}

// LoadJSON reads a catalog from the structured JSON layout.
func LoadJSON(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	for _, s := range doc.Sections {
		if err := checkSection(s); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
	}
	return New(doc.Sections...)
}

// WriteJSON writes the catalog in the structured JSON layout.
func WriteJSON(path string, c *Catalog) error {
	raw, err := json.MarshalIndent(Document{Sections: c.Sections()}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	raw = append(raw, '\n')
	return os.WriteFile(path, raw, 0o644)
}

func checkSection(s model.Section) error {
	if s.ID < 1 {
		return fmt.Errorf("section id %d: must be positive", s.ID)
	}
	if s.Course == "" {
		return fmt.Errorf("section %d: missing course", s.ID)
	}
	if s.Teacher == "" {
		return fmt.Errorf("section %d: missing teacher", s.ID)
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("section %d: unknown kind %q", s.ID, s.Kind)
	}
	if len(s.TimeOptions) == 0 {
		return fmt.Errorf("section %d: no time options", s.ID)
	}
	for _, opt := range s.TimeOptions {
		if !timetable.InBounds(opt.Day, opt.Block) {
			return fmt.Errorf("section %d: time option (%d,%d) out of range", s.ID, opt.Day, opt.Block)
		}
		if opt.Duration < 1 {
			return fmt.Errorf("section %d: time option duration %d", s.ID, opt.Duration)
		}
	}
	return nil
}

// LoadCSV reads a catalog from the matrix layout: a header row naming the
// day columns, then one row per block with cells of the form
// "id|course|teacher|kind". Consecutive blocks holding the same section on
// one day fold back into a single time option.
func LoadCSV(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("catalog %s: empty file", path)
	}
	header := rows[0]
	if len(header) != timetable.Days+1 {
		return nil, fmt.Errorf("catalog %s: want %d columns, got %d", path, timetable.Days+1, len(header))
	}
	var dayFor [timetable.Days]int
	for col, name := range header[1:] {
		day, ok := timetable.DayIndex(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("catalog %s: unknown day column %q", path, name)
		}
		dayFor[col] = day
	}
	body := rows[1:]
	if len(body) != timetable.BlocksPerDay {
		return nil, fmt.Errorf("catalog %s: want %d block rows, got %d", path, timetable.BlocksPerDay, len(body))
	}

	var cells [timetable.Days][timetable.BlocksPerDay]*csvCell
	for block, row := range body {
		for col, raw := range row[1:] {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			cell, err := parseCell(raw)
			if err != nil {
				return nil, fmt.Errorf("catalog %s row %d: %w", path, block+2, err)
			}
			cells[dayFor[col]][block] = cell
		}
	}
	return fromCells(cells)
}

type csvCell struct {
	id      int
	course  string
	teacher string
	kind    model.SectionKind
}

func parseCell(raw string) (*csvCell, error) {
	parts := strings.Split(raw, "|")
	if len(parts) != 4 {
		return nil, fmt.Errorf("malformed cell %q", raw)
	}
	id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || id < 1 {
		return nil, fmt.Errorf("malformed cell id %q", parts[0])
	}
	cell := &csvCell{
		id:      id,
		course:  strings.TrimSpace(parts[1]),
		teacher: strings.TrimSpace(parts[2]),
		kind:    model.SectionKind(strings.TrimSpace(parts[3])),
	}
	if cell.course == "" || cell.teacher == "" {
		return nil, fmt.Errorf("malformed cell %q", raw)
	}
	if !cell.kind.Valid() {
		return nil, fmt.Errorf("unknown kind in cell %q", raw)
	}
	return cell, nil
}

// fromCells folds a parsed matrix back into sections. Metadata comes from the
// first cell seen for each ID; runs of consecutive blocks become one option.
func fromCells(cells [timetable.Days][timetable.BlocksPerDay]*csvCell) (*Catalog, error) {
	sections := make(map[int]*model.Section)
	var order []int
	for day := 0; day < timetable.Days; day++ {
		block := 0
		for block < timetable.BlocksPerDay {
			info := cells[day][block]
			if info == nil {
				block++
				continue
			}
			start := block
			for block < timetable.BlocksPerDay && cells[day][block] != nil && cells[day][block].id == info.id {
				block++
			}
			s, seen := sections[info.id]
			if !seen {
				s = &model.Section{
					ID:      info.id,
					Course:  info.course,
					Teacher: info.teacher,
					Kind:    info.kind,
				}
				sections[info.id] = s
				order = append(order, info.id)
			}
			s.TimeOptions = append(s.TimeOptions, model.TimeOption{
				Day:      day,
				Block:    start,
				Duration: block - start,
			})
		}
	}
	list := make([]model.Section, 0, len(order))
	for _, id := range order {
		list = append(list, *sections[id])
	}
	return New(list...)
}

// WriteCSV writes the catalog in the matrix layout. Overlapping time options
// collide in this format; the first section placed keeps the cell, so the
// matrix is lossy for overlapping catalogs.
func WriteCSV(path string, c *Catalog) error {
	var cells [timetable.Days][timetable.BlocksPerDay]string
	for _, s := range c.sections {
		value := fmt.Sprintf("%d|%s|%s|%s", s.ID, s.Course, s.Teacher, s.Kind)
		for _, opt := range s.TimeOptions {
			duration := opt.Duration
			if duration < 1 {
				duration = 1
			}
			for i := 0; i < duration; i++ {
				block := opt.Block + i
				if !timetable.InBounds(opt.Day, block) {
					break
				}
				if cells[opt.Day][block] == "" {
					cells[opt.Day][block] = value
				}
			}
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(append([]string{"Time"}, timetable.DayNames[:]...))
	for block := 0; block < timetable.BlocksPerDay; block++ {
		row := make([]string, 0, timetable.Days+1)
		row = append(row, timetable.BlockLabel(block))
		for day := 0; day < timetable.Days; day++ {
			row = append(row, cells[day][block])
		}
		w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
