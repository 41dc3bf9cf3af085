// Package catalog owns the section catalog: construction, structured
// loading, master-grid expansion, and selection expressions.
package catalog

import (
	"fmt"

	"github.com/samber/lo"

	"horarium/internal/model"
	"horarium/internal/timetable"
)

// Catalog is an ordered collection of sections with unique IDs.
type Catalog struct {
	sections []model.Section
	byID     map[int]int
}

// New builds a catalog from sections. Duplicate IDs are rejected.
func New(sections ...model.Section) (*Catalog, error) {
	c := &Catalog{byID: make(map[int]int, len(sections))}
	for _, s := range sections {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends one section, rejecting duplicate IDs.
func (c *Catalog) Add(s model.Section) error {
	if _, exists := c.byID[s.ID]; exists {
		return fmt.Errorf("duplicate section id %d (%s)", s.ID, s.Course)
	}
	c.byID[s.ID] = len(c.sections)
	c.sections = append(c.sections, s)
	return nil
}

// Len is the number of sections.
func (c *Catalog) Len() int {
	return len(c.sections)
}

// Sections returns the sections in catalog order.
func (c *Catalog) Sections() []model.Section {
	out := make([]model.Section, len(c.sections))
	copy(out, c.sections)
	return out
}

// Section looks a section up by ID.
func (c *Catalog) Section(id int) (model.Section, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Section{}, false
	}
	return c.sections[i], true
}

// Schools lists the distinct non-empty schools in first-seen order.
func (c *Catalog) Schools() []string {
	return lo.Uniq(lo.FilterMap(c.sections, func(s model.Section, _ int) (string, bool) {
		return s.School, s.School != ""
	}))
}

// MasterGrid expands every section's time options onto the weekly
// coordinate space: an option with duration d starting at (day, b) occupies
// cells b through b+d-1, clipped at the last block. Overlapping options
// stack, so the expansion is lossless for conflict cross-checks and the
// schedule builder.
func (c *Catalog) MasterGrid() *timetable.Grid {
	master := timetable.NewGrid()
	for _, s := range c.sections {
		ref := s.Ref()
		for _, opt := range s.TimeOptions {
			duration := opt.Duration
			if duration < 1 {
				duration = 1
			}
			for i := 0; i < duration; i++ {
				if !master.Stack(opt.Day, opt.Block+i, ref) {
					break
				}
			}
		}
	}
	return master
}
