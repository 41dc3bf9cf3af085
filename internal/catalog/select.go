package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"horarium/internal/model"
)

// autoPerSchool caps how many sections "auto" takes from each school.
const autoPerSchool = 6

// ParseSelection resolves a comma-separated selection expression against the
// catalog. Tokens:
//
//	all         every section
//	auto        up to six sections per school, schools in first-seen order
//	7           a single section ID, which must exist
//	12-20       an inclusive ID range, filtered to existing sections
//	CF          a school name, matched case-insensitively
//
// Duplicates collapse keeping the first occurrence. Any other token is an
// error.
func (c *Catalog) ParseSelection(expr string) ([]int, error) {
	var ids []int
	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		resolved, err := c.resolveToken(token)
		if err != nil {
			return nil, err
		}
		ids = append(ids, resolved...)
	}
	return lo.Uniq(ids), nil
}

func (c *Catalog) resolveToken(token string) ([]int, error) {
	switch strings.ToLower(token) {
	case "all":
		return lo.Map(c.sections, func(s model.Section, _ int) int { return s.ID }), nil
	case "auto":
		return c.autoSelect(), nil
	}
	if id, err := strconv.Atoi(token); err == nil {
		if _, ok := c.byID[id]; !ok {
			return nil, fmt.Errorf("selection id %d not in catalog", id)
		}
		return []int{id}, nil
	}
	if from, to, ok := parseRange(token); ok {
		var ids []int
		for id := from; id <= to; id++ {
			if _, exists := c.byID[id]; exists {
				ids = append(ids, id)
			}
		}
		return ids, nil
	}
	if ids := c.schoolSections(token); len(ids) > 0 {
		return ids, nil
	}
	return nil, fmt.Errorf("unknown selection token %q", token)
}

// autoSelect groups sections by school in first-seen order and keeps at most
// autoPerSchool from each group.
func (c *Catalog) autoSelect() []int {
	bySchool := make(map[string][]int)
	var order []string
	for _, s := range c.sections {
		school := s.School
		if _, seen := bySchool[school]; !seen {
			order = append(order, school)
		}
		bySchool[school] = append(bySchool[school], s.ID)
	}
	var ids []int
	for _, school := range order {
		ids = append(ids, lo.Slice(bySchool[school], 0, autoPerSchool)...)
	}
	return ids
}

func (c *Catalog) schoolSections(name string) []int {
	return lo.FilterMap(c.sections, func(s model.Section, _ int) (int, bool) {
		return s.ID, s.School != "" && strings.EqualFold(s.School, name)
	})
}

func parseRange(token string) (from, to int, ok bool) {
	first, second, found := strings.Cut(token, "-")
	if !found {
		return 0, 0, false
	}
	from, err1 := strconv.Atoi(strings.TrimSpace(first))
	to, err2 := strconv.Atoi(strings.TrimSpace(second))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return from, to, true
}
