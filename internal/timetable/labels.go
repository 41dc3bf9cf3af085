package timetable

import (
	"fmt"
	"strings"
)

// DayNames are the column labels used by timetable files and exports.
var DayNames = [Days]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// BlockLabel renders the hour range of a block. Block 0 starts at 07:00.
func BlockLabel(block int) string {
	return fmt.Sprintf("%d:00 - %d:00", 7+block, 8+block)
}

// DayIndex resolves a day column label back to its index, case-insensitively.
func DayIndex(name string) (int, bool) {
	for i, day := range DayNames {
		if strings.EqualFold(day, name) {
			return i, true
		}
	}
	return 0, false
}
