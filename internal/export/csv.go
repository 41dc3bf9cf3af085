package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"horarium/internal/model"
	"horarium/internal/timetable"
)

// ScheduleCSV renders the grid as a matrix: one row per block with its hour
// label, one column per day, human-readable cells. Unlike the catalog matrix
// this layout is presentation-only and is not meant to be loaded back.
func ScheduleCSV(g *timetable.Grid) ([]byte, error) {
	if g == nil {
		return nil, errors.New("export: nil grid")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(append([]string{"Time"}, timetable.DayNames[:]...))
	for block := 0; block < timetable.BlocksPerDay; block++ {
		row := make([]string, 0, timetable.Days+1)
		row = append(row, timetable.BlockLabel(block))
		for day := 0; day < timetable.Days; day++ {
			row = append(row, stackText(g, day, block))
		}
		w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode schedule csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteScheduleCSV writes the schedule matrix to path.
func WriteScheduleCSV(path string, g *timetable.Grid) error {
	raw, err := ScheduleCSV(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// HistoryCSV renders convergence points with the generation, best_fitness
// and conflicts columns.
func HistoryCSV(history []model.HistoryPoint) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"generation", "best_fitness", "conflicts"})
	for _, p := range history {
		w.Write([]string{
			strconv.Itoa(p.Generation),
			strconv.FormatFloat(p.BestFitness, 'f', -1, 64),
			strconv.Itoa(p.ConflictCount),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode history csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHistoryCSV writes the convergence history to path.
func WriteHistoryCSV(path string, history []model.HistoryPoint) error {
	raw, err := HistoryCSV(history)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
