// Package generator builds synthetic course catalogs: a fixed starter set
// and a seeded multi-school random load.
package generator

import (
	"horarium/internal/catalog"
	"horarium/internal/model"
)

// Basic returns the fixed fifteen-section starter catalog. Every time option
// occupies its own cells, so the master grid is conflict-free and any
// selection over it can be placed without collisions.
func Basic() *catalog.Catalog {
	c, err := catalog.New(basicSections()...)
	if err != nil {
		// The fixture is static with unique IDs; New cannot fail on it.
		panic("generator: basic catalog: " + err.Error())
	}
	return c
}

func basicSections() []model.Section {
	return []model.Section{
		lecture(1, "Calculo I", "Garcia", at(0, 0, 2), at(2, 0, 2)),
		lecture(2, "Fisica I", "Martinez", at(0, 2, 2), at(2, 2, 2)),
		lecture(3, "Programacion I", "Lopez", at(1, 0, 2), at(3, 0, 2)),
		lab(4, "Programacion I Lab", "Lopez", at(1, 7, 3)),
		lecture(5, "Algebra Lineal", "Gomez", at(0, 4, 2), at(3, 2, 2)),
		lecture(6, "Matematica Discreta", "Sanchez", at(1, 2, 2), at(3, 4, 2)),
		lab(7, "Fisica I Lab", "Martinez", at(2, 7, 3)),
		lecture(8, "Estructuras de Datos", "Torres", at(0, 7, 2)),
		lab(9, "Estructuras de Datos Lab", "Torres", at(3, 7, 3)),
		lecture(10, "Calculo II", "Garcia", at(1, 4, 2), at(4, 0, 2)),
		lecture(11, "Fisica II", "Rodriguez", at(2, 10, 2), at(4, 2, 2)),
		lecture(12, "Estadistica", "Ramirez", at(0, 9, 2), at(3, 10, 2)),
		lecture(13, "Probabilidad", "Ramirez", at(1, 10, 2), at(4, 10, 2)),
		lecture(14, "Algoritmos", "Torres", at(2, 4, 2), at(4, 4, 2)),
		lab(15, "Algoritmos Lab", "Torres", at(4, 7, 3)),
	}
}

func lecture(id int, course, teacher string, opts ...model.TimeOption) model.Section {
	return model.Section{
		ID:          id,
		Course:      course,
		Teacher:     teacher,
		Kind:        model.KindLecture,
		TimeOptions: opts,
	}
}

func lab(id int, course, teacher string, opts ...model.TimeOption) model.Section {
	return model.Section{
		ID:          id,
		Course:      course,
		Teacher:     teacher,
		Kind:        model.KindLab,
		TimeOptions: opts,
	}
}

func at(day, block, duration int) model.TimeOption {
	return model.TimeOption{Day: day, Block: block, Duration: duration}
}
