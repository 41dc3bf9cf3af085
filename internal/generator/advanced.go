package generator

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"horarium/internal/catalog"
	"horarium/internal/model"
	"horarium/internal/timetable"
)

// School groups the course names and teacher pool one school draws from.
type School struct {
	Code     string
	Courses  []string
	Teachers []string
}

// DefaultSchools is the five-school academic load the advanced generator
// draws from when the caller supplies none.
var DefaultSchools = []School{
	{
		Code: "BF",
		Courses: []string{
			"FISICA I", "FISICA II", "FISICA III",
			"MECANICA CLASICA", "ELECTROMAGNETISMO",
			"MECANICA CUANTICA", "TERMODINAMICA",
		},
		Teachers: []string{"GARCIA", "MARTINEZ", "LOPEZ", "TORRES", "RAMIREZ"},
	},
	{
		Code: "CF",
		Courses: []string{
			"OPTICA CLASICA", "FISICA MODERNA",
			"MECANICA CUANTICA II", "FISICA NUCLEAR",
			"FISICA DEL ESTADO SOLIDO",
		},
		Teachers: []string{"DIAZ", "MORALES", "CASTRO", "VARGAS", "HERRERA"},
	},
	{
		Code: "CM",
		Courses: []string{
			"CALCULO I", "CALCULO II", "ALGEBRA LINEAL",
			"ANALISIS REAL", "ECUACIONES DIFERENCIALES",
			"METODOS NUMERICOS",
		},
		Teachers: []string{"SILVA", "MENDOZA", "ROJAS", "PACHECO", "VEGA"},
	},
	{
		Code: "CQ",
		Courses: []string{
			"QUIMICA I", "QUIMICA ORGANICA", "FISICOQUIMICA",
			"QUIMICA ANALITICA", "BIOQUIMICA",
		},
		Teachers: []string{"FLORES", "SANCHEZ", "GUZMAN", "PAREDES", "NAVARRO"},
	},
	{
		Code: "CC",
		Courses: []string{
			"PROGRAMACION I", "ALGORITMOS", "BASE DE DATOS",
			"SISTEMAS OPERATIVOS", "INTELIGENCIA ARTIFICIAL",
		},
		Teachers: []string{"RIVERA", "CABRERA", "ESPINOZA", "DELGADO", "AGUILAR"},
	},
}

var (
	lectureRooms   = []string{"R1-450", "R1-460", "J3-182A", "J3-182B", "J3-232", "J3-242"}
	labRooms       = []string{"LAB F", "LAB FI", "LAB 12", "LAB 33C", "LAB 33R1"}
	codeSuffixes   = []string{"A", "B", "E"}
	sectionLetters = []string{"A", "B", "C"}
)

// DefaultSectionsPerSchool is the section count generated per school when
// the config leaves it zero.
const DefaultSectionsPerSchool = 12

// Config drives Advanced. Zero values fall back to the defaults; a nil
// Logger disables the conflict precheck warnings.
type Config struct {
	Seed              int64
	SectionsPerSchool int
	Schools           []School
	Logger            *zap.Logger
}

// Advanced generates a seeded random catalog across schools. Roughly a
// third of the sections are labs meeting once for three or four blocks;
// lectures meet twice for two blocks on distinct days. The catalog is not
// guaranteed collision-free: overlapping placements are detected over the
// expanded master grid and logged, mirroring a real academic load where
// the optimizer is what resolves them.
func Advanced(cfg Config) (*catalog.Catalog, error) {
	schools := cfg.Schools
	if len(schools) == 0 {
		schools = DefaultSchools
	}
	perSchool := cfg.SectionsPerSchool
	if perSchool == 0 {
		perSchool = DefaultSectionsPerSchool
	}
	if perSchool < 0 {
		return nil, fmt.Errorf("generator: sections per school %d", perSchool)
	}
	for _, school := range schools {
		if school.Code == "" || len(school.Courses) == 0 || len(school.Teachers) == 0 {
			return nil, errors.New("generator: school needs a code, courses and teachers")
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	sections := make([]model.Section, 0, len(schools)*perSchool)
	id := 0
	for _, school := range schools {
		for i := 0; i < perSchool; i++ {
			id++
			sections = append(sections, randomSection(rng, school, id, i+1))
		}
	}

	c, err := catalog.New(sections...)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	precheck(c, logger)
	return c, nil
}

func randomSection(rng *rand.Rand, school School, id, number int) model.Section {
	code := fmt.Sprintf("%s%02d", school.Code, number)
	if rng.Float64() > 0.7 {
		code += codeSuffixes[rng.Intn(len(codeSuffixes))]
	}
	code += "_" + sectionLetters[rng.Intn(len(sectionLetters))]

	course := school.Courses[rng.Intn(len(school.Courses))]
	isLab := rng.Float64() < 0.3
	kind := model.KindLecture
	if isLab {
		course += " LAB"
		kind = model.KindLab
	}

	teacher := school.Teachers[rng.Intn(len(school.Teachers))]

	var capacity int
	var room string
	var opts []model.TimeOption
	if isLab {
		capacity = 15 + rng.Intn(11)
		room = labRooms[rng.Intn(len(labRooms))]
		// One long session, starting early enough to fit.
		opts = []model.TimeOption{{
			Day:      rng.Intn(timetable.Days),
			Block:    rng.Intn(11),
			Duration: 3 + rng.Intn(2),
		}}
	} else {
		capacity = 25 + rng.Intn(26)
		room = lectureRooms[rng.Intn(len(lectureRooms))]
		first := rng.Intn(timetable.Days)
		second := rng.Intn(timetable.Days - 1)
		if second >= first {
			second++
		}
		for _, day := range []int{first, second} {
			opts = append(opts, model.TimeOption{
				Day:      day,
				Block:    rng.Intn(13),
				Duration: 2,
			})
		}
	}

	return model.Section{
		ID:          id,
		Code:        code,
		Course:      course,
		School:      school.Code,
		Teacher:     teacher,
		Room:        room,
		Kind:        kind,
		Capacity:    capacity,
		TimeOptions: opts,
	}
}

// precheck cross-checks every generated placement over the master grid and
// warns about collisions the optimizer will have to work around.
func precheck(c *catalog.Catalog, logger *zap.Logger) {
	report := timetable.Validator{}.Detect(c.MasterGrid())
	for _, tc := range report.Teacher {
		logger.Warn("generated load double-books a teacher",
			zap.String("teacher", tc.Teacher),
			zap.String("day", timetable.DayNames[tc.Day]),
			zap.Int("block", tc.Block),
			zap.Strings("courses", tc.Courses),
		)
	}
	for _, rc := range report.Room {
		logger.Warn("generated load double-books a room",
			zap.String("room", rc.Room),
			zap.String("day", timetable.DayNames[rc.Day]),
			zap.Int("block", rc.Block),
			zap.Strings("courses", rc.Courses),
		)
	}
	logger.Info("generated catalog",
		zap.Int("sections", c.Len()),
		zap.Int("teacher_collisions", len(report.Teacher)),
		zap.Int("room_collisions", len(report.Room)),
	)
}
