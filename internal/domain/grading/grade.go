// Package grading holds the static scouting model: positions, their
// competencies, the A-E grade scale and the overall grade aggregation.
package grading

import (
	"fmt"
	"math"
	"strings"
)

// Grade is a letter on the A-E scale. The empty Grade means "not graded".
type Grade string

// Grade scale, best first.
const (
	None Grade = ""
	A    Grade = "A"
	B    Grade = "B"
	C    Grade = "C"
	D    Grade = "D"
	E    Grade = "E"
)

// Grades lists the scale in rank order.
var Grades = []Grade{A, B, C, D, E} //nolint:gochecknoglobals // fixed scale

// RGB is a display colour triple.
type RGB struct {
	R, G, B uint8
}

type gradeInfo struct {
	rank    int
	color   string
	rgb     RGB
	percent int
}

var gradeTable = map[Grade]gradeInfo{ //nolint:gochecknoglobals // fixed scale
	A: {rank: 0, color: "#00c853", rgb: RGB{0, 200, 83}, percent: 100},
	B: {rank: 1, color: "#69c21a", rgb: RGB{105, 194, 26}, percent: 75},
	C: {rank: 2, color: "#ffb300", rgb: RGB{255, 179, 0}, percent: 50},
	D: {rank: 3, color: "#ff6d00", rgb: RGB{255, 109, 0}, percent: 30},
	E: {rank: 4, color: "#d32f2f", rgb: RGB{211, 47, 47}, percent: 10},
}

// ParseGrade accepts a letter (any case, surrounding space ignored).
// The empty string parses to None.
func ParseGrade(s string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(s)))
	if g == None {
		return None, nil
	}
	if _, ok := gradeTable[g]; !ok {
		return None, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	return g, nil
}

// Valid reports whether g is one of A-E.
func (g Grade) Valid() bool {
	_, ok := gradeTable[g]
	return ok
}

// Rank maps A=0 ... E=4. None and unknown letters return -1.
func (g Grade) Rank() int {
	if info, ok := gradeTable[g]; ok {
		return info.rank
	}
	return -1
}

// Color is the hex display colour, empty for None.
func (g Grade) Color() string { return gradeTable[g].color }

// RGB is the display colour as a triple.
func (g Grade) RGB() RGB { return gradeTable[g].rgb }

// Percent is the strength bar length. Only used for display.
func (g Grade) Percent() int { return gradeTable[g].percent }

func (g Grade) String() string { return string(g) }

// Rating is the grade and free-text note given to one competency.
type Rating struct {
	Grade Grade  `json:"grade"`
	Note  string `json:"note"`
}

// OverallGrade collapses the ratings of a position's competencies into one
// grade: the mean of the ranks of the graded competencies, rounded half up.
// Ratings for competencies outside the position are ignored. ok is false when
// the position is unknown or nothing is graded.
func OverallGrade(ratings map[string]Rating, positionID string) (Grade, bool) {
	pos, found := Lookup(positionID)
	if !found {
		return None, false
	}

	sum, n := 0, 0
	for _, c := range pos.Competencies {
		r, has := ratings[c]
		if !has || !r.Grade.Valid() {
			continue
		}
		sum += r.Grade.Rank()
		n++
	}
	if n == 0 {
		return None, false
	}

	mean := float64(sum) / float64(n)
	return Grades[int(math.Floor(mean+0.5))], true
}

// GradedCount returns how many of the position's competencies carry a grade,
// and how many competencies the position has.
func GradedCount(ratings map[string]Rating, positionID string) (graded, total int) {
	pos, found := Lookup(positionID)
	if !found {
		return 0, 0
	}
	for _, c := range pos.Competencies {
		if ratings[c].Grade.Valid() {
			graded++
		}
	}
	return graded, len(pos.Competencies)
}
