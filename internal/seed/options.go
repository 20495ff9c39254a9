package seed

import "time"

type settings struct {
	seed      int64
	gradeRate int
	noteRate  int
	now       func() time.Time
}

// Option configures a Generator.
type Option func(*settings)

// WithSeed fixes the random seed.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// WithGradeRate sets the percentage (0-100) of competencies that get a grade.
func WithGradeRate(pct int) Option {
	return func(s *settings) {
		if pct >= 0 && pct <= 100 {
			s.gradeRate = pct
		}
	}
}

// WithNoteRate sets the percentage (0-100) of graded competencies with a note.
func WithNoteRate(pct int) Option {
	return func(s *settings) {
		if pct >= 0 && pct <= 100 {
			s.noteRate = pct
		}
	}
}

// WithNow sets the clock observation dates are drawn back from.
func WithNow(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
