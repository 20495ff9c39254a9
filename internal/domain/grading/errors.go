package grading

import "errors"

// Sentinel errors for the grading model.
var (
	ErrInvalidGrade = errors.New("invalid grade")
)
