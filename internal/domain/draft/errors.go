package draft

import "errors"

// Sentinel errors for draft operations.
var (
	ErrNotFound          = errors.New("draft not found")
	ErrUnknownCompetency = errors.New("competency not part of the draft's position")
	ErrUnknownField      = errors.New("unknown draft field")
	ErrUnknownPosition   = errors.New("unknown position")
)
