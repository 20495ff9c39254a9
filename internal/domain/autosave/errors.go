package autosave

import "errors"

// Sentinel errors for the scheduler.
var (
	ErrDispatchRejected = errors.New("save job rejected by dispatcher")
)
