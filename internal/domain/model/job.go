package model

import "time"

// Save triggers.
const (
	TriggerDebounce = "debounce"
	TriggerManual   = "manual"
	TriggerFlush    = "flush"
)

// SaveJob asks a worker to persist one draft.
type SaveJob struct {
	DraftID  string
	Trigger  string
	Enqueued time.Time
}
