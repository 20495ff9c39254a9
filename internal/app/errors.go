package service

import "errors"

var (
	// ErrNotStarted is returned by operations that need a running service.
	ErrNotStarted = errors.New("service not started")
	// ErrNotConfirmed is returned when a destructive action lacks confirmation.
	ErrNotConfirmed = errors.New("confirmation required")
	// ErrGroupNotFound is returned for an unknown player group key.
	ErrGroupNotFound = errors.New("player group not found")
	// ErrReportNotFound is returned when a report is not in the latest snapshot.
	ErrReportNotFound = errors.New("report not found")
)
