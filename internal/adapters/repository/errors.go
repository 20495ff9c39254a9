package repository

import "errors"

// Sentinel errors returned by every backend.
var (
	ErrNotFound       = errors.New("report not found")
	ErrClosed         = errors.New("repository closed")
	ErrUnknownBackend = errors.New("unknown repository backend")
	ErrWriteConflict  = errors.New("report changed concurrently")
)
