package autosave

import (
	"time"

	"github.com/okian/scout/internal/domain/inflight"
	"github.com/okian/scout/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithDebounce sets the quiet period after the last edit.
func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithClock replaces the wall clock, typically with a ManualClock in tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithGuard sets the single-flight guard shared with other components.
func WithGuard(g inflight.Guard) Option {
	return func(s *Scheduler) {
		if g != nil {
			s.guard = g
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
