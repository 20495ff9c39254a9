package draft

import (
	"time"

	"github.com/okian/scout/pkg/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid generator used for transient draft ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithNow sets the clock used to stamp observation dates.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
