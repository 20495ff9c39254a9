package service

import (
	"time"

	"github.com/okian/scout/internal/adapters/export"
	"github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/autosave"
	"github.com/okian/scout/internal/domain/draft"
	"github.com/okian/scout/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRepository sets the report repository. The service closes it on Stop.
func WithRepository(repo repository.Repository) Option {
	return func(s *Service) {
		if repo != nil {
			s.repo = repo
		}
	}
}

// WithWorkerCount sets the number of save workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the save job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDebounce sets the autosave quiet period.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithClock sets the clock driving autosave timers.
func WithClock(c autosave.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithExporter sets the export service.
func WithExporter(e *export.Service) Option {
	return func(s *Service) {
		if e != nil {
			s.exporter = e
		}
	}
}

// WithDraftOptions passes options to the draft store.
func WithDraftOptions(opts ...draft.Option) Option {
	return func(s *Service) {
		s.draftOpts = append(s.draftOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
