package export

import (
	"time"

	"github.com/okian/scout/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRenderer sets the PDF renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithClubName sets the name printed in the header band and footer.
func WithClubName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.clubName = name
		}
	}
}

// WithTimeout bounds a single PDF render.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
