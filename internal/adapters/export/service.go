package export

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/scout/pkg/logger"
)

const (
	defaultClubName = "Scouting"
	defaultTimeout  = 60 * time.Second
)

// Service renders reports to HTML and, through its Renderer, to PDF.
type Service struct {
	renderer Renderer
	clubName string
	timeout  time.Duration
	logger   logger.Logger
}

// NewService creates an export service. Without a renderer only HTML output
// is available and PDF requests fail with ErrPDFDependencyMissing.
func NewService(opts ...Option) *Service {
	s := &Service{
		clubName: defaultClubName,
		timeout:  defaultTimeout,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HTML renders entries as a single HTML document, one section per report.
func (s *Service) HTML(ctx context.Context, entries []Entry, title string) (*Result, error) {
	if len(entries) == 0 {
		return nil, ErrNothingToExport
	}

	data := TemplateData{Title: title, ClubName: s.clubName, Sections: make([]Section, 0, len(entries))}
	for _, e := range entries {
		data.Sections = append(data.Sections, buildSection(ctx, e, s.logger))
	}
	html, err := renderHTML(data)
	if err != nil {
		return nil, err
	}
	return &Result{Data: html, Filename: title, MimeType: mimeHTML}, nil
}

// Export renders entries to a PDF named filename.
func (s *Service) Export(ctx context.Context, entries []Entry, filename string) (*Result, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: no renderer configured", ErrPDFDependencyMissing)
	}

	doc, err := s.HTML(ctx, entries, filename)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	pdf, err := s.renderer.Render(ctx, doc.Data)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", filename, err)
	}
	s.logger.Debug(ctx, "pdf rendered",
		logger.String("filename", filename),
		logger.Int("reports", len(entries)),
		logger.Duration("took", time.Since(start)),
	)

	return &Result{Data: pdf, Filename: filename, MimeType: mimePDF}, nil
}
