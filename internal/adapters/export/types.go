// Package export renders scouting reports as printable documents.
package export

import (
	"errors"

	"github.com/okian/scout/internal/domain/model"
)

// Entry is one report to render, with its photo when the caller has one.
type Entry struct {
	Report model.Report
	Photo  []byte
}

// Result contains the export output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

const (
	mimePDF  = "application/pdf"
	mimeHTML = "text/html; charset=utf-8"
)

var (
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrNothingToExport is returned for an empty entry list.
	ErrNothingToExport = errors.New("nothing to export")
)
