// Package repository persists scouting reports and streams the whole
// collection to subscribers whenever it changes.
package repository

import (
	"context"
	"sort"

	"github.com/okian/scout/internal/domain/model"
)

// SnapshotFunc receives the full current list of reports.
type SnapshotFunc func(reports []model.Report)

// ErrorFunc receives subscription failures. A backend may keep delivering
// snapshots after an error once it recovers.
type ErrorFunc func(err error)

// Repository is the remote report store.
type Repository interface {
	// Create stores a new report and returns its server-assigned id.
	// The creation timestamp is assigned by the backend.
	Create(ctx context.Context, e model.Evaluation) (string, error)

	// Update replaces the evaluation of an existing report, keeping its
	// creation timestamp. Returns ErrNotFound if id is unknown.
	Update(ctx context.Context, id string, e model.Evaluation) error

	// Delete removes a report. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Subscribe delivers the current list immediately and again after every
	// change, including changes made by the subscriber itself. The returned
	// func stops delivery.
	Subscribe(ctx context.Context, onSnapshot SnapshotFunc, onError ErrorFunc) (unsubscribe func())

	// Close releases backend resources and ends all subscriptions.
	Close() error
}

// sortReports orders reports by creation time, then id, so every snapshot of
// the same collection has the same order.
func sortReports(reports []model.Report) {
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].CreatedAt != reports[j].CreatedAt {
			return reports[i].CreatedAt < reports[j].CreatedAt
		}
		return reports[i].ID < reports[j].ID
	})
}

func cloneReports(reports []model.Report) []model.Report {
	out := make([]model.Report, len(reports))
	for i := range reports {
		out[i] = reports[i].Clone()
	}
	return out
}
