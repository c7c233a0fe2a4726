// Package store persists job records. Postgres is the production backend;
// Memory backs dry runs and tests.
package store

import (
	"context"
	"errors"
	"fmt"

	"govjobs/harvester-service/internal/model"
)

// ErrNotFound is returned when a job record does not exist.
var ErrNotFound = errors.New("job not found")

// Store is the relational store contract.
type Store interface {
	// ExistsByLink reports whether a record's apply link or source URL is link.
	ExistsByLink(ctx context.Context, link string) (bool, error)
	// ExistsByTitle reports whether a record has exactly this title.
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	// RecentRecords returns up to limit records, most recently updated first.
	RecentRecords(ctx context.Context, limit int) ([]model.JobRecord, error)
	GetByID(ctx context.Context, id string) (*model.JobRecord, error)
	// ListActive returns up to limit active records, newest post date first.
	ListActive(ctx context.Context, limit int) ([]model.JobRecord, error)

	InsertJob(ctx context.Context, rec model.JobRecord) error
	UpdateJob(ctx context.Context, rec model.JobRecord) error
	InsertRawPost(ctx context.Context, p model.RawPost) error
	// UpdateProvenance writes source, author and quality columns.
	UpdateProvenance(ctx context.Context, rec model.JobRecord) error

	Capabilities() Capabilities
}

// WriteResult is the outcome of a write whose primary statement succeeded.
// SecondaryErr holds the failures of the best-effort provenance and audit
// writes; they never undo or fail the primary write.
type WriteResult struct {
	ID           string
	SecondaryErr error
}

// Partial reports whether a secondary write failed.
func (r WriteResult) Partial() bool { return r.SecondaryErr != nil }

// Insert writes rec, then its provenance columns and raw-post audit row when
// the schema has them. Only a primary write failure is returned as an error.
func Insert(ctx context.Context, s Store, rec model.JobRecord, raw *model.RawPost) (WriteResult, error) {
	if err := s.InsertJob(ctx, rec); err != nil {
		return WriteResult{}, fmt.Errorf("insert job %s: %w", rec.ID, err)
	}
	res := WriteResult{ID: rec.ID}

	caps := s.Capabilities()
	var errs []error
	if caps.Provenance {
		if err := s.UpdateProvenance(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("provenance: %w", err))
		}
	}
	if caps.RawPosts && raw != nil {
		raw.JobID = rec.ID
		if err := s.InsertRawPost(ctx, *raw); err != nil {
			errs = append(errs, fmt.Errorf("raw post: %w", err))
		}
	}
	res.SecondaryErr = errors.Join(errs...)
	return res, nil
}

// Update rewrites rec's content, then its quality and provenance columns when
// the schema has them. Only a content write failure is returned as an error.
func Update(ctx context.Context, s Store, rec model.JobRecord) (WriteResult, error) {
	if err := s.UpdateJob(ctx, rec); err != nil {
		return WriteResult{}, fmt.Errorf("update job %s: %w", rec.ID, err)
	}
	res := WriteResult{ID: rec.ID}
	if s.Capabilities().Provenance {
		if err := s.UpdateProvenance(ctx, rec); err != nil {
			res.SecondaryErr = fmt.Errorf("provenance: %w", err)
		}
	}
	return res, nil
}
