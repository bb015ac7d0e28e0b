package report

import (
	"context"

	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// Repository defines the persistence operations for stored reports.
// Lookups of a missing id return an error carrying ErrCodeReportNotFound.
type Repository interface {
	// Save inserts r, or replaces the row with the same id.
	Save(ctx context.Context, r *StoredReport) error
	// UpdateStatus sets status, and the analysis or error message that goes with it.
	UpdateStatus(ctx context.Context, id string, status Status, analysis *legal.AnalysisReport, errMsg string) error
	FindByID(ctx context.Context, id string) (*StoredReport, error)
	// FindByHash returns the newest completed report for a content hash.
	FindByHash(ctx context.Context, hash string) (*StoredReport, error)
	// List returns one page, newest first, and the total row count.
	List(ctx context.Context, page, size int) ([]*StoredReport, int64, error)
	Delete(ctx context.Context, id string) error
}

// Page limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizePage clamps page to >= 1 and size to [1, MaxPageSize] and returns
// the matching offset.
func NormalizePage(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size, (page - 1) * size
}

//Personal.AI order the ending
