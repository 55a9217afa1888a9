package qms

import (
	"context"

	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
)

// EbrDiagnostics lists eBR records for operators. It is built on the
// privileged database handle, so row-level rules do not apply.
type EbrDiagnostics struct {
	repo qms.EbrRepository
}

// NewEbrDiagnostics creates a new EbrDiagnostics over a privileged repository
func NewEbrDiagnostics(repo qms.EbrRepository) *EbrDiagnostics {
	return &EbrDiagnostics{repo: repo}
}

// ListRecentRecords returns every record in compact form, newest first
func (d *EbrDiagnostics) ListRecentRecords(ctx context.Context) ([]EbrSummary, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = shared.MaxPageSize

	out := make([]EbrSummary, 0)
	for {
		records, err := d.repo.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			out = append(out, EbrSummary{
				ID:        r.ID,
				EbrNumber: r.EbrNumber,
				BatchName: r.BatchName,
				CreatedAt: r.CreatedAt,
			})
		}
		if len(records) < filter.PageSize {
			return out, nil
		}
		filter.Page++
	}
}
