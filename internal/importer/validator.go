package importer

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/datsun80zx/jobinsights/internal/store"
)

// ValidationResult contains data quality warnings found after an import.
// None of them block the import.
type ValidationResult struct {
	UnassignedReceipts int
	OrphanedJobRefs    []string
	JobsWithoutValue   []string
	Warnings           []string
}

// ValidateImport checks data quality after import
func ValidateImport(ctx context.Context, q *store.Queries, ownerID string, batchID int64) (*ValidationResult, error) {
	result := &ValidationResult{
		OrphanedJobRefs:  make([]string, 0),
		JobsWithoutValue: make([]string, 0),
		Warnings:         make([]string, 0),
	}

	unassigned, err := q.CountUnassignedReceipts(ctx, batchID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to count unassigned receipts")
	}
	if unassigned > 0 {
		result.UnassignedReceipts = unassigned
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Found %d receipts not assigned to a job", unassigned))
	}

	orphans, err := q.OrphanedJobRefs(ctx, ownerID, batchID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to check job references")
	}
	if len(orphans) > 0 {
		result.OrphanedJobRefs = orphans
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Found %d job ids referenced by receipts or timesheets with no matching job", len(orphans)))
	}

	noValue, err := q.JobsWithoutValue(ctx, batchID)
	if err != nil {
		return nil, eris.Wrap(err, "failed to check project values")
	}
	if len(noValue) > 0 {
		result.JobsWithoutValue = noValue
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Found %d jobs without a project value", len(noValue)))
	}

	return result, nil
}
