// Package parser decodes job, receipt and timesheet records exported by the
// mobile and web clients. Numeric and date cells are parsed leniently: a value
// that cannot be read becomes zero or absent instead of failing the batch.
package parser

import (
	"fmt"
	"io"

	"github.com/datsun80zx/jobinsights/internal/model"
)

// Parser defines the interface for parsing record export files
type Parser interface {
	ParseJobs(r io.Reader) ([]model.JobRecord, error)
	ParseReceipts(r io.Reader) ([]model.ReceiptRecord, error)
	ParseTimesheets(r io.Reader) ([]model.TimesheetRecord, error)
}

// Bundle is one complete snapshot of an owner's records
type Bundle struct {
	Jobs       []model.JobRecord
	Receipts   []model.ReceiptRecord
	Timesheets []model.TimesheetRecord
}

// JobRequest carries a single job and the records scoped to it
type JobRequest struct {
	Job        *model.JobRecord
	Receipts   []model.ReceiptRecord
	Timesheets []model.TimesheetRecord
}

// ValidationError represents a parsing error with context
type ValidationError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d, column %s: failed to parse '%s': %v",
		e.Row, e.Column, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
