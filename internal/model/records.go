// Package model holds the record and result types shared by the insights engine.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Job status values as recorded by the mobile and web clients.
const (
	StatusNotStarted = "not-started"
	StatusInProgress = "in-progress"
	StatusActive     = "active"
	StatusCompleted  = "completed"
)

// JobRecord is a contracted unit of work with its contract value and payment history
type JobRecord struct {
	ID           string
	Status       string
	ProjectValue decimal.Decimal
	AmountPaid   decimal.Decimal
	StartDate    *time.Time
	EndDate      *time.Time
	ClientName   string
	JobName      string
}

// ReceiptRecord is a recorded expense, optionally tied to a job
type ReceiptRecord struct {
	ID     string
	JobID  *string // nil for unassigned receipts
	Amount decimal.Decimal
	Date   *time.Time
}

// TimesheetRecord is a block of hours worked by one worker at a per-entry rate
type TimesheetRecord struct {
	ID         string
	JobID      *string
	UserID     string
	Hours      decimal.Decimal
	HourlyRate decimal.Decimal
	Date       *time.Time
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsActive reports whether the job is underway ("in-progress" or "active")
func (j JobRecord) IsActive() bool {
	s := normalizeStatus(j.Status)
	return s == StatusInProgress || s == StatusActive
}

// IsCompleted reports whether the job is finished
func (j JobRecord) IsCompleted() bool {
	return normalizeStatus(j.Status) == StatusCompleted
}

// IsNotStarted reports whether the job has not started yet
func (j JobRecord) IsNotStarted() bool {
	return normalizeStatus(j.Status) == StatusNotStarted
}

// BelongsTo reports whether a nullable job reference points at jobID
func BelongsTo(ref *string, jobID string) bool {
	return ref != nil && *ref == jobID
}
