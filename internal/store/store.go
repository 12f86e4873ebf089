// Package store reads and writes job, receipt and timesheet records in
// PostgreSQL. Records are always scoped to an owner; the insights engine
// never filters by tenant itself.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"

	"github.com/datsun80zx/jobinsights/internal/model"
	"github.com/datsun80zx/jobinsights/internal/parser"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = eris.New("store: not found")

// ErrDuplicateImport is returned when the same set of files was already imported
var ErrDuplicateImport = eris.New("store: import batch already exists")

// Store is the read side used by the API and CLI
type Store interface {
	ListJobs(ctx context.Context, ownerID string) ([]model.JobRecord, error)
	GetJob(ctx context.Context, ownerID, jobID string) (*model.JobRecord, error)
	ListReceipts(ctx context.Context, ownerID string, jobID *string) ([]model.ReceiptRecord, error)
	ListTimesheets(ctx context.Context, ownerID string, jobID *string) ([]model.TimesheetRecord, error)
	LoadPortfolio(ctx context.Context, ownerID string) (*parser.Bundle, error)
}

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Queries runs every statement against a DBTX, so the same methods work
// inside and outside a transaction.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to db or tx
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func sqlNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func sqlNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
