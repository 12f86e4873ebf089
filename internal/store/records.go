package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/datsun80zx/jobinsights/internal/model"
)

const jobColumns = `id, status, project_value, amount_paid, start_date, end_date, client_name, job_name`

// ListJobs returns every job the owner has, oldest first
func (q *Queries) ListJobs(ctx context.Context, ownerID string) ([]model.JobRecord, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE owner_id = $1
		ORDER BY start_date NULLS LAST, id`

	rows, err := q.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "store: list jobs")
	}
	defer rows.Close()

	jobs := []model.JobRecord{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, eris.Wrap(err, "store: scan job")
		}
		jobs = append(jobs, job)
	}

	return jobs, eris.Wrap(rows.Err(), "store: list jobs")
}

// GetJob returns one job or ErrNotFound
func (q *Queries) GetJob(ctx context.Context, ownerID, jobID string) (*model.JobRecord, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE owner_id = $1 AND id = $2`

	job, err := scanJob(q.db.QueryRowContext(ctx, query, ownerID, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "job %s", jobID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: get job")
	}

	return &job, nil
}

// ListReceipts returns the owner's receipts, or only those assigned to jobID
// when it is set.
func (q *Queries) ListReceipts(ctx context.Context, ownerID string, jobID *string) ([]model.ReceiptRecord, error) {
	query := `
		SELECT id, job_id, amount, receipt_date
		FROM receipts
		WHERE owner_id = $1
		  AND ($2::text IS NULL OR job_id = $2)
		ORDER BY receipt_date NULLS LAST, id`

	rows, err := q.db.QueryContext(ctx, query, ownerID, sqlNullString(jobID))
	if err != nil {
		return nil, eris.Wrap(err, "store: list receipts")
	}
	defer rows.Close()

	receipts := []model.ReceiptRecord{}
	for rows.Next() {
		var r model.ReceiptRecord
		var job sql.NullString
		var date sql.NullTime
		if err := rows.Scan(&r.ID, &job, &r.Amount, &date); err != nil {
			return nil, eris.Wrap(err, "store: scan receipt")
		}
		r.JobID = stringPtr(job)
		r.Date = timePtr(date)
		receipts = append(receipts, r)
	}

	return receipts, eris.Wrap(rows.Err(), "store: list receipts")
}

// ListTimesheets returns the owner's timesheets, or only those logged
// against jobID when it is set.
func (q *Queries) ListTimesheets(ctx context.Context, ownerID string, jobID *string) ([]model.TimesheetRecord, error) {
	query := `
		SELECT id, job_id, user_id, hours, hourly_rate, work_date
		FROM timesheets
		WHERE owner_id = $1
		  AND ($2::text IS NULL OR job_id = $2)
		ORDER BY work_date NULLS LAST, id`

	rows, err := q.db.QueryContext(ctx, query, ownerID, sqlNullString(jobID))
	if err != nil {
		return nil, eris.Wrap(err, "store: list timesheets")
	}
	defer rows.Close()

	timesheets := []model.TimesheetRecord{}
	for rows.Next() {
		var ts model.TimesheetRecord
		var job sql.NullString
		var date sql.NullTime
		if err := rows.Scan(&ts.ID, &job, &ts.UserID, &ts.Hours, &ts.HourlyRate, &date); err != nil {
			return nil, eris.Wrap(err, "store: scan timesheet")
		}
		ts.JobID = stringPtr(job)
		ts.Date = timePtr(date)
		timesheets = append(timesheets, ts)
	}

	return timesheets, eris.Wrap(rows.Err(), "store: list timesheets")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (model.JobRecord, error) {
	var job model.JobRecord
	var start, end sql.NullTime
	err := row.Scan(
		&job.ID,
		&job.Status,
		&job.ProjectValue,
		&job.AmountPaid,
		&start,
		&end,
		&job.ClientName,
		&job.JobName,
	)
	if err != nil {
		return model.JobRecord{}, err
	}
	job.StartDate = timePtr(start)
	job.EndDate = timePtr(end)
	return job, nil
}
