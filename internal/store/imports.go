package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/rotisserie/eris"

	"github.com/datsun80zx/jobinsights/internal/model"
)

// Import batch statuses
const (
	BatchPending = "pending"
	BatchSuccess = "success"
	BatchFailed  = "failed"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure
const uniqueViolation = "23505"

// ImportBatch records one CSV import so repeated files are detected
type ImportBatch struct {
	ID                 int64
	OwnerID            string
	JobsFilename       string
	ReceiptsFilename   string
	TimesheetsFilename string
	JobsHash           string
	ReceiptsHash       string
	TimesheetsHash     string
	RowCountJobs       int
	RowCountReceipts   int
	RowCountTimesheets int
	Status             string
	ErrorMessage       *string
	CreatedAt          time.Time
}

// FileHashes identifies an import by the content of its three files
type FileHashes struct {
	Jobs       string
	Receipts   string
	Timesheets string
}

// CreateImportBatchParams holds the columns set when a batch is opened
type CreateImportBatchParams struct {
	OwnerID            string
	JobsFilename       string
	ReceiptsFilename   string
	TimesheetsFilename string
	Hashes             FileHashes
	RowCountJobs       int
	RowCountReceipts   int
	RowCountTimesheets int
}

const batchColumns = `id, owner_id, jobs_filename, receipts_filename, timesheets_filename,
	jobs_hash, receipts_hash, timesheets_hash,
	row_count_jobs, row_count_receipts, row_count_timesheets,
	status, error_message, created_at`

// CreateImportBatch inserts a pending batch. A batch with the same owner and
// hashes yields ErrDuplicateImport.
func (q *Queries) CreateImportBatch(ctx context.Context, arg CreateImportBatchParams) (*ImportBatch, error) {
	query := `
		INSERT INTO import_batches (
			owner_id, jobs_filename, receipts_filename, timesheets_filename,
			jobs_hash, receipts_hash, timesheets_hash,
			row_count_jobs, row_count_receipts, row_count_timesheets, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + batchColumns

	batch, err := scanBatch(q.db.QueryRowContext(ctx, query,
		arg.OwnerID,
		arg.JobsFilename,
		arg.ReceiptsFilename,
		arg.TimesheetsFilename,
		arg.Hashes.Jobs,
		arg.Hashes.Receipts,
		arg.Hashes.Timesheets,
		arg.RowCountJobs,
		arg.RowCountReceipts,
		arg.RowCountTimesheets,
		BatchPending,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, eris.Wrap(ErrDuplicateImport, pqErr.Detail)
		}
		return nil, eris.Wrap(err, "store: create import batch")
	}

	return batch, nil
}

// FindImportBatch looks up a previous import of the same files
func (q *Queries) FindImportBatch(ctx context.Context, ownerID string, hashes FileHashes) (*ImportBatch, error) {
	query := `SELECT ` + batchColumns + `
		FROM import_batches
		WHERE owner_id = $1 AND jobs_hash = $2 AND receipts_hash = $3 AND timesheets_hash = $4`

	batch, err := scanBatch(q.db.QueryRowContext(ctx, query, ownerID, hashes.Jobs, hashes.Receipts, hashes.Timesheets))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: find import batch")
	}

	return batch, nil
}

// UpdateImportBatchStatus marks a batch finished or failed
func (q *Queries) UpdateImportBatchStatus(ctx context.Context, id int64, status string, errMsg *string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE import_batches SET status = $2, error_message = $3 WHERE id = $1`,
		id, status, sqlNullString(errMsg))
	return eris.Wrapf(err, "store: update import batch %d", id)
}

// ListImportBatches returns import history, newest first
func (q *Queries) ListImportBatches(ctx context.Context, ownerID string) ([]ImportBatch, error) {
	query := `SELECT ` + batchColumns + `
		FROM import_batches
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := q.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, eris.Wrap(err, "store: list import batches")
	}
	defer rows.Close()

	batches := []ImportBatch{}
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, eris.Wrap(err, "store: scan import batch")
		}
		batches = append(batches, *batch)
	}

	return batches, eris.Wrap(rows.Err(), "store: list import batches")
}

// UpsertJob inserts a job or refreshes it from a newer import
func (q *Queries) UpsertJob(ctx context.Context, ownerID string, batchID int64, job model.JobRecord) error {
	query := `
		INSERT INTO jobs (
			owner_id, id, import_batch_id, status, project_value, amount_paid,
			start_date, end_date, client_name, job_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (owner_id, id) DO UPDATE SET
			import_batch_id = EXCLUDED.import_batch_id,
			status = EXCLUDED.status,
			project_value = EXCLUDED.project_value,
			amount_paid = EXCLUDED.amount_paid,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			client_name = EXCLUDED.client_name,
			job_name = EXCLUDED.job_name`

	_, err := q.db.ExecContext(ctx, query,
		ownerID,
		job.ID,
		batchID,
		job.Status,
		job.ProjectValue,
		job.AmountPaid,
		sqlNullTime(job.StartDate),
		sqlNullTime(job.EndDate),
		job.ClientName,
		job.JobName,
	)
	return eris.Wrapf(err, "store: upsert job %s", job.ID)
}

// UpsertReceipt inserts a receipt or refreshes it from a newer import
func (q *Queries) UpsertReceipt(ctx context.Context, ownerID string, batchID int64, r model.ReceiptRecord) error {
	query := `
		INSERT INTO receipts (owner_id, id, import_batch_id, job_id, amount, receipt_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id, id) DO UPDATE SET
			import_batch_id = EXCLUDED.import_batch_id,
			job_id = EXCLUDED.job_id,
			amount = EXCLUDED.amount,
			receipt_date = EXCLUDED.receipt_date`

	_, err := q.db.ExecContext(ctx, query,
		ownerID, r.ID, batchID, sqlNullString(r.JobID), r.Amount, sqlNullTime(r.Date))
	return eris.Wrapf(err, "store: upsert receipt %s", r.ID)
}

// UpsertTimesheet inserts a timesheet or refreshes it from a newer import
func (q *Queries) UpsertTimesheet(ctx context.Context, ownerID string, batchID int64, ts model.TimesheetRecord) error {
	query := `
		INSERT INTO timesheets (owner_id, id, import_batch_id, job_id, user_id, hours, hourly_rate, work_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id, id) DO UPDATE SET
			import_batch_id = EXCLUDED.import_batch_id,
			job_id = EXCLUDED.job_id,
			user_id = EXCLUDED.user_id,
			hours = EXCLUDED.hours,
			hourly_rate = EXCLUDED.hourly_rate,
			work_date = EXCLUDED.work_date`

	_, err := q.db.ExecContext(ctx, query,
		ownerID, ts.ID, batchID, sqlNullString(ts.JobID), ts.UserID, ts.Hours, ts.HourlyRate, sqlNullTime(ts.Date))
	return eris.Wrapf(err, "store: upsert timesheet %s", ts.ID)
}

// CountUnassignedReceipts counts receipts in a batch with no job
func (q *Queries) CountUnassignedReceipts(ctx context.Context, batchID int64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM receipts WHERE import_batch_id = $1 AND job_id IS NULL`,
		batchID).Scan(&n)
	return n, eris.Wrap(err, "store: count unassigned receipts")
}

// OrphanedJobRefs returns the job ids referenced by the batch's receipts and
// timesheets that the owner has no job for.
func (q *Queries) OrphanedJobRefs(ctx context.Context, ownerID string, batchID int64) ([]string, error) {
	query := `
		SELECT DISTINCT ref.job_id
		FROM (
			SELECT job_id FROM receipts WHERE import_batch_id = $2 AND job_id IS NOT NULL
			UNION
			SELECT job_id FROM timesheets WHERE import_batch_id = $2 AND job_id IS NOT NULL
		) ref
		LEFT JOIN jobs j ON j.owner_id = $1 AND j.id = ref.job_id
		WHERE j.id IS NULL
		ORDER BY ref.job_id`

	return q.stringColumn(ctx, "store: orphaned job refs", query, ownerID, batchID)
}

// JobsWithoutValue returns the batch's jobs with no project value
func (q *Queries) JobsWithoutValue(ctx context.Context, batchID int64) ([]string, error) {
	query := `
		SELECT id FROM jobs
		WHERE import_batch_id = $1 AND project_value = 0
		ORDER BY id`

	return q.stringColumn(ctx, "store: jobs without value", query, batchID)
}

func (q *Queries) stringColumn(ctx context.Context, op, query string, args ...interface{}) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, op)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, eris.Wrap(err, op)
		}
		out = append(out, s)
	}
	return out, eris.Wrap(rows.Err(), op)
}

func scanBatch(row rowScanner) (*ImportBatch, error) {
	var b ImportBatch
	var errMsg sql.NullString
	err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.JobsFilename,
		&b.ReceiptsFilename,
		&b.TimesheetsFilename,
		&b.JobsHash,
		&b.ReceiptsHash,
		&b.TimesheetsHash,
		&b.RowCountJobs,
		&b.RowCountReceipts,
		&b.RowCountTimesheets,
		&b.Status,
		&errMsg,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.ErrorMessage = stringPtr(errMsg)
	return &b, nil
}
