package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datsun80zx/jobinsights/internal/parser"
	"github.com/datsun80zx/jobinsights/internal/store"
)

const (
	jobsCSV = `Job ID,Job Name,Client Name,Status,Project Value,Amount Paid,Start Date,End Date
J-1,Kitchen,Acme,in-progress,"$10,000.00",8000,2024-05-01,2024-07-01
J-2,Deck,Lee,completed,0,0,,
`
	receiptsCSV = `Receipt ID,Job ID,Amount,Date
R-1,J-1,$1000.00,2024-06-01
,,45.10,2024-06-02
`
	timesheetsCSV = `Timesheet ID,Job ID,User ID,Hours,Hourly Rate,Date
T-1,J-1,u1,40,50,2024-06-03
`
)

var batchCols = []string{
	"id", "owner_id", "jobs_filename", "receipts_filename", "timesheets_filename",
	"jobs_hash", "receipts_hash", "timesheets_hash",
	"row_count_jobs", "row_count_receipts", "row_count_timesheets",
	"status", "error_message", "created_at",
}

func writeFiles(t *testing.T) Files {
	t.Helper()
	dir := t.TempDir()
	files := Files{
		Jobs:       filepath.Join(dir, "jobs.csv"),
		Receipts:   filepath.Join(dir, "receipts.csv"),
		Timesheets: filepath.Join(dir, "timesheets.csv"),
	}
	require.NoError(t, os.WriteFile(files.Jobs, []byte(jobsCSV), 0o644))
	require.NoError(t, os.WriteFile(files.Receipts, []byte(receiptsCSV), 0o644))
	require.NoError(t, os.WriteFile(files.Timesheets, []byte(timesheetsCSV), 0o644))
	return files
}

func TestCalculateFileHashes(t *testing.T) {
	files := writeFiles(t)

	hashes, err := CalculateFileHashes(files)
	require.NoError(t, err)
	assert.Len(t, hashes.Jobs, 64)
	assert.NotEqual(t, hashes.Jobs, hashes.Receipts)

	again, err := CalculateFileHashes(files)
	require.NoError(t, err)
	assert.Equal(t, hashes, again)

	files.Timesheets = filepath.Join(t.TempDir(), "missing.csv")
	_, err = CalculateFileHashes(files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timesheets file")
}

func TestImportFilesAlreadyImported(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	files := writeFiles(t)
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM import_batches WHERE owner_id = \$1`).
		WillReturnRows(sqlmock.NewRows(batchCols).AddRow(
			int64(4), "owner-1", "jobs.csv", "receipts.csv", "timesheets.csv",
			"a", "b", "c", 2, 2, 1, store.BatchSuccess, nil, created))

	result, err := NewImporter(db).ImportFiles(context.Background(), "owner-1", files)
	require.NoError(t, err)
	assert.True(t, result.AlreadyImported)
	assert.Equal(t, int64(4), result.BatchID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportFiles(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	files := writeFiles(t)
	created := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM import_batches WHERE owner_id = \$1`).WillReturnRows(sqlmock.NewRows(batchCols))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO import_batches`).
		WithArgs("owner-1", "jobs.csv", "receipts.csv", "timesheets.csv",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 2, 2, 1, store.BatchPending).
		WillReturnRows(sqlmock.NewRows(batchCols).AddRow(
			int64(9), "owner-1", "jobs.csv", "receipts.csv", "timesheets.csv",
			"a", "b", "c", 2, 2, 1, store.BatchPending, nil, created))
	mock.ExpectExec(`INSERT INTO jobs`).WithArgs("owner-1", "J-1", int64(9), "in-progress",
		sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "Acme", "Kitchen").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO jobs`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO receipts`).WithArgs("owner-1", "R-1", int64(9), "J-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO receipts`).WithArgs("owner-1", "receipts.csv:3", int64(9), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO timesheets`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT COUNT`).WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT DISTINCT ref.job_id`).WillReturnRows(sqlmock.NewRows([]string{"job_id"}))
	mock.ExpectQuery(`project_value = 0`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("J-2"))
	mock.ExpectExec(`UPDATE import_batches SET status`).WithArgs(int64(9), store.BatchSuccess, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := NewImporter(db).ImportFiles(context.Background(), "owner-1", files)
	require.NoError(t, err)

	assert.False(t, result.AlreadyImported)
	assert.Equal(t, int64(9), result.BatchID)
	assert.Equal(t, 2, result.JobsImported)
	assert.Equal(t, 2, result.ReceiptsImported)
	assert.Equal(t, 1, result.TimesheetsImported)

	v := result.ValidationResult
	require.NotNil(t, v)
	assert.Equal(t, 1, v.UnassignedReceipts)
	assert.Empty(t, v.OrphanedJobRefs)
	assert.Equal(t, []string{"J-2"}, v.JobsWithoutValue)
	assert.Equal(t, []string{
		"Found 1 receipts not assigned to a job",
		"Found 1 jobs without a project value",
	}, v.Warnings)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportFilesRollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	files := writeFiles(t)
	created := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM import_batches`).WillReturnRows(sqlmock.NewRows(batchCols))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO import_batches`).
		WillReturnRows(sqlmock.NewRows(batchCols).AddRow(
			int64(9), "owner-1", "jobs.csv", "receipts.csv", "timesheets.csv",
			"a", "b", "c", 2, 2, 1, store.BatchPending, nil, created))
	mock.ExpectExec(`INSERT INTO jobs`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	result, err := NewImporter(db).ImportFiles(context.Background(), "owner-1", files)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportFilesParseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	files := writeFiles(t)
	require.NoError(t, os.WriteFile(files.Jobs, []byte("Name,Status\nKitchen,active\n"), 0o644))

	mock.ExpectQuery(`FROM import_batches`).WillReturnRows(sqlmock.NewRows(batchCols))

	_, err = NewImporter(db).ImportFiles(context.Background(), "owner-1", files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job id column")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseFiles(t *testing.T) {
	files := writeFiles(t)

	bundle, err := ParseFiles(parser.NewCSVParser(), files)
	require.NoError(t, err)
	assert.Len(t, bundle.Jobs, 2)
	require.Len(t, bundle.Receipts, 2)
	assert.Equal(t, "R-1", bundle.Receipts[0].ID)
	assert.Equal(t, "receipts.csv:3", bundle.Receipts[1].ID)
	assert.Nil(t, bundle.Receipts[1].JobID)
	assert.Len(t, bundle.Timesheets, 1)
}

func TestParseFilesOptionalCollections(t *testing.T) {
	files := writeFiles(t)
	files.Receipts = ""
	files.Timesheets = ""

	bundle, err := ParseFiles(parser.NewCSVParser(), files)
	require.NoError(t, err)
	assert.Len(t, bundle.Jobs, 2)
	assert.NotNil(t, bundle.Receipts)
	assert.Empty(t, bundle.Receipts)
	assert.NotNil(t, bundle.Timesheets)
	assert.Empty(t, bundle.Timesheets)
}

func TestParseFilesRequiresJobs(t *testing.T) {
	_, err := ParseFiles(parser.NewCSVParser(), Files{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jobs file is required")

	_, err = ParseFiles(parser.NewCSVParser(), Files{Jobs: filepath.Join(t.TempDir(), "missing.csv")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open jobs file")
}
