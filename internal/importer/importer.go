// Package importer loads jobs, receipts and timesheets CSV exports into the
// store as one deduplicated import batch.
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datsun80zx/jobinsights/internal/model"
	"github.com/datsun80zx/jobinsights/internal/parser"
	"github.com/datsun80zx/jobinsights/internal/store"
)

// Files names the three CSV exports of one import
type Files struct {
	Jobs       string
	Receipts   string
	Timesheets string
}

// Importer handles the import of CSV exports
type Importer struct {
	db      *sql.DB
	queries *store.Queries
	parser  *parser.CSVParser
}

// NewImporter creates a new importer instance
func NewImporter(database *sql.DB) *Importer {
	return &Importer{
		db:      database,
		queries: store.New(database),
		parser:  parser.NewCSVParser(),
	}
}

// ImportResult contains the results of an import operation
type ImportResult struct {
	BatchID            int64
	JobsImported       int
	ReceiptsImported   int
	TimesheetsImported int
	ValidationResult   *ValidationResult
	Duration           time.Duration
	AlreadyImported    bool
}

// ImportFiles imports the three CSV files for ownerID in one transaction.
// Files that were already imported are detected by content hash and skipped.
func (i *Importer) ImportFiles(ctx context.Context, ownerID string, files Files) (*ImportResult, error) {
	startTime := time.Now()

	hashes, err := CalculateFileHashes(files)
	if err != nil {
		return nil, eris.Wrap(err, "failed to calculate file hashes")
	}

	existing, err := i.queries.FindImportBatch(ctx, ownerID, hashes)
	if err == nil {
		return &ImportResult{
			BatchID:         existing.ID,
			AlreadyImported: true,
			Duration:        time.Since(startTime),
		}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, eris.Wrap(err, "failed to check for existing import")
	}

	parsed, err := ParseFiles(i.parser, files)
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse files")
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback() // no-op after commit

	txQueries := store.New(tx)

	batch, err := txQueries.CreateImportBatch(ctx, store.CreateImportBatchParams{
		OwnerID:            ownerID,
		JobsFilename:       filepath.Base(files.Jobs),
		ReceiptsFilename:   filepath.Base(files.Receipts),
		TimesheetsFilename: filepath.Base(files.Timesheets),
		Hashes:             hashes,
		RowCountJobs:       len(parsed.Jobs),
		RowCountReceipts:   len(parsed.Receipts),
		RowCountTimesheets: len(parsed.Timesheets),
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to create import batch")
	}

	for idx, job := range parsed.Jobs {
		if err := txQueries.UpsertJob(ctx, ownerID, batch.ID, job); err != nil {
			return nil, eris.Wrapf(err, "failed to import job (row %d)", idx+2)
		}
	}
	for idx, r := range parsed.Receipts {
		if err := txQueries.UpsertReceipt(ctx, ownerID, batch.ID, r); err != nil {
			return nil, eris.Wrapf(err, "failed to import receipt (row %d)", idx+2)
		}
	}
	for idx, ts := range parsed.Timesheets {
		if err := txQueries.UpsertTimesheet(ctx, ownerID, batch.ID, ts); err != nil {
			return nil, eris.Wrapf(err, "failed to import timesheet (row %d)", idx+2)
		}
	}

	validationResult, err := ValidateImport(ctx, txQueries, ownerID, batch.ID)
	if err != nil {
		return nil, eris.Wrap(err, "validation failed")
	}

	if err := txQueries.UpdateImportBatchStatus(ctx, batch.ID, store.BatchSuccess, nil); err != nil {
		return nil, eris.Wrap(err, "failed to update batch status")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "failed to commit transaction")
	}

	zap.L().Info("import complete",
		zap.String("owner_id", ownerID),
		zap.Int64("batch_id", batch.ID),
		zap.Int("jobs", len(parsed.Jobs)),
		zap.Int("receipts", len(parsed.Receipts)),
		zap.Int("timesheets", len(parsed.Timesheets)),
		zap.Int("warnings", len(validationResult.Warnings)),
	)

	return &ImportResult{
		BatchID:            batch.ID,
		JobsImported:       len(parsed.Jobs),
		ReceiptsImported:   len(parsed.Receipts),
		TimesheetsImported: len(parsed.Timesheets),
		ValidationResult:   validationResult,
		Duration:           time.Since(startTime),
		AlreadyImported:    false,
	}, nil
}

// ParseFiles parses the CSV exports named in files. Jobs is required; an
// empty Receipts or Timesheets path yields an empty collection.
func ParseFiles(p *parser.CSVParser, files Files) (*parser.Bundle, error) {
	out := &parser.Bundle{
		Receipts:   []model.ReceiptRecord{},
		Timesheets: []model.TimesheetRecord{},
	}

	if files.Jobs == "" {
		return nil, eris.New("jobs file is required")
	}
	err := withFile(files.Jobs, "jobs", func(f *os.File) (err error) {
		out.Jobs, err = p.ParseJobs(f)
		return err
	})
	if err != nil {
		return nil, err
	}

	if files.Receipts != "" {
		err = withFile(files.Receipts, "receipts", func(f *os.File) (err error) {
			out.Receipts, err = p.ParseReceipts(f)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	if files.Timesheets != "" {
		err = withFile(files.Timesheets, "timesheets", func(f *os.File) (err error) {
			out.Timesheets, err = p.ParseTimesheets(f)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	assignMissingIDs(out, files)
	return out, nil
}

func withFile(path, kind string, fn func(*os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "failed to open %s file", kind)
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return eris.Wrapf(err, "failed to parse %s", kind)
	}
	return nil
}

// assignMissingIDs gives rows without an identifier a stable one derived from
// the file name and row number, so re-importing the same file updates rather
// than duplicates them.
func assignMissingIDs(b *parser.Bundle, files Files) {
	for idx := range b.Receipts {
		if b.Receipts[idx].ID == "" {
			b.Receipts[idx].ID = rowID(files.Receipts, idx)
		}
	}
	for idx := range b.Timesheets {
		if b.Timesheets[idx].ID == "" {
			b.Timesheets[idx].ID = rowID(files.Timesheets, idx)
		}
	}
}

func rowID(path string, idx int) string {
	return fmt.Sprintf("%s:%d", filepath.Base(path), idx+2)
}
