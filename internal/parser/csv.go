package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/datsun80zx/jobinsights/internal/model"
)

type CSVParser struct {
	TrimWhitespace bool
	SkipEmptyRows  bool
}

func NewCSVParser() *CSVParser {
	return &CSVParser{
		TrimWhitespace: true,
		SkipEmptyRows:  true,
	}
}

// ParseJobs reads a Jobs CSV and returns parsed records
func (p *CSVParser) ParseJobs(r io.Reader) ([]model.JobRecord, error) {
	colMap, rows, err := p.readAll(r)
	if err != nil {
		return nil, err
	}
	if _, ok := lookupColumn(colMap, "job id", "id"); !ok {
		return nil, fmt.Errorf("jobs CSV is missing a job id column")
	}

	jobs := make([]model.JobRecord, 0, len(rows))
	for _, row := range rows {
		job, err := p.parseJobRow(row.fields, colMap, row.line)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// ParseReceipts reads a Receipts CSV and returns parsed records
func (p *CSVParser) ParseReceipts(r io.Reader) ([]model.ReceiptRecord, error) {
	colMap, rows, err := p.readAll(r)
	if err != nil {
		return nil, err
	}

	receipts := make([]model.ReceiptRecord, 0, len(rows))
	for _, row := range rows {
		record := row.fields
		receipts = append(receipts, model.ReceiptRecord{
			ID:     getField(record, colMap, "receipt id", "id"),
			JobID:  parseNullableString(getField(record, colMap, "job id")),
			Amount: parseLenientDecimal(getField(record, colMap, "amount", "total")),
			Date:   parseNullableDate(getField(record, colMap, "date", "receipt date")),
		})
	}

	return receipts, nil
}

// ParseTimesheets reads a Timesheets CSV and returns parsed records
func (p *CSVParser) ParseTimesheets(r io.Reader) ([]model.TimesheetRecord, error) {
	colMap, rows, err := p.readAll(r)
	if err != nil {
		return nil, err
	}

	timesheets := make([]model.TimesheetRecord, 0, len(rows))
	for _, row := range rows {
		record := row.fields
		timesheets = append(timesheets, model.TimesheetRecord{
			ID:         getField(record, colMap, "timesheet id", "id"),
			JobID:      parseNullableString(getField(record, colMap, "job id")),
			UserID:     getField(record, colMap, "user id", "worker id", "worker"),
			Hours:      parseLenientDecimal(getField(record, colMap, "hours")),
			HourlyRate: parseLenientDecimal(getField(record, colMap, "hourly rate", "rate")),
			Date:       parseNullableDate(getField(record, colMap, "date", "work date")),
		})
	}

	return timesheets, nil
}

// csvRow is a data record with the file line it starts on
type csvRow struct {
	line   int
	fields []string
}

// readAll reads the whole CSV and splits off the header row. Each row keeps
// its line number in the file, so skipped blank lines and multi-line quoted
// fields do not shift the numbers reported in a ValidationError.
func (p *CSVParser) readAll(r io.Reader) (map[string]int, []csvRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = p.TrimWhitespace
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var colMap map[string]int
	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if colMap == nil {
			colMap = buildColumnMap(record)
			continue
		}
		if p.SkipEmptyRows && isEmptyRow(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, csvRow{line: line, fields: record})
	}

	if colMap == nil {
		return nil, nil, fmt.Errorf("CSV file is empty")
	}

	return colMap, rows, nil
}

// buildColumnMap creates a case-insensitive map of column name → index.
// Underscores and hyphens are treated as spaces so "project_value" and
// "Project Value" resolve to the same column.
func buildColumnMap(headers []string) map[string]int {
	m := make(map[string]int)
	for i, header := range headers {
		m[normalizeColumn(header)] = i
	}
	return m
}

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// parseJobRow converts a CSV row into a JobRecord
func (p *CSVParser) parseJobRow(record []string, colMap map[string]int, rowNum int) (model.JobRecord, error) {
	var job model.JobRecord
	var err error

	job.ID, err = parseRequiredString(getField(record, colMap, "job id", "id"), rowNum, "Job ID")
	if err != nil {
		return job, err
	}

	job.Status = strings.ToLower(getField(record, colMap, "status"))
	job.JobName = getField(record, colMap, "job name", "name")
	job.ClientName = getField(record, colMap, "client name", "client", "customer name")

	job.ProjectValue = parseLenientDecimal(getField(record, colMap, "project value", "contract value"))
	job.AmountPaid = parseLenientDecimal(getField(record, colMap, "amount paid", "paid"))

	job.StartDate = parseNullableDate(getField(record, colMap, "start date"))
	job.EndDate = parseNullableDate(getField(record, colMap, "end date", "due date"))

	return job, nil
}

// lookupColumn returns the index of the first alias present in the header
func lookupColumn(colMap map[string]int, aliases ...string) (int, bool) {
	for _, alias := range aliases {
		if idx, ok := colMap[normalizeColumn(alias)]; ok {
			return idx, true
		}
	}
	return 0, false
}

// getField safely retrieves a field from a CSV row by column name or alias
func getField(record []string, colMap map[string]int, aliases ...string) string {
	idx, ok := lookupColumn(colMap, aliases...)
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func isEmptyRow(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
