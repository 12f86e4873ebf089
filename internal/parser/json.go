package parser

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/datsun80zx/jobinsights/internal/model"
)

// DecodeBundle decodes {"jobs": [...], "receipts": [...], "timesheets": [...]}.
// A missing or null collection decodes as empty; any other non-array value is
// a structural failure.
func DecodeBundle(data []byte) (*Bundle, error) {
	root, err := parseObject(data, "decode bundle")
	if err != nil {
		return nil, err
	}

	jobs, err := jobsFrom(root.Get("jobs"), "decode jobs")
	if err != nil {
		return nil, err
	}
	receipts, err := receiptsFrom(root.Get("receipts"), "decode receipts")
	if err != nil {
		return nil, err
	}
	timesheets, err := timesheetsFrom(root.Get("timesheets"), "decode timesheets")
	if err != nil {
		return nil, err
	}

	return &Bundle{Jobs: jobs, Receipts: receipts, Timesheets: timesheets}, nil
}

// DecodeJobRequest decodes {"job": {...}, "receipts": [...], "timesheets": [...]}
func DecodeJobRequest(data []byte) (*JobRequest, error) {
	root, err := parseObject(data, "decode job request")
	if err != nil {
		return nil, err
	}

	jobResult := root.Get("job")
	if !jobResult.IsObject() {
		return nil, model.NewEngineError("decode job", eris.New("job must be an object"))
	}
	job := jobFrom(jobResult)

	receipts, err := receiptsFrom(root.Get("receipts"), "decode receipts")
	if err != nil {
		return nil, err
	}
	timesheets, err := timesheetsFrom(root.Get("timesheets"), "decode timesheets")
	if err != nil {
		return nil, err
	}

	return &JobRequest{Job: &job, Receipts: receipts, Timesheets: timesheets}, nil
}

// DecodeJobs decodes a JSON array of jobs
func DecodeJobs(data []byte) ([]model.JobRecord, error) {
	root, err := parseDocument(data, "decode jobs")
	if err != nil {
		return nil, err
	}
	return jobsFrom(root, "decode jobs")
}

// DecodeReceipts decodes a JSON array of receipts
func DecodeReceipts(data []byte) ([]model.ReceiptRecord, error) {
	root, err := parseDocument(data, "decode receipts")
	if err != nil {
		return nil, err
	}
	return receiptsFrom(root, "decode receipts")
}

// DecodeTimesheets decodes a JSON array of timesheets
func DecodeTimesheets(data []byte) ([]model.TimesheetRecord, error) {
	root, err := parseDocument(data, "decode timesheets")
	if err != nil {
		return nil, err
	}
	return timesheetsFrom(root, "decode timesheets")
}

func parseDocument(data []byte, op string) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, model.NewEngineError(op, eris.New("malformed JSON"))
	}
	return gjson.ParseBytes(data), nil
}

func parseObject(data []byte, op string) (gjson.Result, error) {
	root, err := parseDocument(data, op)
	if err != nil {
		return root, err
	}
	if !root.IsObject() {
		return root, model.NewEngineError(op, eris.New("payload must be a JSON object"))
	}
	return root, nil
}

// eachObject walks a collection, failing if it is not an array of objects
func eachObject(collection gjson.Result, op string, fn func(gjson.Result)) error {
	if !collection.Exists() || collection.Type == gjson.Null {
		return nil
	}
	if !collection.IsArray() {
		return model.NewEngineError(op, eris.New("collection is not an array"))
	}

	var err error
	idx := 0
	collection.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			err = model.NewEngineError(op, eris.Errorf("element %d is not an object", idx))
			return false
		}
		fn(item)
		idx++
		return true
	})
	return err
}

func jobsFrom(collection gjson.Result, op string) ([]model.JobRecord, error) {
	jobs := make([]model.JobRecord, 0)
	err := eachObject(collection, op, func(item gjson.Result) {
		jobs = append(jobs, jobFrom(item))
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func receiptsFrom(collection gjson.Result, op string) ([]model.ReceiptRecord, error) {
	receipts := make([]model.ReceiptRecord, 0)
	err := eachObject(collection, op, func(item gjson.Result) {
		receipts = append(receipts, model.ReceiptRecord{
			ID:     stringField(item, "id"),
			JobID:  nullableStringField(item, "job_id", "jobId"),
			Amount: decimalField(item, "amount"),
			Date:   dateField(item, "date"),
		})
	})
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

func timesheetsFrom(collection gjson.Result, op string) ([]model.TimesheetRecord, error) {
	timesheets := make([]model.TimesheetRecord, 0)
	err := eachObject(collection, op, func(item gjson.Result) {
		timesheets = append(timesheets, model.TimesheetRecord{
			ID:         stringField(item, "id"),
			JobID:      nullableStringField(item, "job_id", "jobId"),
			UserID:     stringField(item, "user_id", "userId"),
			Hours:      decimalField(item, "hours"),
			HourlyRate: decimalField(item, "hourly_rate", "hourlyRate"),
			Date:       dateField(item, "date"),
		})
	})
	if err != nil {
		return nil, err
	}
	return timesheets, nil
}

func jobFrom(item gjson.Result) model.JobRecord {
	return model.JobRecord{
		ID:           stringField(item, "id"),
		Status:       strings.ToLower(stringField(item, "status")),
		ProjectValue: decimalField(item, "project_value", "projectValue"),
		AmountPaid:   decimalField(item, "amount_paid", "amountPaid"),
		StartDate:    dateField(item, "start_date", "startDate"),
		EndDate:      dateField(item, "end_date", "endDate"),
		ClientName:   stringField(item, "client_name", "clientName"),
		JobName:      stringField(item, "job_name", "jobName", "name"),
	}
}

// field returns the first alias present and not null
func field(item gjson.Result, keys ...string) gjson.Result {
	for _, key := range keys {
		if r := item.Get(key); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

func stringField(item gjson.Result, keys ...string) string {
	r := field(item, keys...)
	if r.IsObject() || r.IsArray() {
		return ""
	}
	return strings.TrimSpace(r.String())
}

func nullableStringField(item gjson.Result, keys ...string) *string {
	return parseNullableString(stringField(item, keys...))
}

// decimalField accepts JSON numbers and currency-formatted strings; anything
// else is zero
func decimalField(item gjson.Result, keys ...string) decimal.Decimal {
	r := field(item, keys...)
	switch r.Type {
	case gjson.Number:
		return parseLenientDecimal(r.Raw)
	case gjson.String:
		return parseLenientDecimal(r.Str)
	default:
		return decimal.Zero
	}
}

// dateField accepts date strings and epoch milliseconds
func dateField(item gjson.Result, keys ...string) *time.Time {
	r := field(item, keys...)
	switch r.Type {
	case gjson.Number:
		t := time.UnixMilli(r.Int()).UTC()
		return &t
	case gjson.String:
		return parseNullableDate(r.Str)
	default:
		return nil
	}
}
