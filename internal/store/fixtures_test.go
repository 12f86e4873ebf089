package store

import (
	"github.com/shopspring/decimal"

	"github.com/datsun80zx/jobinsights/internal/model"
)

func jobRecord(id string) model.JobRecord {
	return model.JobRecord{ID: id, Status: model.StatusActive, ProjectValue: decimal.NewFromInt(1000)}
}

func receiptRecord(id string, jobID *string) model.ReceiptRecord {
	return model.ReceiptRecord{ID: id, JobID: jobID, Amount: decimal.NewFromInt(25)}
}

func timesheetRecord(id string, jobID *string) model.TimesheetRecord {
	return model.TimesheetRecord{ID: id, JobID: jobID, UserID: "u1", Hours: decimal.NewFromInt(8), HourlyRate: decimal.NewFromInt(40)}
}
