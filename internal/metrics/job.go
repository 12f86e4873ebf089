package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/datsun80zx/jobinsights/internal/model"
)

// ScopeReceipts keeps only the receipts assigned to jobID
func ScopeReceipts(receipts []model.ReceiptRecord, jobID string) []model.ReceiptRecord {
	var scoped []model.ReceiptRecord
	for _, r := range receipts {
		if model.BelongsTo(r.JobID, jobID) {
			scoped = append(scoped, r)
		}
	}
	return scoped
}

// ScopeTimesheets keeps only the timesheets logged against jobID
func ScopeTimesheets(timesheets []model.TimesheetRecord, jobID string) []model.TimesheetRecord {
	var scoped []model.TimesheetRecord
	for _, ts := range timesheets {
		if model.BelongsTo(ts.JobID, jobID) {
			scoped = append(scoped, ts)
		}
	}
	return scoped
}

// AggregateJob computes the snapshot for a single job. Records whose job_id
// does not match the job are ignored.
func AggregateJob(job model.JobRecord, receipts []model.ReceiptRecord, timesheets []model.TimesheetRecord, now time.Time) model.JobMetricsSnapshot {
	receipts = ScopeReceipts(receipts, job.ID)
	timesheets = ScopeTimesheets(timesheets, job.ID)

	var snap model.JobMetricsSnapshot

	materials := decimal.Zero
	for _, r := range receipts {
		materials = materials.Add(r.Amount)
		if isRecent(r.Date, now) {
			snap.RecentReceipts++
		}
	}
	snap.ReceiptCount = len(receipts)

	labor := sumLabor(timesheets, now)
	spent := labor.Cost.Add(materials)
	profit := job.ProjectValue.Sub(spent)

	snap.ProjectValue = job.ProjectValue.InexactFloat64()
	snap.AmountPaid = job.AmountPaid.InexactFloat64()
	snap.OutstandingBalance = job.ProjectValue.Sub(job.AmountPaid).InexactFloat64()
	snap.PaymentProgress = percent(job.AmountPaid, job.ProjectValue)

	snap.TotalReceiptExpenses = materials.InexactFloat64()
	snap.TotalLaborHours = labor.Hours.InexactFloat64()
	snap.AverageHourlyRate = labor.AvgRate.InexactFloat64()
	snap.TotalLaborCost = labor.Cost.InexactFloat64()
	snap.TimesheetCount = labor.Entries
	snap.RecentTimesheets = labor.RecentRows
	snap.UniqueWorkers = labor.Workers

	snap.TotalCost = snap.TotalLaborCost + snap.TotalReceiptExpenses
	snap.GrossProfit = snap.ProjectValue - snap.TotalLaborCost - snap.TotalReceiptExpenses
	snap.ProfitMargin = percent(profit, job.ProjectValue)
	snap.LaborPercent = percent(labor.Cost, job.ProjectValue)
	snap.MaterialsPercent = percent(materials, job.ProjectValue)
	snap.BudgetUsed = percent(spent, job.ProjectValue)

	applyTimeline(&snap, job, spent, now)

	return snap
}

// applyTimeline fills the date-dependent fields that the job's dates allow
func applyTimeline(snap *model.JobMetricsSnapshot, job model.JobRecord, spent decimal.Decimal, now time.Time) {
	if job.StartDate != nil {
		elapsed := DaysBetween(*job.StartDate, now)
		snap.DaysElapsed = &elapsed

		if elapsed > 0 {
			perDay := spent.Div(decimal.NewFromInt(int64(elapsed))).InexactFloat64()
			snap.CostPerDay = &perDay
		}
	}

	if job.EndDate != nil {
		remaining := DaysBetween(now, *job.EndDate)
		snap.DaysRemaining = &remaining
	}

	if job.StartDate != nil && job.EndDate != nil {
		duration := DaysBetween(*job.StartDate, *job.EndDate)
		snap.ProjectDuration = &duration

		if duration > 0 && snap.DaysElapsed != nil {
			progress := float64(*snap.DaysElapsed) / float64(duration) * 100
			snap.TimeProgress = &progress
		}
	}
}
