package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/datsun80zx/jobinsights/internal/model"
)

// Aggregate computes the portfolio snapshot over every record supplied.
// Receipts count toward material expense whether or not they are assigned
// to a job. HealthScore is left for the scorer to fill in.
func Aggregate(jobs []model.JobRecord, receipts []model.ReceiptRecord, timesheets []model.TimesheetRecord, now time.Time) model.MetricsSnapshot {
	var snap model.MetricsSnapshot

	revenue := decimal.Zero
	paid := decimal.Zero
	for _, job := range jobs {
		revenue = revenue.Add(job.ProjectValue)
		paid = paid.Add(job.AmountPaid)

		switch {
		case job.IsActive():
			snap.ActiveJobs++
		case job.IsCompleted():
			snap.CompletedJobs++
		case job.IsNotStarted():
			snap.NotStartedJobs++
		}
	}
	snap.TotalJobs = len(jobs)

	materials := decimal.Zero
	unassigned := decimal.Zero
	for _, r := range receipts {
		materials = materials.Add(r.Amount)
		if r.JobID == nil {
			snap.UnassignedReceipts++
			unassigned = unassigned.Add(r.Amount)
		}
		if isRecent(r.Date, now) {
			snap.RecentReceipts++
		}
	}
	snap.ReceiptCount = len(receipts)

	labor := sumLabor(timesheets, now)
	profit := revenue.Sub(labor.Cost).Sub(materials)

	snap.TotalRevenue = revenue.InexactFloat64()
	snap.TotalPaid = paid.InexactFloat64()
	snap.OutstandingBalance = revenue.Sub(paid).InexactFloat64()

	snap.TotalReceiptExpenses = materials.InexactFloat64()
	snap.UnassignedExpenses = unassigned.InexactFloat64()

	snap.TotalLaborHours = labor.Hours.InexactFloat64()
	snap.AverageHourlyRate = labor.AvgRate.InexactFloat64()
	snap.TotalLaborCost = labor.Cost.InexactFloat64()
	snap.TimesheetCount = labor.Entries
	snap.RecentTimesheets = labor.RecentRows

	// profit is rebuilt from the rounded fields so the identity holds exactly
	snap.GrossProfit = snap.TotalRevenue - snap.TotalLaborCost - snap.TotalReceiptExpenses
	snap.ProfitMargin = percent(profit, revenue)
	snap.LaborPercent = percent(labor.Cost, revenue)
	snap.MaterialsPercent = percent(materials, revenue)
	snap.PaymentCollectionRate = percent(paid, revenue)

	snap.UniqueWorkers = labor.Workers
	snap.AverageHoursPerWorker = ratio(labor.Hours, labor.Workers)
	snap.AverageJobValue = ratio(revenue, snap.TotalJobs)
	snap.AverageJobProfit = ratio(profit, snap.TotalJobs)

	return snap
}
