package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/datsun80zx/jobinsights/internal/metrics"
	"github.com/datsun80zx/jobinsights/internal/model"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func ptrString(v string) *string { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func daysFromNow(n int) *time.Time {
	t := testNow.AddDate(0, 0, n)
	return &t
}

func analyze(job model.JobRecord, receipts []model.ReceiptRecord, timesheets []model.TimesheetRecord) (string, []string, []string) {
	return analyzeJob(job, metrics.AggregateJob(job, receipts, timesheets, testNow))
}

func labor(jobID string, hours, rate string) model.TimesheetRecord {
	return model.TimesheetRecord{ID: "t-" + jobID, JobID: ptrString(jobID), UserID: "u1", Hours: dec(hours), HourlyRate: dec(rate), Date: daysFromNow(-1)}
}

func receipt(jobID, amount string) model.ReceiptRecord {
	return model.ReceiptRecord{ID: "r-" + jobID, JobID: ptrString(jobID), Amount: dec(amount), Date: daysFromNow(-1)}
}

func TestAnalyzeOverdueJob(t *testing.T) {
	job := model.JobRecord{
		ID:           "j1",
		Status:       "in-progress",
		ProjectValue: dec("10000"),
		AmountPaid:   dec("5000"),
		StartDate:    daysFromNow(-100),
		EndDate:      daysFromNow(-10),
	}

	summary, recs, risks := analyze(job, nil, nil)

	assert.Contains(t, risks, "Job is overdue by 10 days (end date 2024-06-05).")
	for _, r := range recs {
		assert.NotContains(t, r, "overdue")
	}
	assert.Contains(t, summary, LabelInProgress)
}

func TestAnalyzeDeadlineNear(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "active", ProjectValue: dec("1000"), StartDate: daysFromNow(-10), EndDate: daysFromNow(7)}

	_, _, risks := analyze(job, nil, nil)
	assert.Contains(t, risks, "Deadline approaching: 7 days remaining.")

	job.EndDate = daysFromNow(8)
	_, recs, risks := analyze(job, nil, nil)
	assert.Contains(t, recs, "8 days remaining until the scheduled end date.")
	for _, r := range risks {
		assert.NotContains(t, r, "Deadline")
	}
}

func TestAnalyzeMissingEndDate(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "in-progress", ProjectValue: dec("1000")}
	_, recs, _ := analyze(job, nil, nil)
	assert.Contains(t, recs, "Set an end date to track schedule progress.")
}

func TestAnalyzeMarginBands(t *testing.T) {
	tests := []struct {
		name    string
		cost    string
		wantRec string
		wantRsk string
	}{
		{"loss", "1200", "", "Projected loss of $200.00: costs of $1,200.00 exceed the project value of $1,000.00 (-20.0% margin)."},
		{"thin", "950", "Review labor and material costs to protect the remaining margin.", "Low profit margin of 5.0% ($50.00 profit)."},
		{"below target", "850", "Profit margin of 15.0% is below the 20.0% target; look for savings on the remaining work.", ""},
		{"healthy", "500", "Healthy profit margin of 50.0% ($500.00 profit).", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := model.JobRecord{ID: "j1", Status: "other", ProjectValue: dec("1000")}
			_, recs, risks := analyze(job, []model.ReceiptRecord{receipt("j1", tt.cost)}, nil)
			if tt.wantRec != "" {
				assert.Contains(t, recs, tt.wantRec)
			}
			if tt.wantRsk != "" {
				assert.Contains(t, risks, tt.wantRsk)
			}
		})
	}
}

func TestAnalyzeNoProjectValue(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "in-progress"}
	_, recs, risks := analyze(job, nil, nil)
	assert.Contains(t, recs, "Set a project value for this job so profitability can be tracked.")
	assert.Empty(t, risks)
}

func TestAnalyzeHighLaborAndMaterials(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "other", ProjectValue: dec("1000")}
	_, recs, risks := analyze(job,
		[]model.ReceiptRecord{receipt("j1", "450")},
		[]model.TimesheetRecord{labor("j1", "10", "45")},
	)

	assert.Contains(t, risks, "Labor costs are 45.0% of the project value ($450.00 for 10.0 hours).")
	assert.Contains(t, risks, "Material costs are 45.0% of the project value ($450.00 across 1 receipt).")
	assert.Contains(t, recs, "Review crew hours and scheduling to bring labor below 40% of the project value.")
}

func TestAnalyzeCompletedJob(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "completed", ProjectValue: dec("1000"), AmountPaid: dec("1000"), ClientName: "Acme"}

	summary, recs, risks := analyze(job, []model.ReceiptRecord{receipt("j1", "400")}, nil)
	assert.Contains(t, recs, "Job completed with a profit of $600.00 (60.0% margin).")
	assert.Contains(t, recs, "Payment fully collected.")
	assert.Empty(t, risks)
	assert.Equal(t, "Completed Successfully. Profit $600.00 (60.0% margin) on $1,000.00, 100.0% paid, 0 risks flagged.", summary)

	job.AmountPaid = dec("700")
	_, recs, risks = analyze(job, []model.ReceiptRecord{receipt("j1", "1100")}, nil)
	assert.Contains(t, risks, "Job completed with a loss of $100.00.")
	assert.Contains(t, risks, "Outstanding balance of $300.00 remains on a completed job.")
	assert.Contains(t, recs, "Follow up with Acme to collect the remaining $300.00.")
}

func TestAnalyzeCompletedWithLossLabel(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "completed", ProjectValue: dec("1000"), AmountPaid: dec("1000")}
	summary, _, _ := analyze(job, []model.ReceiptRecord{receipt("j1", "1500")}, nil)
	assert.Contains(t, summary, LabelCompletedWithLoss)
}

func TestAnalyzeNotStarted(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "not-started", ProjectValue: dec("1000"), StartDate: daysFromNow(-3)}

	summary, recs, risks := analyze(job, nil, nil)
	assert.Contains(t, risks, "Delayed start: the scheduled start date was 3 days ago.")
	assert.Contains(t, recs, "Update the schedule or begin work on this job.")
	assert.Contains(t, summary, LabelNotStarted)

	job.StartDate = daysFromNow(5)
	_, recs, risks = analyze(job, nil, nil)
	assert.Contains(t, recs, "Scheduled to start in 5 days.")
	assert.Empty(t, risks)

	job.StartDate = nil
	_, recs, _ = analyze(job, nil, nil)
	assert.Contains(t, recs, "Set a start date to enable schedule tracking.")
}

func TestAnalyzeStartsToday(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	job := model.JobRecord{ID: "j1", Status: "not-started", ProjectValue: dec("1000"), StartDate: &today}

	_, recs, risks := analyze(job, nil, nil)
	assert.Contains(t, recs, "Scheduled to start today.")
	assert.Empty(t, risks)

	tonight := time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC)
	job.StartDate = &tonight
	_, recs, risks = analyze(job, nil, nil)
	assert.Contains(t, recs, "Scheduled to start today.")
	assert.Empty(t, risks)
}

func TestAnalyzeBudgetBurn(t *testing.T) {
	base := model.JobRecord{ID: "j1", Status: "in-progress", ProjectValue: dec("1000"), AmountPaid: dec("900"), StartDate: daysFromNow(-50), EndDate: daysFromNow(50)}

	_, _, risks := analyze(base, []model.ReceiptRecord{receipt("j1", "1100")}, nil)
	assert.Contains(t, risks, "Over budget: $1,100.00 spent, 110.0% of the $1,000.00 project value.")

	_, _, risks = analyze(base, []model.ReceiptRecord{receipt("j1", "800")}, nil)
	assert.Contains(t, risks, "80.0% of the budget has been used ($800.00 of $1,000.00).")

	// 75% spent at 50% of the timeline
	_, _, risks = analyze(base, []model.ReceiptRecord{receipt("j1", "750")}, nil)
	assert.Contains(t, risks, "Spending is ahead of schedule: 75.0% of the budget used at 50.0% of the timeline.")

	_, _, risks = analyze(base, []model.ReceiptRecord{receipt("j1", "600")}, nil)
	for _, r := range risks {
		assert.NotContains(t, r, "budget")
	}
}

func TestAnalyzePaymentStalled(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "in-progress", ProjectValue: dec("1000"), AmountPaid: dec("100"), ClientName: "Acme"}

	_, recs, risks := analyze(job, []model.ReceiptRecord{receipt("j1", "500")}, nil)
	assert.Contains(t, risks, "Payments are lagging: 50.0% of the budget spent but only 10.0% collected.")
	assert.Contains(t, recs, "Invoice Acme for a progress payment on completed work.")

	job.AmountPaid = dec("250")
	_, _, risks = analyze(job, []model.ReceiptRecord{receipt("j1", "500")}, nil)
	for _, r := range risks {
		assert.NotContains(t, r, "lagging")
	}
}

func TestAnalyzeCostPerDay(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "active", ProjectValue: dec("10000"), StartDate: daysFromNow(-10)}
	_, recs, _ := analyze(job, []model.ReceiptRecord{receipt("j1", "500")}, nil)
	assert.Contains(t, recs, "Average cost per day is $50.00 over 10 days.")
}

func TestAnalyzeSummaryLabels(t *testing.T) {
	// well paid and profitable
	job := model.JobRecord{ID: "j1", Status: "in-progress", ProjectValue: dec("1000"), AmountPaid: dec("800"), StartDate: daysFromNow(-5), EndDate: daysFromNow(30)}
	summary, _, _ := analyze(job, []model.ReceiptRecord{receipt("j1", "300")}, nil)
	assert.Contains(t, summary, LabelPerformingWell)

	// loss, high labor, over budget, overdue
	job = model.JobRecord{ID: "j1", Status: "in-progress", ProjectValue: dec("1000"), AmountPaid: dec("900"), StartDate: daysFromNow(-30), EndDate: daysFromNow(-2)}
	summary, _, risks := analyze(job, nil, []model.TimesheetRecord{labor("j1", "30", "50")})
	assert.Greater(t, len(risks), 3)
	assert.Contains(t, summary, LabelNeedsAttention)
}

func TestAnalyzeIgnoresOtherJobs(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "other", ProjectValue: dec("1000")}
	_, _, risks := analyze(job, []model.ReceiptRecord{receipt("j2", "5000")}, []model.TimesheetRecord{labor("j2", "100", "100")})
	assert.Empty(t, risks)
}
