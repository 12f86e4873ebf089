package insights

import (
	"fmt"
	"strings"

	"github.com/datsun80zx/jobinsights/internal/model"
)

// Job summary labels, in precedence order.
const (
	LabelCompletedSuccessfully = "Completed Successfully"
	LabelCompletedWithLoss     = "Completed with Loss"
	LabelNotStarted            = "Not Started"
	LabelNeedsAttention        = "Needs Attention"
	LabelPerformingWell        = "Performing Well"
	LabelInProgress            = "In Progress"
)

const (
	deadlineWarningDays = 7
	overBudget          = 100.0
	budgetWatch         = 80.0
	aheadOfSchedule     = 20.0
	stalledBurn         = 50.0
	stalledPayment      = 25.0
	highCostShare       = 40.0
	maxJobRisks         = 3
)

// jobFacts is everything a job check may judge
type jobFacts struct {
	job model.JobRecord
	m   model.JobMetricsSnapshot
}

func (f jobFacts) client() string {
	if name := strings.TrimSpace(f.job.ClientName); name != "" {
		return name
	}
	return "the client"
}

func isActive(f jobFacts) bool { return f.job.IsActive() }

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

var marginCheck = check[jobFacts]{
	name: "margin",
	findings: []finding[jobFacts]{
		{
			name:  "no-value",
			match: func(f jobFacts) bool { return f.m.ProjectValue == 0 },
			recommendation: func(jobFacts) string {
				return "Set a project value for this job so profitability can be tracked."
			},
		},
		{
			name:  "loss",
			match: func(f jobFacts) bool { return f.m.ProfitMargin < 0 },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Projected loss of %s: costs of %s exceed the project value of %s (%s margin).",
					FormatMoney(-f.m.GrossProfit), FormatMoney(f.m.TotalCost),
					FormatMoney(f.m.ProjectValue), FormatPercent(f.m.ProfitMargin))
			},
		},
		{
			name:  "thin",
			match: func(f jobFacts) bool { return f.m.ProfitMargin < 10 },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Low profit margin of %s (%s profit).",
					FormatPercent(f.m.ProfitMargin), FormatMoney(f.m.GrossProfit))
			},
			recommendation: func(jobFacts) string {
				return "Review labor and material costs to protect the remaining margin."
			},
		},
		{
			name:  "below-target",
			match: func(f jobFacts) bool { return f.m.ProfitMargin < marginTarget },
			recommendation: func(f jobFacts) string {
				return fmt.Sprintf("Profit margin of %s is below the %s target; look for savings on the remaining work.",
					FormatPercent(f.m.ProfitMargin), FormatPercent(marginTarget))
			},
		},
		{
			name: "healthy",
			recommendation: func(f jobFacts) string {
				return fmt.Sprintf("Healthy profit margin of %s (%s profit).",
					FormatPercent(f.m.ProfitMargin), FormatMoney(f.m.GrossProfit))
			},
		},
	},
}

var laborCheck = check[jobFacts]{
	name: "labor",
	findings: []finding[jobFacts]{
		{
			name:  "high",
			match: func(f jobFacts) bool { return f.m.LaborPercent > highCostShare },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Labor costs are %s of the project value (%s for %s hours).",
					FormatPercent(f.m.LaborPercent), FormatMoney(f.m.TotalLaborCost), formatHours(f.m.TotalLaborHours))
			},
			recommendation: func(jobFacts) string {
				return "Review crew hours and scheduling to bring labor below 40% of the project value."
			},
		},
		{name: "ok"},
	},
}

var materialsCheck = check[jobFacts]{
	name: "materials",
	findings: []finding[jobFacts]{
		{
			name:  "high",
			match: func(f jobFacts) bool { return f.m.MaterialsPercent > highCostShare },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Material costs are %s of the project value (%s across %s).",
					FormatPercent(f.m.MaterialsPercent), FormatMoney(f.m.TotalReceiptExpenses), plural(f.m.ReceiptCount, "receipt"))
			},
		},
		{name: "ok"},
	},
}

var completedProfitCheck = check[jobFacts]{
	name:    "completed-profit",
	applies: func(f jobFacts) bool { return f.job.IsCompleted() },
	findings: []finding[jobFacts]{
		{
			name:  "loss",
			match: func(f jobFacts) bool { return f.m.GrossProfit < 0 },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Job completed with a loss of %s.", FormatMoney(-f.m.GrossProfit))
			},
		},
		{
			name: "profit",
			recommendation: func(f jobFacts) string {
				return fmt.Sprintf("Job completed with a profit of %s (%s margin).",
					FormatMoney(f.m.GrossProfit), FormatPercent(f.m.ProfitMargin))
			},
		},
	},
}

var completedCollectionCheck = check[jobFacts]{
	name:    "completed-collection",
	applies: func(f jobFacts) bool { return f.job.IsCompleted() },
	findings: []finding[jobFacts]{
		{
			name:  "outstanding",
			match: func(f jobFacts) bool { return f.m.OutstandingBalance > 0 },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Outstanding balance of %s remains on a completed job.", FormatMoney(f.m.OutstandingBalance))
			},
			recommendation: func(f jobFacts) string {
				return fmt.Sprintf("Follow up with %s to collect the remaining %s.", f.client(), FormatMoney(f.m.OutstandingBalance))
			},
		},
		{
			name: "collected",
			recommendation: func(jobFacts) string {
				return "Payment fully collected."
			},
		},
	},
}

var startCheck = check[jobFacts]{
	name:    "start",
	applies: func(f jobFacts) bool { return f.job.IsNotStarted() },
	findings: []finding[jobFacts]{
		{
			name:  "unscheduled",
			match: func(f jobFacts) bool { return f.m.DaysElapsed == nil },
			recommendation: func(jobFacts) string {
				return "Set a start date to enable schedule tracking."
			},
		},
		{
			name:  "delayed",
			match: func(f jobFacts) bool { return *f.m.DaysElapsed > 0 },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Delayed start: the scheduled start date was %s ago.", plural(*f.m.DaysElapsed, "day"))
			},
			recommendation: func(jobFacts) string {
				return "Update the schedule or begin work on this job."
			},
		},
		{
			name:  "today",
			match: func(f jobFacts) bool { return *f.m.DaysElapsed == 0 },
			recommendation: func(jobFacts) string {
				return "Scheduled to start today."
			},
		},
		{
			name: "upcoming",
			recommendation: func(f jobFacts) string {
				return fmt.Sprintf("Scheduled to start in %s.", plural(-*f.m.DaysElapsed, "day"))
			},
		},
	},
}

var deadlineCheck = check[jobFacts]{
	name:    "deadline",
	applies: isActive,
	findings: []finding[jobFacts]{
		{
			name:  "no-end-date",
			match: func(f jobFacts) bool { return f.m.DaysRemaining == nil },
			recommendation: func(jobFacts) string {
				return "Set an end date to track schedule progress."
			},
		},
		{
			name:  "overdue",
			match: func(f jobFacts) bool { return *f.m.DaysRemaining < 0 },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Job is overdue by %s (end date %s).",
					plural(-*f.m.DaysRemaining, "day"), f.job.EndDate.Format("2006-01-02"))
			},
		},
		{
			name:  "near",
			match: func(f jobFacts) bool { return *f.m.DaysRemaining <= deadlineWarningDays },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Deadline approaching: %s remaining.", plural(*f.m.DaysRemaining, "day"))
			},
		},
		{
			name: "on-schedule",
			recommendation: func(f jobFacts) string {
				return fmt.Sprintf("%s remaining until the scheduled end date.", plural(*f.m.DaysRemaining, "day"))
			},
		},
	},
}

var budgetCheck = check[jobFacts]{
	name:    "budget",
	applies: func(f jobFacts) bool { return f.job.IsActive() && f.m.ProjectValue > 0 },
	findings: []finding[jobFacts]{
		{
			name:  "over",
			match: func(f jobFacts) bool { return f.m.BudgetUsed > overBudget },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Over budget: %s spent, %s of the %s project value.",
					FormatMoney(f.m.TotalCost), FormatPercent(f.m.BudgetUsed), FormatMoney(f.m.ProjectValue))
			},
		},
		{
			name:  "watch",
			match: func(f jobFacts) bool { return f.m.BudgetUsed >= budgetWatch },
			risk: func(f jobFacts) string {
				return fmt.Sprintf("%s of the budget has been used (%s of %s).",
					FormatPercent(f.m.BudgetUsed), FormatMoney(f.m.TotalCost), FormatMoney(f.m.ProjectValue))
			},
		},
		{
			name: "ahead-of-schedule",
			match: func(f jobFacts) bool {
				return f.m.TimeProgress != nil && f.m.BudgetUsed-*f.m.TimeProgress > aheadOfSchedule
			},
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Spending is ahead of schedule: %s of the budget used at %s of the timeline.",
					FormatPercent(f.m.BudgetUsed), FormatPercent(*f.m.TimeProgress))
			},
		},
		{name: "ok"},
	},
}

var paymentCheck = check[jobFacts]{
	name:    "payment",
	applies: isActive,
	findings: []finding[jobFacts]{
		{
			name: "stalled",
			match: func(f jobFacts) bool {
				return f.m.BudgetUsed >= stalledBurn && f.m.PaymentProgress < stalledPayment
			},
			risk: func(f jobFacts) string {
				return fmt.Sprintf("Payments are lagging: %s of the budget spent but only %s collected.",
					FormatPercent(f.m.BudgetUsed), FormatPercent(f.m.PaymentProgress))
			},
			recommendation: func(f jobFacts) string {
				return fmt.Sprintf("Invoice %s for a progress payment on completed work.", f.client())
			},
		},
		{name: "ok"},
	},
}

var costPerDayCheck = check[jobFacts]{
	name:    "cost-per-day",
	applies: isActive,
	findings: []finding[jobFacts]{
		{
			name:  "tracked",
			match: func(f jobFacts) bool { return f.m.CostPerDay != nil },
			recommendation: func(f jobFacts) string {
				return fmt.Sprintf("Average cost per day is %s over %s.",
					FormatMoney(*f.m.CostPerDay), plural(deref(f.m.DaysElapsed), "day"))
			},
		},
		{name: "untracked"},
	},
}

// jobChecks run in this order; their output order is part of the result
var jobChecks = []check[jobFacts]{
	marginCheck,
	laborCheck,
	materialsCheck,
	completedProfitCheck,
	completedCollectionCheck,
	startCheck,
	deadlineCheck,
	budgetCheck,
	paymentCheck,
	costPerDayCheck,
}

// summaryLabel is one row of the status label precedence table
type summaryLabel struct {
	label string
	match func(f jobFacts, risks int) bool
}

var summaryLabels = []summaryLabel{
	{LabelCompletedSuccessfully, func(f jobFacts, _ int) bool { return f.job.IsCompleted() && f.m.GrossProfit >= 0 }},
	{LabelCompletedWithLoss, func(f jobFacts, _ int) bool { return f.job.IsCompleted() }},
	{LabelNotStarted, func(f jobFacts, _ int) bool { return f.job.IsNotStarted() }},
	{LabelNeedsAttention, func(_ jobFacts, risks int) bool { return risks > maxJobRisks }},
	{LabelPerformingWell, func(f jobFacts, _ int) bool { return f.m.ProfitMargin > marginTarget && f.m.PaymentProgress > 70 }},
	{LabelInProgress, func(jobFacts, int) bool { return true }},
}

// analyzeJob runs every job check and builds the summary
func analyzeJob(job model.JobRecord, m model.JobMetricsSnapshot) (summary string, recommendations, risks []string) {
	f := jobFacts{job: job, m: m}

	recommendations = []string{}
	risks = []string{}
	for _, c := range jobChecks {
		risk, rec := c.evaluate(f)
		if risk != "" {
			risks = append(risks, risk)
		}
		if rec != "" {
			recommendations = append(recommendations, rec)
		}
	}

	label := LabelInProgress
	for _, s := range summaryLabels {
		if s.match(f, len(risks)) {
			label = s.label
			break
		}
	}

	summary = fmt.Sprintf("%s. Profit %s (%s margin) on %s, %s paid, %s flagged.",
		label, FormatMoney(m.GrossProfit), FormatPercent(m.ProfitMargin),
		FormatMoney(m.ProjectValue), FormatPercent(m.PaymentProgress), plural(len(risks), "risk"))

	return summary, recommendations, risks
}
