package insights

import (
	"fmt"

	"github.com/datsun80zx/jobinsights/internal/model"
)

// Portfolio thresholds shared by several topics.
const (
	healthyMargin      = 15.0
	marginTarget       = 20.0
	maxActiveJobs      = 8
	growthMinCompleted = 5
	overloadedHours    = 200.0
	underusedHours     = 20.0
)

// Insight categories, in the order they are emitted.
const (
	CategoryProfitability    = "profitability"
	CategoryPayment          = "payment_collection"
	CategoryLabor            = "labor_cost"
	CategoryMaterials        = "material_cost"
	CategoryWorkforce        = "workforce"
	CategoryProjectPortfolio = "project_portfolio"
	CategoryGrowth           = "business_growth"
)

type snapshot = model.MetricsSnapshot

func noRevenue(m snapshot) bool { return m.TotalRevenue == 0 }

func marginAndProfit(m snapshot) string {
	return fmt.Sprintf("%s (%s profit on %s revenue)",
		FormatPercent(m.ProfitMargin), FormatMoney(m.GrossProfit), FormatMoney(m.TotalRevenue))
}

func collected(m snapshot) string {
	return fmt.Sprintf("%s of revenue collected (%s of %s), %s outstanding",
		FormatPercent(m.PaymentCollectionRate), FormatMoney(m.TotalPaid),
		FormatMoney(m.TotalRevenue), FormatMoney(m.OutstandingBalance))
}

func laborDetail(m snapshot) string {
	return fmt.Sprintf("%s of revenue (%s for %s hours at an average of %s/hour)",
		FormatPercent(m.LaborPercent), FormatMoney(m.TotalLaborCost),
		formatHours(m.TotalLaborHours), FormatMoney(m.AverageHourlyRate))
}

func materialsDetail(m snapshot) string {
	return fmt.Sprintf("%s of revenue (%s across %s)",
		FormatPercent(m.MaterialsPercent), FormatMoney(m.TotalReceiptExpenses), plural(m.ReceiptCount, "receipt"))
}

var profitabilityTopic = topic[snapshot]{
	category: CategoryProfitability,
	rules: []rule[snapshot]{
		{
			name:     "no-revenue",
			match:    noRevenue,
			severity: model.SeverityInfo,
			title:    "No Revenue Recorded",
			describe: func(m snapshot) string {
				return fmt.Sprintf("No project value has been recorded yet, so profit margin cannot be measured. Costs to date total %s.",
					FormatMoney(m.TotalLaborCost+m.TotalReceiptExpenses))
			},
			actions: staticActions[snapshot]("Add project values to your jobs to track profitability"),
		},
		{
			name:     "low",
			match:    func(m snapshot) bool { return m.ProfitMargin < 10 },
			severity: model.SeverityCritical,
			title:    "Low Profit Margins",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Your profit margin is %s, well below the %s minimum for a healthy contracting business.",
					marginAndProfit(m), FormatPercent(healthyMargin))
			},
			actions: staticActions[snapshot](
				"Review pricing on upcoming bids",
				"Identify jobs with cost overruns",
				"Reduce material waste and unbilled labor",
			),
		},
		{
			name:     "below-average",
			match:    func(m snapshot) bool { return m.ProfitMargin < healthyMargin },
			severity: model.SeverityWarning,
			title:    "Below-Average Profit Margins",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Your profit margin is %s, below the %s industry benchmark.",
					marginAndProfit(m), FormatPercent(healthyMargin))
			},
			actions: staticActions[snapshot](
				"Review your pricing strategy",
				"Track costs per job more closely",
			),
		},
		{
			name:     "moderate",
			match:    func(m snapshot) bool { return m.ProfitMargin < 25 },
			severity: model.SeverityInfo,
			title:    "Moderate Profit Margins",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Your profit margin is %s. There is room to improve toward 25%%.", marginAndProfit(m))
			},
			actions: staticActions[snapshot]("Look for recurring costs that can be negotiated down"),
		},
		{
			name:     "healthy",
			severity: model.SeverityInfo,
			title:    "Healthy Profit Margins",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Your profit margin is %s. Keep pricing and cost control consistent.", marginAndProfit(m))
			},
			actions: staticActions[snapshot]("Document what makes your most profitable jobs work"),
		},
	},
}

var paymentTopic = topic[snapshot]{
	category: CategoryPayment,
	rules: []rule[snapshot]{
		{
			name:     "no-revenue",
			match:    noRevenue,
			severity: model.SeverityInfo,
			title:    "No Payments to Track",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Payment collection cannot be measured without project values. Payments received total %s.",
					FormatMoney(m.TotalPaid))
			},
			actions: staticActions[snapshot]("Record project values and payments as jobs are invoiced"),
		},
		{
			name:     "poor",
			match:    func(m snapshot) bool { return m.PaymentCollectionRate < 60 },
			severity: model.SeverityCritical,
			title:    "Payment Collection Needs Attention",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Only %s.", collected(m))
			},
			actions: staticActions[snapshot](
				"Follow up on overdue invoices",
				"Require deposits before starting work",
				"Invoice at project milestones",
			),
		},
		{
			name:     "slow",
			match:    func(m snapshot) bool { return m.PaymentCollectionRate < 75 },
			severity: model.SeverityWarning,
			title:    "Slow Payment Collection",
			describe: func(m snapshot) string {
				return fmt.Sprintf("You have %s.", collected(m))
			},
			actions: staticActions[snapshot](
				"Send payment reminders for open balances",
				"Offer convenient payment options",
			),
		},
		{
			name:     "good",
			match:    func(m snapshot) bool { return m.PaymentCollectionRate < 90 },
			severity: model.SeverityInfo,
			title:    "Good Payment Collection",
			describe: func(m snapshot) string {
				return fmt.Sprintf("You have %s.", collected(m))
			},
			actions: staticActions[snapshot]("Keep invoicing promptly as work is completed"),
		},
		{
			name:     "excellent",
			severity: model.SeverityInfo,
			title:    "Excellent Payment Collection",
			describe: func(m snapshot) string {
				return fmt.Sprintf("You have %s.", collected(m))
			},
		},
	},
}

var laborTopic = topic[snapshot]{
	category: CategoryLabor,
	rules: []rule[snapshot]{
		{
			name:     "untracked",
			match:    func(m snapshot) bool { return m.TotalLaborCost == 0 },
			severity: model.SeverityInfo,
			title:    "No Labor Costs Tracked",
			describe: func(m snapshot) string {
				return fmt.Sprintf("No labor cost has been recorded across %s.", plural(m.TimesheetCount, "timesheet"))
			},
			actions: staticActions[snapshot]("Log crew hours and rates on timesheets"),
		},
		{
			name:     "no-revenue",
			match:    noRevenue,
			severity: model.SeverityWarning,
			title:    "Labor Costs Without Revenue",
			describe: func(m snapshot) string {
				return fmt.Sprintf("%s of labor (%s hours) has been logged, but no project value is recorded to measure it against.",
					FormatMoney(m.TotalLaborCost), formatHours(m.TotalLaborHours))
			},
			actions: staticActions[snapshot]("Add project values to your jobs so labor can be compared to revenue"),
		},
		{
			name:     "high",
			match:    func(m snapshot) bool { return m.LaborPercent > 40 },
			severity: model.SeverityCritical,
			title:    "High Labor Costs",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Labor costs are %s, above the 40%% ceiling.", laborDetail(m))
			},
			actions: staticActions[snapshot](
				"Review crew scheduling and overtime",
				"Check estimates against actual hours",
				"Factor labor rates into your pricing",
			),
		},
		{
			name:     "elevated",
			match:    func(m snapshot) bool { return m.LaborPercent > 35 },
			severity: model.SeverityWarning,
			title:    "Elevated Labor Costs",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Labor costs are %s, above the 20-35%% target range.", laborDetail(m))
			},
			actions: staticActions[snapshot]("Look for idle time between jobs"),
		},
		{
			name:     "low",
			match:    func(m snapshot) bool { return m.LaborPercent < 15 },
			severity: model.SeverityInfo,
			title:    "Low Labor Costs",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Labor costs are only %s.", laborDetail(m))
			},
			actions: staticActions[snapshot]("Verify that all crew hours are being tracked"),
		},
		{
			name:     "on-target",
			severity: model.SeverityInfo,
			title:    "Labor Costs On Target",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Labor costs are %s, within a healthy range.", laborDetail(m))
			},
		},
	},
}

var materialsTopic = topic[snapshot]{
	category: CategoryMaterials,
	skip:     func(m snapshot) bool { return m.MaterialsPercent == 0 },
	rules: []rule[snapshot]{
		{
			name:     "high",
			match:    func(m snapshot) bool { return m.MaterialsPercent > 50 },
			severity: model.SeverityCritical,
			title:    "High Material Costs",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Material costs are %s, more than half of revenue.", materialsDetail(m))
			},
			actions: materialActions(
				"Compare supplier pricing",
				"Make sure material costs are passed through in your bids",
			),
		},
		{
			name:     "elevated",
			match:    func(m snapshot) bool { return m.MaterialsPercent > 35 },
			severity: model.SeverityWarning,
			title:    "Elevated Material Costs",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Material costs are %s.", materialsDetail(m))
			},
			actions: materialActions("Buy in bulk for recurring materials"),
		},
		{
			name:     "controlled",
			severity: model.SeverityInfo,
			title:    "Material Costs Under Control",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Material costs are %s.", materialsDetail(m))
			},
			actions: materialActions(),
		},
	},
}

// materialActions appends a reminder to assign loose receipts when any exist
func materialActions(items ...string) func(snapshot) []string {
	return func(m snapshot) []string {
		out := append([]string{}, items...)
		if m.UnassignedReceipts > 0 {
			out = append(out, fmt.Sprintf("Assign %s (%s) to jobs",
				plural(m.UnassignedReceipts, "unassigned receipt"), FormatMoney(m.UnassignedExpenses)))
		}
		return out
	}
}

var workforceTopic = topic[snapshot]{
	category: CategoryWorkforce,
	rules: []rule[snapshot]{
		{
			name:     "no-workers",
			match:    func(m snapshot) bool { return m.UniqueWorkers == 0 },
			severity: model.SeverityInfo,
			title:    "No Workforce Data",
			describe: func(snapshot) string {
				return "No workers have logged time yet."
			},
			actions: staticActions[snapshot]("Have your crew log hours on timesheets"),
		},
		{
			name:     "stale",
			match:    func(m snapshot) bool { return m.RecentTimesheets == 0 },
			severity: model.SeverityWarning,
			title:    "No Recent Timesheets",
			describe: func(m snapshot) string {
				return fmt.Sprintf("None of your %s have logged time in the last 30 days.", plural(m.UniqueWorkers, "worker"))
			},
			actions: staticActions[snapshot]("Confirm your crew is recording hours"),
		},
		{
			name:     "overloaded",
			match:    func(m snapshot) bool { return m.AverageHoursPerWorker > overloadedHours },
			severity: model.SeverityWarning,
			title:    "High Worker Utilization",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Your %s average %s hours each, which risks burnout and overtime.",
					plural(m.UniqueWorkers, "worker"), formatHours(m.AverageHoursPerWorker))
			},
			actions: staticActions[snapshot](
				"Consider adding crew capacity",
				"Spread hours more evenly across workers",
			),
		},
		{
			name:     "underused",
			match:    func(m snapshot) bool { return m.AverageHoursPerWorker < underusedHours },
			severity: model.SeverityInfo,
			title:    "Low Worker Utilization",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Your %s average %s hours each.",
					plural(m.UniqueWorkers, "worker"), formatHours(m.AverageHoursPerWorker))
			},
			actions: staticActions[snapshot]("Schedule more work or consolidate crews"),
		},
		{
			name:     "steady",
			severity: model.SeverityInfo,
			title:    "Workforce Activity",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Your %s logged %s hours, averaging %s hours each, with %s in the last 30 days.",
					plural(m.UniqueWorkers, "worker"), formatHours(m.TotalLaborHours),
					formatHours(m.AverageHoursPerWorker), plural(m.RecentTimesheets, "timesheet"))
			},
		},
	},
}

var projectPortfolioTopic = topic[snapshot]{
	category: CategoryProjectPortfolio,
	rules: []rule[snapshot]{
		{
			name:     "no-active",
			match:    func(m snapshot) bool { return m.ActiveJobs == 0 },
			severity: model.SeverityInfo,
			title:    "No Active Jobs",
			describe: func(m snapshot) string {
				return fmt.Sprintf("You have no jobs in progress (%s total). Add jobs, receipts and timesheets to get detailed insights.",
					plural(m.TotalJobs, "job"))
			},
			actions: staticActions[snapshot](
				"Add a new job or mark a job as in progress",
				"Record receipts and timesheets against your jobs",
			),
		},
		{
			name:     "overloaded",
			match:    func(m snapshot) bool { return m.ActiveJobs > maxActiveJobs },
			severity: model.SeverityWarning,
			title:    "High Project Load",
			describe: func(m snapshot) string {
				return fmt.Sprintf("You have %d active jobs, more than the %d your crew can usually manage well.",
					m.ActiveJobs, maxActiveJobs)
			},
			actions: staticActions[snapshot](
				"Prioritize jobs closest to completion",
				"Avoid taking on new work until active jobs wrap up",
			),
		},
		{
			name:     "balanced",
			severity: model.SeverityInfo,
			title:    "Active Project Portfolio",
			describe: func(m snapshot) string {
				return fmt.Sprintf("You have %d active, %d completed and %d not started out of %s, averaging %s in value.",
					m.ActiveJobs, m.CompletedJobs, m.NotStartedJobs, plural(m.TotalJobs, "job"), FormatMoney(m.AverageJobValue))
			},
		},
	},
}

var growthTopic = topic[snapshot]{
	category: CategoryGrowth,
	skip:     func(m snapshot) bool { return m.CompletedJobs < growthMinCompleted },
	rules: []rule[snapshot]{
		{
			name:     "unprofitable",
			match:    func(m snapshot) bool { return m.AverageJobProfit <= 0 },
			severity: model.SeverityWarning,
			title:    "Jobs Are Not Profitable on Average",
			describe: func(m snapshot) string {
				return fmt.Sprintf("Across %d completed jobs your average job profit is %s.",
					m.CompletedJobs, FormatMoney(m.AverageJobProfit))
			},
			actions: staticActions[snapshot]("Fix pricing before taking on more work"),
		},
		{
			name:     "ready",
			match:    func(m snapshot) bool { return m.ProfitMargin >= marginTarget && m.PaymentCollectionRate >= 75 },
			severity: model.SeverityInfo,
			title:    "Ready to Grow",
			describe: func(m snapshot) string {
				return fmt.Sprintf("With %d completed jobs, a %s margin and %s collected, your business is positioned to grow.",
					m.CompletedJobs, FormatPercent(m.ProfitMargin), FormatPercent(m.PaymentCollectionRate))
			},
			actions: staticActions[snapshot](
				"Consider hiring or taking on larger jobs",
				"Ask satisfied clients for referrals",
			),
		},
		{
			name:     "building",
			severity: model.SeverityInfo,
			title:    "Building a Track Record",
			describe: func(m snapshot) string {
				return fmt.Sprintf("You have completed %d jobs averaging %s profit each.",
					m.CompletedJobs, FormatMoney(m.AverageJobProfit))
			},
			actions: staticActions[snapshot]("Strengthen margins and collection before expanding"),
		},
	},
}

// portfolioTopics is the fixed emission order
var portfolioTopics = []topic[snapshot]{
	profitabilityTopic,
	paymentTopic,
	laborTopic,
	materialsTopic,
	workforceTopic,
	projectPortfolioTopic,
	growthTopic,
}

// portfolioInsights evaluates every topic in order
func portfolioInsights(m snapshot) []model.Insight {
	out := make([]model.Insight, 0, len(portfolioTopics))
	for _, t := range portfolioTopics {
		if insight, ok := t.evaluate(m); ok {
			out = append(out, insight)
		}
	}
	return out
}

// portfolioSummary is built from the same snapshot values the insights use
func portfolioSummary(m snapshot, label string) string {
	return fmt.Sprintf("Business health: %s (%d/100). Revenue %s, profit %s (%s margin), %s collected across %s (%d active).",
		label, m.HealthScore, FormatMoney(m.TotalRevenue), FormatMoney(m.GrossProfit),
		FormatPercent(m.ProfitMargin), FormatPercent(m.PaymentCollectionRate),
		plural(m.TotalJobs, "job"), m.ActiveJobs)
}
