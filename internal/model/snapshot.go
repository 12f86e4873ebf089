package model

// MetricsSnapshot is the flat set of portfolio-level aggregates.
// Every field is reproducible from the input collections and "now".
type MetricsSnapshot struct {
	TotalJobs      int `json:"total_jobs"`
	ActiveJobs     int `json:"active_jobs"`
	CompletedJobs  int `json:"completed_jobs"`
	NotStartedJobs int `json:"not_started_jobs"`

	TotalRevenue       float64 `json:"total_revenue"`
	TotalPaid          float64 `json:"total_paid"`
	OutstandingBalance float64 `json:"outstanding_balance"`

	TotalReceiptExpenses float64 `json:"total_receipt_expenses"`
	ReceiptCount         int     `json:"receipt_count"`
	UnassignedReceipts   int     `json:"unassigned_receipts"`
	UnassignedExpenses   float64 `json:"unassigned_expenses"`
	RecentReceipts       int     `json:"recent_receipts"`

	TotalLaborHours   float64 `json:"total_labor_hours"`
	AverageHourlyRate float64 `json:"average_hourly_rate"`
	TotalLaborCost    float64 `json:"total_labor_cost"`
	TimesheetCount    int     `json:"timesheet_count"`
	RecentTimesheets  int     `json:"recent_timesheets"`

	GrossProfit           float64 `json:"gross_profit"`
	ProfitMargin          float64 `json:"profit_margin"`
	LaborPercent          float64 `json:"labor_percent"`
	MaterialsPercent      float64 `json:"materials_percent"`
	PaymentCollectionRate float64 `json:"payment_collection_rate"`

	UniqueWorkers         int     `json:"unique_workers"`
	AverageHoursPerWorker float64 `json:"average_hours_per_worker"`
	AverageJobValue       float64 `json:"average_job_value"`
	AverageJobProfit      float64 `json:"average_job_profit"`

	HealthScore int `json:"health_score"`
}

// JobMetricsSnapshot is the per-job counterpart of MetricsSnapshot with timeline fields
type JobMetricsSnapshot struct {
	ProjectValue       float64 `json:"project_value"`
	AmountPaid         float64 `json:"amount_paid"`
	OutstandingBalance float64 `json:"outstanding_balance"`
	PaymentProgress    float64 `json:"payment_progress"`

	TotalReceiptExpenses float64 `json:"total_receipt_expenses"`
	ReceiptCount         int     `json:"receipt_count"`
	RecentReceipts       int     `json:"recent_receipts"`

	TotalLaborHours   float64 `json:"total_labor_hours"`
	AverageHourlyRate float64 `json:"average_hourly_rate"`
	TotalLaborCost    float64 `json:"total_labor_cost"`
	TimesheetCount    int     `json:"timesheet_count"`
	RecentTimesheets  int     `json:"recent_timesheets"`
	UniqueWorkers     int     `json:"unique_workers"`

	TotalCost        float64 `json:"total_cost"`
	GrossProfit      float64 `json:"gross_profit"`
	ProfitMargin     float64 `json:"profit_margin"`
	LaborPercent     float64 `json:"labor_percent"`
	MaterialsPercent float64 `json:"materials_percent"`
	BudgetUsed       float64 `json:"budget_used"`

	// Timeline fields are nil when the dates they depend on are absent.
	DaysElapsed     *int     `json:"days_elapsed,omitempty"`
	DaysRemaining   *int     `json:"days_remaining,omitempty"`
	ProjectDuration *int     `json:"project_duration,omitempty"`
	TimeProgress    *float64 `json:"time_progress,omitempty"`
	CostPerDay      *float64 `json:"cost_per_day,omitempty"`
}
