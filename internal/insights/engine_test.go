package insights

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/datsun80zx/jobinsights/internal/model"
	"github.com/datsun80zx/jobinsights/internal/scorer"
)

func fixedClock() time.Time { return testNow }

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithClock(fixedClock), WithLogger(zap.NewNop())}, opts...)...)
}

func sampleRecords() ([]model.JobRecord, []model.ReceiptRecord, []model.TimesheetRecord) {
	jobs := []model.JobRecord{
		{ID: "j1", Status: "in-progress", ProjectValue: dec("12000"), AmountPaid: dec("6000"), StartDate: daysFromNow(-20), EndDate: daysFromNow(15), ClientName: "Acme", JobName: "Kitchen"},
		{ID: "j2", Status: "completed", ProjectValue: dec("4500.50"), AmountPaid: dec("4500.50"), JobName: "Deck"},
		{ID: "j3", Status: "not-started", ProjectValue: dec("800"), StartDate: daysFromNow(3)},
	}
	receipts := []model.ReceiptRecord{
		{ID: "r1", JobID: ptrString("j1"), Amount: dec("1333.33"), Date: daysFromNow(-4)},
		{ID: "r2", JobID: ptrString("j2"), Amount: dec("777.77"), Date: daysFromNow(-60)},
		{ID: "r3", Amount: dec("91.10")},
	}
	timesheets := []model.TimesheetRecord{
		{ID: "t1", JobID: ptrString("j1"), UserID: "u1", Hours: dec("37.5"), HourlyRate: dec("42.5"), Date: daysFromNow(-2)},
		{ID: "t2", JobID: ptrString("j1"), UserID: "u2", Hours: dec("12.25"), HourlyRate: dec("65"), Date: daysFromNow(-40)},
		{ID: "t3", JobID: ptrString("j2"), UserID: "u1", Hours: dec("20"), HourlyRate: dec("38"), Date: daysFromNow(-45)},
	}
	return jobs, receipts, timesheets
}

func TestPortfolioSingleProfitableJob(t *testing.T) {
	jobs := []model.JobRecord{{ID: "j1", Status: "in-progress", ProjectValue: dec("10000"), AmountPaid: dec("8000")}}
	receipts := []model.ReceiptRecord{{ID: "r1", JobID: ptrString("j1"), Amount: dec("1000"), Date: daysFromNow(-1)}}
	timesheets := []model.TimesheetRecord{{ID: "t1", JobID: ptrString("j1"), UserID: "u1", Hours: dec("40"), HourlyRate: dec("50"), Date: daysFromNow(-1)}}

	res, err := newTestEngine().GeneratePortfolioInsights(jobs, receipts, timesheets)
	require.NoError(t, err)
	require.True(t, res.Success)

	m := res.Metrics
	assert.InDelta(t, 7000, m.GrossProfit, 1e-6)
	assert.InDelta(t, 70, m.ProfitMargin, 1e-6)
	assert.InDelta(t, 20, m.LaborPercent, 1e-6)
	assert.InDelta(t, 10, m.MaterialsPercent, 1e-6)
	assert.InDelta(t, 80, m.PaymentCollectionRate, 1e-6)
	assert.Equal(t, 100, m.HealthScore)
	assert.Equal(t, scorer.LabelExcellent, res.HealthLabel)

	profit := findCategory(t, res.Insights, CategoryProfitability)
	assert.Equal(t, "Healthy Profit Margins", profit.Title)
	assert.Equal(t, model.SeverityInfo, profit.Severity)
	assert.Contains(t, profit.Description, "70.0% ($7,000.00 profit on $10,000.00 revenue)")

	assert.Equal(t,
		"Business health: EXCELLENT (100/100). Revenue $10,000.00, profit $7,000.00 (70.0% margin), 80.0% collected across 1 job (1 active).",
		res.Summary)
	assert.Equal(t, "2024-06-15T12:00:00Z", res.GeneratedAt)
}

func TestPortfolioZeroJobs(t *testing.T) {
	res, err := newTestEngine().GeneratePortfolioInsights([]model.JobRecord{}, []model.ReceiptRecord{}, []model.TimesheetRecord{})
	require.NoError(t, err)

	m := res.Metrics
	assert.Zero(t, m.TotalRevenue)
	assert.Zero(t, m.GrossProfit)
	assert.Zero(t, m.ProfitMargin)
	assert.Zero(t, m.LaborPercent)
	assert.Zero(t, m.MaterialsPercent)
	assert.Zero(t, m.PaymentCollectionRate)

	require.NotEmpty(t, res.Insights)
	assert.Equal(t, "No Revenue Recorded", findCategory(t, res.Insights, CategoryProfitability).Title)
	assert.Equal(t, "No Active Jobs", findCategory(t, res.Insights, CategoryProjectPortfolio).Title)
	assert.False(t, hasCategory(res.Insights, CategoryMaterials))
	assert.False(t, hasCategory(res.Insights, CategoryGrowth))

	assert.Equal(t, 25, m.HealthScore)
	assert.Equal(t, scorer.LabelCritical, res.HealthLabel)
}

func TestPortfolioNilCollections(t *testing.T) {
	res, err := newTestEngine().GeneratePortfolioInsights(nil, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Insights)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}

func TestPortfolioDeterminism(t *testing.T) {
	jobs, receipts, timesheets := sampleRecords()
	e := newTestEngine()

	first, err := e.GeneratePortfolioInsights(jobs, receipts, timesheets)
	require.NoError(t, err)
	second, err := e.GeneratePortfolioInsights(jobs, receipts, timesheets)
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, string(a), string(b))

	for _, job := range jobs {
		job := job
		r1, err := e.GenerateJobInsights(&job, receipts, timesheets)
		require.NoError(t, err)
		r2, err := e.GenerateJobInsights(&job, receipts, timesheets)
		require.NoError(t, err)

		a, _ := json.Marshal(r1)
		b, _ := json.Marshal(r2)
		assert.Equal(t, string(a), string(b), "job %s", job.ID)
	}
}

func TestProfitIdentity(t *testing.T) {
	jobs, receipts, timesheets := sampleRecords()
	e := newTestEngine()

	res, err := e.GeneratePortfolioInsights(jobs, receipts, timesheets)
	require.NoError(t, err)
	m := res.Metrics
	assert.InDelta(t, m.TotalRevenue-m.TotalLaborCost-m.TotalReceiptExpenses, m.GrossProfit, 1e-6)

	for _, job := range jobs {
		job := job
		jr, err := e.GenerateJobInsights(&job, receipts, timesheets)
		require.NoError(t, err)
		jm := jr.Metrics
		assert.InDelta(t, jm.ProjectValue-jm.TotalLaborCost-jm.TotalReceiptExpenses, jm.GrossProfit, 1e-6, "job %s", job.ID)
	}
}

func TestHealthScoreBounds(t *testing.T) {
	jobs, receipts, timesheets := sampleRecords()
	e := newTestEngine()

	inputs := [][]model.JobRecord{nil, jobs, jobs[:1], jobs[1:]}
	for _, in := range inputs {
		res, err := e.GeneratePortfolioInsights(in, receipts, timesheets)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Metrics.HealthScore, 0)
		assert.LessOrEqual(t, res.Metrics.HealthScore, 100)
		assert.False(t, math.IsNaN(res.Metrics.ProfitMargin))
	}
}

func TestJobInsightsOverdue(t *testing.T) {
	job := model.JobRecord{ID: "j1", Status: "in-progress", ProjectValue: dec("5000"), StartDate: daysFromNow(-100), EndDate: daysFromNow(-10), JobName: "Roof"}

	res, err := newTestEngine().GenerateJobInsights(&job, nil, nil)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "j1", res.JobID)
	assert.Equal(t, "Roof", res.JobName)
	assert.Equal(t, "in-progress", res.Status)
	assert.Contains(t, res.Risks, "Job is overdue by 10 days (end date 2024-06-05).")
	for _, r := range res.Recommendations {
		assert.NotContains(t, r, "overdue")
	}
	require.NotNil(t, res.Metrics.DaysRemaining)
	assert.Equal(t, -10, *res.Metrics.DaysRemaining)
	assert.Equal(t, 100, *res.Metrics.DaysElapsed)
}

func TestJobInsightsNilJob(t *testing.T) {
	res, err := newTestEngine().GenerateJobInsights(nil, nil, nil)
	assert.Nil(t, res)

	var engErr *model.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, "generate job insights", engErr.Op)
}

func TestPanicBecomesEngineError(t *testing.T) {
	e := newTestEngine(WithClock(func() time.Time { panic("clock unavailable") }))

	res, err := e.GeneratePortfolioInsights(nil, nil, nil)
	assert.Nil(t, res)
	var engErr *model.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Contains(t, err.Error(), "clock unavailable")

	job := model.JobRecord{ID: "j1"}
	jr, err := e.GenerateJobInsights(&job, nil, nil)
	assert.Nil(t, jr)
	assert.True(t, errors.As(err, &engErr))
}

func TestNonFiniteMetricsBecomeEngineError(t *testing.T) {
	huge := decimal.New(1, 400)
	jobs := []model.JobRecord{{ID: "j1", Status: "active", ProjectValue: huge}}

	res, err := newTestEngine().GeneratePortfolioInsights(jobs, nil, nil)
	assert.Nil(t, res)
	var engErr *model.EngineError
	require.True(t, errors.As(err, &engErr))
	assert.Equal(t, "generate portfolio insights", engErr.Op)
	assert.Contains(t, err.Error(), "total_revenue")

	jr, err := newTestEngine().GenerateJobInsights(&jobs[0], nil, nil)
	assert.Nil(t, jr)
	require.True(t, errors.As(err, &engErr))
	assert.Contains(t, err.Error(), "project_value")
}

func TestWithScorerConfig(t *testing.T) {
	cfg := scorer.DefaultScorerConfig()
	cfg.NoActiveJobsPoints = 0

	res, err := newTestEngine(WithScorerConfig(cfg)).GeneratePortfolioInsights(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Metrics.HealthScore)
}

func TestEngineLogsDebugSummary(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := NewEngine(WithClock(fixedClock), WithLogger(zap.New(core)))

	jobs, receipts, timesheets := sampleRecords()
	_, err := e.GeneratePortfolioInsights(jobs, receipts, timesheets)
	require.NoError(t, err)

	entries := logs.FilterMessage("portfolio insights generated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].ContextMap()["jobs"])
}
