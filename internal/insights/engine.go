// Package insights turns job, receipt and timesheet collections into
// severity-tagged portfolio insights and per-job risks and recommendations.
//
// Every threshold ladder is an ordered rule table evaluated first-match-wins.
// The only time dependency is the Engine's injected clock.
package insights

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/datsun80zx/jobinsights/internal/config"
	"github.com/datsun80zx/jobinsights/internal/metrics"
	"github.com/datsun80zx/jobinsights/internal/model"
	"github.com/datsun80zx/jobinsights/internal/scorer"
)

// Engine generates insights. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	clock  func() time.Time
	scorer *scorer.HealthScorer
	logger *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock pins the "now" used for recency windows and timelines
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithScorerConfig replaces the default health score buckets
func WithScorerConfig(cfg config.ScorerConfig) Option {
	return func(e *Engine) {
		e.scorer = scorer.NewHealthScorer(cfg)
	}
}

// WithLogger sets the logger used for per-call debug output
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine using the wall clock, the default scorer
// config and the global zap logger unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock:  time.Now,
		scorer: scorer.NewHealthScorer(scorer.DefaultScorerConfig()),
		logger: zap.L(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GeneratePortfolioInsights aggregates all records into a scored snapshot and
// evaluates every portfolio topic in order.
func (e *Engine) GeneratePortfolioInsights(jobs []model.JobRecord, receipts []model.ReceiptRecord, timesheets []model.TimesheetRecord) (result *model.PortfolioResult, err error) {
	const op = "generate portfolio insights"
	defer e.recoverStage(op, &err)

	started := time.Now()
	now := e.clock()

	snap := metrics.Aggregate(jobs, receipts, timesheets, now)
	if err := metrics.CheckFinite(snap); err != nil {
		return nil, model.NewEngineError(op, err)
	}
	snap.HealthScore = e.scorer.Score(snap)
	label := e.scorer.Label(snap.HealthScore)

	list := portfolioInsights(snap)
	summary := portfolioSummary(snap, label)

	e.logger.Debug("portfolio insights generated",
		zap.Int("jobs", len(jobs)),
		zap.Int("receipts", len(receipts)),
		zap.Int("timesheets", len(timesheets)),
		zap.Int("health_score", snap.HealthScore),
		zap.Any("breakdown", e.scorer.Breakdown(snap)),
		zap.Int("insights", len(list)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &model.PortfolioResult{
		Success:     true,
		Metrics:     snap,
		Insights:    list,
		Summary:     summary,
		HealthLabel: label,
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}, nil
}

// GenerateJobInsights analyzes one job against the receipts and timesheets
// logged to it. Records for other jobs are ignored.
func (e *Engine) GenerateJobInsights(job *model.JobRecord, receipts []model.ReceiptRecord, timesheets []model.TimesheetRecord) (result *model.JobResult, err error) {
	const op = "generate job insights"
	if job == nil {
		return nil, model.NewEngineError(op, eris.New("job is required"))
	}
	defer e.recoverStage(op, &err)

	started := time.Now()
	now := e.clock()

	snap := metrics.AggregateJob(*job, receipts, timesheets, now)
	if err := metrics.CheckFinite(snap); err != nil {
		return nil, model.NewEngineError(op, err)
	}
	summary, recommendations, risks := analyzeJob(*job, snap)

	e.logger.Debug("job insights generated",
		zap.String("job_id", job.ID),
		zap.String("status", job.Status),
		zap.Int("receipts", snap.ReceiptCount),
		zap.Int("timesheets", snap.TimesheetCount),
		zap.Int("risks", len(risks)),
		zap.Int("recommendations", len(recommendations)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &model.JobResult{
		Success:         true,
		JobID:           job.ID,
		JobName:         job.JobName,
		Status:          job.Status,
		Summary:         summary,
		Recommendations: recommendations,
		Risks:           risks,
		Metrics:         snap,
		GeneratedAt:     now.UTC().Format(time.RFC3339),
	}, nil
}

// recoverStage converts a panic in a pipeline stage into an EngineError.
// The named result is left nil so no partial output escapes.
func (e *Engine) recoverStage(op string, err *error) {
	if r := recover(); r != nil {
		e.logger.Error("insights pipeline panic", zap.String("op", op), zap.Any("panic", r))
		*err = model.NewEngineError(op, eris.Errorf("panic: %v", r))
	}
}
