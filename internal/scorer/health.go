package scorer

import (
	"sort"

	"github.com/datsun80zx/jobinsights/internal/config"
	"github.com/datsun80zx/jobinsights/internal/model"
)

// Health labels, best first.
const (
	LabelExcellent      = "EXCELLENT"
	LabelHealthy        = "HEALTHY"
	LabelNeedsAttention = "NEEDS ATTENTION"
	LabelCritical       = "CRITICAL"
)

// Component is one bucket's contribution to the health score
type Component struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Max    int    `json:"max"`
}

// bucket scores one metric independently of the others
type bucket struct {
	name   string
	points func(model.MetricsSnapshot, config.ScorerConfig) int
	max    func(config.ScorerConfig) int
}

// buckets are evaluated in this order; each picks its first matching band
var buckets = []bucket{
	{
		name: "profit_margin",
		points: func(m model.MetricsSnapshot, c config.ScorerConfig) int {
			switch {
			case m.ProfitMargin >= c.MarginStrong:
				return c.MarginStrongPoints
			case m.ProfitMargin >= c.MarginFair:
				return c.MarginFairPoints
			default:
				return c.MarginWeakPoints
			}
		},
		max: func(c config.ScorerConfig) int {
			return maxInt(c.MarginStrongPoints, c.MarginFairPoints, c.MarginWeakPoints)
		},
	},
	{
		name: "payment_collection",
		points: func(m model.MetricsSnapshot, c config.ScorerConfig) int {
			switch {
			case m.PaymentCollectionRate >= c.CollectionStrong:
				return c.CollectionStrongPoints
			case m.PaymentCollectionRate >= c.CollectionFair:
				return c.CollectionFairPoints
			default:
				return c.CollectionWeakPoints
			}
		},
		max: func(c config.ScorerConfig) int {
			return maxInt(c.CollectionStrongPoints, c.CollectionFairPoints, c.CollectionWeakPoints)
		},
	},
	{
		name: "labor_ratio",
		points: func(m model.MetricsSnapshot, c config.ScorerConfig) int {
			switch {
			case within(m.LaborPercent, c.LaborTargetMin, c.LaborTargetMax):
				return c.LaborTargetPoints
			case within(m.LaborPercent, c.LaborToleranceMin, c.LaborToleranceMax):
				return c.LaborNearPoints
			default:
				return c.LaborOffPoints
			}
		},
		max: func(c config.ScorerConfig) int {
			return maxInt(c.LaborTargetPoints, c.LaborNearPoints, c.LaborOffPoints)
		},
	},
	{
		name: "active_jobs",
		points: func(m model.MetricsSnapshot, c config.ScorerConfig) int {
			switch {
			case m.ActiveJobs >= 1 && m.ActiveJobs <= c.MaxActiveJobs:
				return c.ActiveJobsPoints
			case m.ActiveJobs > c.MaxActiveJobs:
				return c.OverloadedPoints
			default:
				return c.NoActiveJobsPoints
			}
		},
		max: func(c config.ScorerConfig) int {
			return maxInt(c.ActiveJobsPoints, c.OverloadedPoints, c.NoActiveJobsPoints)
		},
	},
}

// HealthScorer scores snapshots against a fixed bucket config
type HealthScorer struct {
	cfg config.ScorerConfig
}

// NewHealthScorer creates a HealthScorer with the given config
func NewHealthScorer(cfg config.ScorerConfig) *HealthScorer {
	return &HealthScorer{cfg: cfg}
}

// Score sums the bucket points, clamped to 0..100
func (s *HealthScorer) Score(m model.MetricsSnapshot) int {
	total := 0
	for _, b := range buckets {
		total += b.points(m, s.cfg)
	}
	return clamp(total, 0, 100)
}

// Breakdown returns each bucket's points in evaluation order
func (s *HealthScorer) Breakdown(m model.MetricsSnapshot) []Component {
	components := make([]Component, 0, len(buckets))
	for _, b := range buckets {
		components = append(components, Component{
			Name:   b.name,
			Points: b.points(m, s.cfg),
			Max:    b.max(s.cfg),
		})
	}
	return components
}

// Label returns the qualitative label for a score
func (s *HealthScorer) Label(score int) string {
	switch {
	case score >= s.cfg.ExcellentScore:
		return LabelExcellent
	case score >= s.cfg.HealthyScore:
		return LabelHealthy
	case score >= s.cfg.NeedsAttentionScore:
		return LabelNeedsAttention
	default:
		return LabelCritical
	}
}

func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
