// Package scorer maps a metrics snapshot to the 0-100 business health score.
package scorer

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/datsun80zx/jobinsights/internal/config"
)

// DefaultScorerConfig returns the standard bucket thresholds.
// The top band of every bucket sums to 100.
func DefaultScorerConfig() config.ScorerConfig {
	return config.ScorerConfig{
		MarginStrong:       15,
		MarginFair:         10,
		MarginStrongPoints: 30,
		MarginFairPoints:   20,
		MarginWeakPoints:   10,

		CollectionStrong:       75,
		CollectionFair:         60,
		CollectionStrongPoints: 25,
		CollectionFairPoints:   15,
		CollectionWeakPoints:   5,

		LaborTargetMin:    20,
		LaborTargetMax:    35,
		LaborToleranceMin: 15,
		LaborToleranceMax: 40,
		LaborTargetPoints: 25,
		LaborNearPoints:   15,
		LaborOffPoints:    5,

		MaxActiveJobs:      8,
		ActiveJobsPoints:   20,
		OverloadedPoints:   10,
		NoActiveJobsPoints: 5,

		ExcellentScore:      80,
		HealthyScore:        60,
		NeedsAttentionScore: 40,
	}
}

// MaxScore returns the best attainable score under c
func MaxScore(c config.ScorerConfig) int {
	return maxInt(c.MarginStrongPoints, c.MarginFairPoints, c.MarginWeakPoints) +
		maxInt(c.CollectionStrongPoints, c.CollectionFairPoints, c.CollectionWeakPoints) +
		maxInt(c.LaborTargetPoints, c.LaborNearPoints, c.LaborOffPoints) +
		maxInt(c.ActiveJobsPoints, c.OverloadedPoints, c.NoActiveJobsPoints)
}

// ValidateConfig checks that a ScorerConfig is internally consistent.
func ValidateConfig(c config.ScorerConfig) error {
	var errs []string

	points := map[string]int{
		"margin_strong_points":     c.MarginStrongPoints,
		"margin_fair_points":       c.MarginFairPoints,
		"margin_weak_points":       c.MarginWeakPoints,
		"collection_strong_points": c.CollectionStrongPoints,
		"collection_fair_points":   c.CollectionFairPoints,
		"collection_weak_points":   c.CollectionWeakPoints,
		"labor_target_points":      c.LaborTargetPoints,
		"labor_near_points":        c.LaborNearPoints,
		"labor_off_points":         c.LaborOffPoints,
		"active_jobs_points":       c.ActiveJobsPoints,
		"overloaded_points":        c.OverloadedPoints,
		"no_active_jobs_points":    c.NoActiveJobsPoints,
	}
	for _, name := range sortedKeys(points) {
		if points[name] < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if maxScore := MaxScore(c); maxScore > 100 {
		errs = append(errs, fmt.Sprintf("bucket points must not exceed 100, got %d", maxScore))
	}

	if c.MarginFair > c.MarginStrong {
		errs = append(errs, "margin_fair must be <= margin_strong")
	}
	if c.CollectionFair > c.CollectionStrong {
		errs = append(errs, "collection_fair must be <= collection_strong")
	}
	if c.LaborTargetMin > c.LaborTargetMax {
		errs = append(errs, "labor_target_min must be <= labor_target_max")
	}
	if c.LaborToleranceMin > c.LaborTargetMin || c.LaborToleranceMax < c.LaborTargetMax {
		errs = append(errs, "labor tolerance band must contain the target band")
	}
	if c.MaxActiveJobs < 1 {
		errs = append(errs, "max_active_jobs must be >= 1")
	}
	if !(c.ExcellentScore >= c.HealthyScore && c.HealthyScore >= c.NeedsAttentionScore) {
		errs = append(errs, "label thresholds must be descending")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func maxInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
