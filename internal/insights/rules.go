package insights

import (
	"fmt"

	"github.com/datsun80zx/jobinsights/internal/model"
)

// rule is one band of a topic's threshold ladder. Severity and wording sit in
// the same row so a change to one cannot silently change the other.
// A nil match is unconditional.
type rule[T any] struct {
	name     string
	match    func(T) bool
	severity model.Severity
	title    string
	describe func(T) string
	actions  func(T) []string
}

// topic is an ordered ladder of rules evaluated top to bottom, first match wins
type topic[T any] struct {
	category string
	skip     func(T) bool
	rules    []rule[T]
}

// evaluate returns the insight for the first matching rule. ok is false only
// when the topic does not apply to the input.
func (t topic[T]) evaluate(in T) (insight model.Insight, ok bool) {
	if t.skip != nil && t.skip(in) {
		return model.Insight{}, false
	}

	for _, r := range t.rules {
		if r.match != nil && !r.match(in) {
			continue
		}

		actions := []string{}
		if r.actions != nil {
			actions = append(actions, r.actions(in)...)
		}
		return model.Insight{
			Category:    t.category,
			Title:       r.title,
			Description: r.describe(in),
			Severity:    r.severity,
			ActionItems: actions,
		}, true
	}

	panic(fmt.Sprintf("insights: topic %q has no matching rule", t.category))
}

// finding is one band of a per-job topic. Either side may be empty; a row
// with neither records that the band needs no comment.
type finding[T any] struct {
	name           string
	match          func(T) bool
	risk           func(T) string
	recommendation func(T) string
}

// check is the per-job counterpart of topic. A single band may contribute a
// risk and its mitigating recommendation.
type check[T any] struct {
	name     string
	applies  func(T) bool
	findings []finding[T]
}

// evaluate returns the risk and recommendation of the first matching band
func (c check[T]) evaluate(in T) (risk, recommendation string) {
	if c.applies != nil && !c.applies(in) {
		return "", ""
	}

	for _, f := range c.findings {
		if f.match != nil && !f.match(in) {
			continue
		}
		if f.risk != nil {
			risk = f.risk(in)
		}
		if f.recommendation != nil {
			recommendation = f.recommendation(in)
		}
		return risk, recommendation
	}

	panic(fmt.Sprintf("insights: check %q has no matching band", c.name))
}

func staticActions[T any](items ...string) func(T) []string {
	return func(T) []string { return items }
}
