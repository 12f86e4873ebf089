package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/datsun80zx/jobinsights/internal/insights"
	"github.com/datsun80zx/jobinsights/internal/model"
)

var severityIcons = map[model.Severity]string{
	model.SeverityCritical: "🔴",
	model.SeverityWarning:  "🟠",
	model.SeverityInfo:     "🔵",
}

// textWriter remembers the first write error so callers check once
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// WriteText prints a portfolio result for the terminal
func WriteText(w io.Writer, r *model.PortfolioResult) error {
	if r == nil {
		return eris.New("report: portfolio result is nil")
	}
	m := r.Metrics
	t := &textWriter{w: w}

	t.printf("📊 Business Health: %s (%d/100)\n", r.HealthLabel, m.HealthScore)
	t.printf("%s\n\n", r.Summary)

	t.printf("   • %d jobs (%d active, %d completed, %d not started)\n",
		m.TotalJobs, m.ActiveJobs, m.CompletedJobs, m.NotStartedJobs)
	t.printf("   • %s revenue, %s collected (%s)\n",
		insights.FormatMoney(m.TotalRevenue), insights.FormatMoney(m.TotalPaid), insights.FormatPercent(m.PaymentCollectionRate))
	t.printf("   • %s materials, %s labor\n",
		insights.FormatMoney(m.TotalReceiptExpenses), insights.FormatMoney(m.TotalLaborCost))
	t.printf("   • %s gross profit (%s margin)\n\n",
		insights.FormatMoney(m.GrossProfit), insights.FormatPercent(m.ProfitMargin))

	for _, in := range r.Insights {
		t.printf("%s [%s] %s\n", severityIcons[in.Severity], strings.ToUpper(string(in.Severity)), in.Title)
		t.printf("   %s\n", in.Description)
		for _, a := range in.ActionItems {
			t.printf("   → %s\n", a)
		}
		t.printf("\n")
	}
	return t.err
}

// WriteJobText prints a single job result for the terminal
func WriteJobText(w io.Writer, r *model.JobResult) error {
	if r == nil {
		return eris.New("report: job result is nil")
	}
	t := &textWriter{w: w}

	name := r.JobName
	if name == "" {
		name = r.JobID
	}
	t.printf("🔧 %s (%s)\n", name, r.Status)
	t.printf("%s\n", r.Summary)

	if len(r.Risks) > 0 {
		t.printf("\n⚠️  Risks:\n")
		for _, risk := range r.Risks {
			t.printf("   • %s\n", risk)
		}
	}
	if len(r.Recommendations) > 0 {
		t.printf("\n💡 Recommendations:\n")
		for _, rec := range r.Recommendations {
			t.printf("   • %s\n", rec)
		}
	}
	return t.err
}
