// Package report renders insight results as standalone HTML pages and as
// plain text for the terminal.
package report

import (
	"embed"
	"html/template"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/datsun80zx/jobinsights/internal/insights"
	"github.com/datsun80zx/jobinsights/internal/metrics"
	"github.com/datsun80zx/jobinsights/internal/model"
	"github.com/datsun80zx/jobinsights/internal/scorer"
)

//go:embed templates/*.html
var templateFS embed.FS

// PortfolioPage is the data behind portfolio.html
type PortfolioPage struct {
	Title     string
	Result    *model.PortfolioResult
	Breakdown []scorer.Component
	Workers   []metrics.WorkerMetric
}

// JobPage is the data behind job.html
type JobPage struct {
	Title  string
	Result *model.JobResult
}

// Renderer handles report template rendering
type Renderer struct {
	templates *template.Template
}

// NewRenderer creates a new template renderer
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"formatMoney":   insights.FormatMoney,
		"formatPercent": insights.FormatPercent,
		"optPercent":    optPercent,
		"optDays":       optDays,
		"optMoney":      optMoney,
		"severityClass": severityClass,
		"healthClass":   healthClass,
		"isNegative":    func(f float64) bool { return f < 0 },
		"barWidth":      barWidth,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, eris.Wrap(err, "parsing templates")
	}

	return &Renderer{templates: tmpl}, nil
}

// RenderPortfolio renders the portfolio insights page
func (r *Renderer) RenderPortfolio(w io.Writer, page PortfolioPage) error {
	if page.Result == nil {
		return eris.New("report: portfolio result is nil")
	}
	return r.templates.ExecuteTemplate(w, "portfolio.html", page)
}

// RenderJob renders the single job insights page
func (r *Renderer) RenderJob(w io.Writer, page JobPage) error {
	if page.Result == nil {
		return eris.New("report: job result is nil")
	}
	return r.templates.ExecuteTemplate(w, "job.html", page)
}

// optPercent formats an optional percentage, "N/A" when absent
func optPercent(pct *float64) string {
	if pct == nil {
		return "N/A"
	}
	return insights.FormatPercent(*pct)
}

func optMoney(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return insights.FormatMoney(*v)
}

func optDays(days *int) string {
	if days == nil {
		return "N/A"
	}
	return strconv.Itoa(*days)
}

func severityClass(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "critical"
	case model.SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

func healthClass(label string) string {
	switch label {
	case scorer.LabelExcellent, scorer.LabelHealthy:
		return "good"
	case scorer.LabelNeedsAttention:
		return "warning"
	default:
		return "critical"
	}
}

// barWidth converts component points to a 0-100 width
func barWidth(c scorer.Component) int {
	if c.Max <= 0 {
		return 0
	}
	return c.Points * 100 / c.Max
}
