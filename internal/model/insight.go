package model

// Severity classifies an insight for display
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Insight is one human-readable statement about the portfolio
type Insight struct {
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	ActionItems []string `json:"action_items"`
}

// PortfolioResult is returned by the portfolio path
type PortfolioResult struct {
	Success     bool            `json:"success"`
	Metrics     MetricsSnapshot `json:"metrics"`
	Insights    []Insight       `json:"insights"`
	Summary     string          `json:"summary"`
	HealthLabel string          `json:"health_label"`
	GeneratedAt string          `json:"generated_at"`
}

// JobResult is returned by the per-job path
type JobResult struct {
	Success         bool               `json:"success"`
	JobID           string             `json:"job_id"`
	JobName         string             `json:"job_name"`
	Status          string             `json:"status"`
	Summary         string             `json:"summary"`
	Recommendations []string           `json:"recommendations"`
	Risks           []string           `json:"risks"`
	Metrics         JobMetricsSnapshot `json:"metrics"`
	GeneratedAt     string             `json:"generated_at"`
}
