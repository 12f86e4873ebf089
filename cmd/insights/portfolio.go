package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/datsun80zx/jobinsights/internal/metrics"
	"github.com/datsun80zx/jobinsights/internal/report"
	"github.com/datsun80zx/jobinsights/internal/scorer"
)

var (
	portfolioSource sourceFlags
	portfolioOutput outputFlags
	portfolioTitle  string
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Score the whole business and list insights",
	Example: `  insights portfolio --jobs jobs.csv --receipts receipts.csv --timesheets timesheets.csv
  insights portfolio --owner acme --output acme.html
  insights portfolio --jobs jobs.csv --now 2024-06-15 --json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		bundle, err := portfolioSource.loadBundle(cmd.Context())
		if err != nil {
			return err
		}
		engine, err := portfolioSource.engine()
		if err != nil {
			return err
		}

		result, err := engine.GeneratePortfolioInsights(bundle.Jobs, bundle.Receipts, bundle.Timesheets)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case portfolioOutput.asJSON:
			return writeJSON(out, result)
		case portfolioOutput.path != "":
			renderer, err := report.NewRenderer()
			if err != nil {
				return err
			}
			page := report.PortfolioPage{
				Title:     portfolioTitle,
				Result:    result,
				Breakdown: scorer.NewHealthScorer(cfg.Scorer).Breakdown(result.Metrics),
				Workers:   metrics.CalculateWorkerMetrics(bundle.Timesheets),
			}
			path, err := writeHTMLFile(portfolioOutput.path, func(w io.Writer) error {
				return renderer.RenderPortfolio(w, page)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ Report generated: %s\n", path)
			return nil
		default:
			return report.WriteText(out, result)
		}
	},
}

func init() {
	portfolioSource.register(portfolioCmd)
	portfolioOutput.register(portfolioCmd)
	portfolioCmd.Flags().StringVar(&portfolioTitle, "title", "Business Insights", "HTML report title")
	rootCmd.AddCommand(portfolioCmd)
}
