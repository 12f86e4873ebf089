package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/datsun80zx/jobinsights/internal/report"
)

var (
	jobSource sourceFlags
	jobOutput outputFlags
)

var jobCmd = &cobra.Command{
	Use:   "job <job-id>",
	Short: "Analyze a single job",
	Example: `  insights job J-104 --jobs jobs.csv --receipts receipts.csv --timesheets timesheets.csv
  insights job J-104 --owner acme --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := jobSource.loadJob(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		engine, err := jobSource.engine()
		if err != nil {
			return err
		}

		result, err := engine.GenerateJobInsights(req.Job, req.Receipts, req.Timesheets)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case jobOutput.asJSON:
			return writeJSON(out, result)
		case jobOutput.path != "":
			renderer, err := report.NewRenderer()
			if err != nil {
				return err
			}
			title := result.JobName
			if title == "" {
				title = "Job " + result.JobID
			}
			path, err := writeHTMLFile(jobOutput.path, func(w io.Writer) error {
				return renderer.RenderJob(w, report.JobPage{Title: title, Result: result})
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ Report generated: %s\n", path)
			return nil
		default:
			return report.WriteJobText(out, result)
		}
	},
}

func init() {
	jobSource.register(jobCmd)
	jobOutput.register(jobCmd)
	rootCmd.AddCommand(jobCmd)
}
