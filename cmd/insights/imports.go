package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/datsun80zx/jobinsights/internal/store"
)

var importsOwner string

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List import history for an owner",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		db, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer db.Close()

		batches, err := db.ListImportBatches(ctx, importsOwner)
		if err != nil {
			return err
		}

		printImportBatches(cmd.OutOrStdout(), batches)
		return nil
	},
}

func printImportBatches(out io.Writer, batches []store.ImportBatch) {
	if len(batches) == 0 {
		fmt.Fprintln(out, "No imports found")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "💡 Import your first batch with:")
		fmt.Fprintln(out, "   insights import --owner OWNER --jobs jobs.csv --receipts receipts.csv --timesheets timesheets.csv")
		return
	}

	fmt.Fprintln(out, "Import History")
	fmt.Fprintln(out, "══════════════════════════════════════════════════════════════════════════════")
	fmt.Fprintf(out, "%-4s  %-19s  %-9s  %6s  %8s  %10s  %-20s\n",
		"ID", "Date", "Status", "Jobs", "Receipts", "Timesheets", "Jobs File")
	fmt.Fprintln(out, "──────────────────────────────────────────────────────────────────────────────")

	for _, batch := range batches {
		statusIcon := "✅"
		switch batch.Status {
		case store.BatchFailed:
			statusIcon = "❌"
		case store.BatchPending:
			statusIcon = "⏳"
		}

		filename := batch.JobsFilename
		if len(filename) > 20 {
			filename = filename[:17] + "..."
		}

		fmt.Fprintf(out, "%-4d  %s  %s %-7s  %6d  %8d  %10d  %-20s\n",
			batch.ID,
			batch.CreatedAt.Format("2006-01-02 15:04:05"),
			statusIcon,
			batch.Status,
			batch.RowCountJobs,
			batch.RowCountReceipts,
			batch.RowCountTimesheets,
			filename,
		)
	}
	fmt.Fprintln(out, "══════════════════════════════════════════════════════════════════════════════")
	fmt.Fprintf(out, "Total: %d import(s)\n", len(batches))
}

func init() {
	importsCmd.Flags().StringVar(&importsOwner, "owner", "", "owner to list imports for (required)")
	_ = importsCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(importsCmd)
}
