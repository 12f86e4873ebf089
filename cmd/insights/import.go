package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/datsun80zx/jobinsights/internal/importer"
	"github.com/datsun80zx/jobinsights/internal/store"
)

var (
	importOwner string
	importFiles importer.Files
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import jobs, receipts and timesheets CSV exports for an owner",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		db, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Fprintln(out, "Starting import...")
		fmt.Fprintf(out, "  Jobs file:       %s\n", importFiles.Jobs)
		fmt.Fprintf(out, "  Receipts file:   %s\n", importFiles.Receipts)
		fmt.Fprintf(out, "  Timesheets file: %s\n", importFiles.Timesheets)
		fmt.Fprintln(out)

		result, err := importer.NewImporter(db.DB()).ImportFiles(ctx, importOwner, importFiles)
		if err != nil {
			return eris.Wrap(err, "import failed")
		}

		printImportResult(cmd, result)
		return nil
	},
}

func printImportResult(cmd *cobra.Command, result *importer.ImportResult) {
	out := cmd.OutOrStdout()

	if result.AlreadyImported {
		fmt.Fprintln(out, "ℹ️  These files have already been imported")
		fmt.Fprintf(out, "   Batch ID: %d\n", result.BatchID)
		return
	}

	fmt.Fprintln(out, "✅ Import successful!")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Batch ID:            %d\n", result.BatchID)
	fmt.Fprintf(out, "Jobs imported:       %d\n", result.JobsImported)
	fmt.Fprintf(out, "Receipts imported:   %d\n", result.ReceiptsImported)
	fmt.Fprintf(out, "Timesheets imported: %d\n", result.TimesheetsImported)
	fmt.Fprintf(out, "Duration:            %v\n", result.Duration.Round(time.Millisecond))

	if result.ValidationResult != nil && len(result.ValidationResult.Warnings) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "⚠️  Warnings:")
		for _, warning := range result.ValidationResult.Warnings {
			fmt.Fprintf(out, "   - %s\n", warning)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "💡 Next steps:")
	fmt.Fprintf(out, "   insights portfolio --owner %s\n", importOwner)
}

func init() {
	importCmd.Flags().StringVar(&importOwner, "owner", "", "owner the records belong to (required)")
	importCmd.Flags().StringVar(&importFiles.Jobs, "jobs", "", "path to jobs CSV (required)")
	importCmd.Flags().StringVar(&importFiles.Receipts, "receipts", "", "path to receipts CSV (required)")
	importCmd.Flags().StringVar(&importFiles.Timesheets, "timesheets", "", "path to timesheets CSV (required)")
	for _, name := range []string{"owner", "jobs", "receipts", "timesheets"} {
		_ = importCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(importCmd)
}
