package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datsun80zx/jobinsights/internal/config"
	"github.com/datsun80zx/jobinsights/internal/scorer"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "insights",
	Short: "Business insights for contracting jobs",
	Long:  "Scores the financial health of a contractor's jobs from job, receipt and timesheet records and explains what to act on.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := scorer.ValidateConfig(c.Scorer); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
