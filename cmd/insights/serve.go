package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datsun80zx/jobinsights/internal/api"
	"github.com/datsun80zx/jobinsights/internal/insights"
	"github.com/datsun80zx/jobinsights/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the insights HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort > 0 {
			cfg.Server.Port = servePort
		}

		deps := api.Dependencies{
			Engine: insights.NewEngine(
				insights.WithScorerConfig(cfg.Scorer),
				insights.WithLogger(zap.L()),
			),
		}

		if cfg.Store.DatabaseURL != "" {
			db, err := store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer db.Close()
			deps.Store = db
		} else {
			zap.L().Warn("no database configured, owner routes disabled")
		}

		return api.NewServer(cfg.Server, cfg.Store, deps, zap.L()).Start(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
