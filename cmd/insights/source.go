package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/datsun80zx/jobinsights/internal/importer"
	"github.com/datsun80zx/jobinsights/internal/insights"
	"github.com/datsun80zx/jobinsights/internal/parser"
	"github.com/datsun80zx/jobinsights/internal/store"
)

// sourceFlags select where records come from: CSV exports on disk or the
// records imported for an owner.
type sourceFlags struct {
	files importer.Files
	owner string
	now   string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.files.Jobs, "jobs", "", "path to jobs CSV")
	cmd.Flags().StringVar(&s.files.Receipts, "receipts", "", "path to receipts CSV")
	cmd.Flags().StringVar(&s.files.Timesheets, "timesheets", "", "path to timesheets CSV")
	cmd.Flags().StringVar(&s.owner, "owner", "", "read records imported for this owner instead of CSV files")
	cmd.Flags().StringVar(&s.now, "now", "", "evaluate as of this date (YYYY-MM-DD or RFC3339)")
	cmd.MarkFlagsMutuallyExclusive("jobs", "owner")
	cmd.MarkFlagsOneRequired("jobs", "owner")
}

func (s *sourceFlags) fromStore() bool {
	return s.owner != ""
}

// loadBundle reads the full record set for the portfolio
func (s *sourceFlags) loadBundle(ctx context.Context) (*parser.Bundle, error) {
	if !s.fromStore() {
		return importer.ParseFiles(parser.NewCSVParser(), s.files)
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ctx, cancel := queryContext(ctx)
	defer cancel()
	return db.LoadPortfolio(ctx, s.owner)
}

// loadJob reads one job and the records scoped to it
func (s *sourceFlags) loadJob(ctx context.Context, jobID string) (*parser.JobRequest, error) {
	if !s.fromStore() {
		bundle, err := importer.ParseFiles(parser.NewCSVParser(), s.files)
		if err != nil {
			return nil, err
		}
		for idx := range bundle.Jobs {
			if bundle.Jobs[idx].ID == jobID {
				return &parser.JobRequest{
					Job:        &bundle.Jobs[idx],
					Receipts:   bundle.Receipts,
					Timesheets: bundle.Timesheets,
				}, nil
			}
		}
		return nil, eris.Wrapf(store.ErrNotFound, "job %s", jobID)
	}

	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ctx, cancel := queryContext(ctx)
	defer cancel()

	job, err := db.GetJob(ctx, s.owner, jobID)
	if err != nil {
		return nil, err
	}
	receipts, err := db.ListReceipts(ctx, s.owner, &jobID)
	if err != nil {
		return nil, err
	}
	timesheets, err := db.ListTimesheets(ctx, s.owner, &jobID)
	if err != nil {
		return nil, err
	}
	return &parser.JobRequest{Job: job, Receipts: receipts, Timesheets: timesheets}, nil
}

// engine builds an Engine from config, pinned to --now when given
func (s *sourceFlags) engine() (*insights.Engine, error) {
	opts := []insights.Option{
		insights.WithScorerConfig(cfg.Scorer),
		insights.WithLogger(zap.L()),
	}
	if s.now != "" {
		now, err := parseNow(s.now)
		if err != nil {
			return nil, err
		}
		opts = append(opts, insights.WithClock(func() time.Time { return now }))
	}
	return insights.NewEngine(opts...), nil
}

func parseNow(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("invalid --now %q: expected YYYY-MM-DD or RFC3339", value)
}

func queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if cfg.Store.QueryTimeoutSec <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(cfg.Store.QueryTimeoutSec)*time.Second)
}
