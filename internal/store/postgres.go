package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/datsun80zx/jobinsights/internal/config"
	"github.com/datsun80zx/jobinsights/internal/model"
	"github.com/datsun80zx/jobinsights/internal/parser"
)

// Postgres is the lib/pq backed Store
type Postgres struct {
	*Queries
	db *sql.DB
}

var _ Store = (*Postgres)(nil)

// Open connects to the database and verifies the connection
func Open(ctx context.Context, cfg config.StoreConfig) (*Postgres, error) {
	if cfg.DatabaseURL == "" {
		return nil, eris.New("store: database_url is not set")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "store: ping")
	}

	return NewPostgres(db), nil
}

// NewPostgres wraps an existing connection pool
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{Queries: New(db), db: db}
}

// DB returns the underlying pool, used to begin import transactions
func (p *Postgres) DB() *sql.DB {
	return p.db
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	return p.db.Close()
}

// LoadPortfolio fetches all of an owner's jobs, receipts and timesheets.
// The three queries run concurrently; the first failure cancels the rest.
func (p *Postgres) LoadPortfolio(ctx context.Context, ownerID string) (*parser.Bundle, error) {
	started := time.Now()

	var (
		jobs       []model.JobRecord
		receipts   []model.ReceiptRecord
		timesheets []model.TimesheetRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = p.ListJobs(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		receipts, err = p.ListReceipts(gctx, ownerID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		timesheets, err = p.ListTimesheets(gctx, ownerID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrapf(err, "store: load portfolio for owner %s", ownerID)
	}

	zap.L().Debug("portfolio loaded",
		zap.String("owner_id", ownerID),
		zap.Int("jobs", len(jobs)),
		zap.Int("receipts", len(receipts)),
		zap.Int("timesheets", len(timesheets)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &parser.Bundle{Jobs: jobs, Receipts: receipts, Timesheets: timesheets}, nil
}
