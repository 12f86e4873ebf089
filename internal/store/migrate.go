package store

import (
	"context"

	"github.com/rotisserie/eris"
)

const postgresMigration = `
CREATE TABLE IF NOT EXISTS import_batches (
	id                   BIGSERIAL PRIMARY KEY,
	owner_id             TEXT NOT NULL,
	jobs_filename        TEXT NOT NULL,
	receipts_filename    TEXT NOT NULL,
	timesheets_filename  TEXT NOT NULL,
	jobs_hash            TEXT NOT NULL,
	receipts_hash        TEXT NOT NULL,
	timesheets_hash      TEXT NOT NULL,
	row_count_jobs       INTEGER NOT NULL DEFAULT 0,
	row_count_receipts   INTEGER NOT NULL DEFAULT 0,
	row_count_timesheets INTEGER NOT NULL DEFAULT 0,
	status               TEXT NOT NULL DEFAULT 'pending',
	error_message        TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (owner_id, jobs_hash, receipts_hash, timesheets_hash)
);

CREATE TABLE IF NOT EXISTS jobs (
	owner_id        TEXT NOT NULL,
	id              TEXT NOT NULL,
	import_batch_id BIGINT REFERENCES import_batches(id),
	status          TEXT NOT NULL DEFAULT '',
	project_value   NUMERIC(14,2) NOT NULL DEFAULT 0,
	amount_paid     NUMERIC(14,2) NOT NULL DEFAULT 0,
	start_date      TIMESTAMPTZ,
	end_date        TIMESTAMPTZ,
	client_name     TEXT NOT NULL DEFAULT '',
	job_name        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (owner_id, id)
);

CREATE TABLE IF NOT EXISTS receipts (
	owner_id        TEXT NOT NULL,
	id              TEXT NOT NULL,
	import_batch_id BIGINT REFERENCES import_batches(id),
	job_id          TEXT,
	amount          NUMERIC(14,2) NOT NULL DEFAULT 0,
	receipt_date    TIMESTAMPTZ,
	PRIMARY KEY (owner_id, id)
);

CREATE INDEX IF NOT EXISTS idx_receipts_job ON receipts (owner_id, job_id);

CREATE TABLE IF NOT EXISTS timesheets (
	owner_id        TEXT NOT NULL,
	id              TEXT NOT NULL,
	import_batch_id BIGINT REFERENCES import_batches(id),
	job_id          TEXT,
	user_id         TEXT NOT NULL DEFAULT '',
	hours           NUMERIC(10,2) NOT NULL DEFAULT 0,
	hourly_rate     NUMERIC(10,2) NOT NULL DEFAULT 0,
	work_date       TIMESTAMPTZ,
	PRIMARY KEY (owner_id, id)
);

CREATE INDEX IF NOT EXISTS idx_timesheets_job ON timesheets (owner_id, job_id);
`

// Migrate creates the schema if it does not exist
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, postgresMigration)
	return eris.Wrap(err, "store: migrate")
}
