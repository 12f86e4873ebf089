package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datsun80zx/jobinsights/internal/model"
)

func TestDecodeBundle(t *testing.T) {
	payload := []byte(`{
		"jobs": [
			{"id": 7, "status": "In-Progress", "project_value": "10000", "amountPaid": 8000,
			 "start_date": "2024-01-01", "end_date": null, "client_name": "Acme", "job_name": "Remodel"}
		],
		"receipts": [
			{"id": "r1", "job_id": "7", "amount": 1000, "date": "2024-01-05"},
			{"id": "r2", "job_id": null, "amount": "not a number"}
		],
		"timesheets": [
			{"id": "t1", "jobId": "7", "userId": "u1", "hours": 40, "hourlyRate": "50", "date": 1704067200000}
		]
	}`)

	bundle, err := DecodeBundle(payload)
	require.NoError(t, err)

	require.Len(t, bundle.Jobs, 1)
	job := bundle.Jobs[0]
	assert.Equal(t, "7", job.ID)
	assert.Equal(t, "in-progress", job.Status)
	assert.Equal(t, "10000", job.ProjectValue.String())
	assert.Equal(t, "8000", job.AmountPaid.String())
	require.NotNil(t, job.StartDate)
	assert.Nil(t, job.EndDate)
	assert.Equal(t, "Acme", job.ClientName)
	assert.Equal(t, "Remodel", job.JobName)

	require.Len(t, bundle.Receipts, 2)
	assert.True(t, model.BelongsTo(bundle.Receipts[0].JobID, "7"))
	assert.Nil(t, bundle.Receipts[1].JobID)
	assert.True(t, bundle.Receipts[1].Amount.IsZero())

	require.Len(t, bundle.Timesheets, 1)
	ts := bundle.Timesheets[0]
	assert.Equal(t, "u1", ts.UserID)
	assert.Equal(t, "40", ts.Hours.String())
	assert.Equal(t, "50", ts.HourlyRate.String())
	require.NotNil(t, ts.Date)
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(*ts.Date))
}

func TestDecodeBundleMissingCollections(t *testing.T) {
	bundle, err := DecodeBundle([]byte(`{"jobs": null}`))
	require.NoError(t, err)
	assert.Empty(t, bundle.Jobs)
	assert.Empty(t, bundle.Receipts)
	assert.Empty(t, bundle.Timesheets)
}

func TestDecodeStructuralFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"malformed json", `{"jobs": [`},
		{"top level array", `[]`},
		{"jobs not iterable", `{"jobs": 12}`},
		{"receipts is object", `{"receipts": {"id": "r1"}}`},
		{"element not object", `{"timesheets": [1, 2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := DecodeBundle([]byte(tt.payload))
			assert.Nil(t, bundle)
			var engErr *model.EngineError
			require.True(t, errors.As(err, &engErr), "want EngineError, got %v", err)
		})
	}
}

func TestDecodeJobRequest(t *testing.T) {
	req, err := DecodeJobRequest([]byte(`{"job": {"id": "j1", "status": "completed", "project_value": 500}, "receipts": []}`))
	require.NoError(t, err)
	require.NotNil(t, req.Job)
	assert.Equal(t, "j1", req.Job.ID)
	assert.True(t, req.Job.IsCompleted())
	assert.Empty(t, req.Timesheets)

	_, err = DecodeJobRequest([]byte(`{"job": "j1"}`))
	var engErr *model.EngineError
	assert.True(t, errors.As(err, &engErr))
}

func TestDecodeJobs(t *testing.T) {
	jobs, err := DecodeJobs([]byte(`[{"id": "a", "projectValue": "$1,500.00"}]`))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "1500", jobs[0].ProjectValue.String())

	_, err = DecodeJobs([]byte(`{"id": "a"}`))
	assert.Error(t, err)
}

func TestDecodeOutOfRangeNumbers(t *testing.T) {
	payload := []byte(`{
		"jobs": [{"id": "1", "status": "active", "project_value": "1e400", "amount_paid": 1e30000000}],
		"receipts": [{"id": "r1", "job_id": "1", "amount": -1e400}],
		"timesheets": [{"id": "t1", "user_id": "u1", "hours": "2.5e1", "hourly_rate": 1e-30000000}]
	}`)

	bundle, err := DecodeBundle(payload)
	require.NoError(t, err)

	require.Len(t, bundle.Jobs, 1)
	assert.True(t, bundle.Jobs[0].ProjectValue.IsZero())
	assert.True(t, bundle.Jobs[0].AmountPaid.IsZero())
	assert.True(t, bundle.Receipts[0].Amount.IsZero())
	assert.Equal(t, "25", bundle.Timesheets[0].Hours.String())
	assert.True(t, bundle.Timesheets[0].HourlyRate.IsZero())
}
