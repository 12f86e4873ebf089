package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/datsun80zx/jobinsights/internal/model"
)

// WorkerMetric summarizes one worker's logged time
type WorkerMetric struct {
	UserID       string
	Hours        float64
	Entries      int
	Jobs         int     // distinct jobs the worker logged time against
	AverageRate  float64 // unweighted mean of the worker's entry rates
	ShareOfHours float64 // percent of all logged hours
}

// CalculateWorkerMetrics computes per-worker utilization, ordered by hours
// descending and then by user id so the output is deterministic.
func CalculateWorkerMetrics(timesheets []model.TimesheetRecord) []WorkerMetric {
	type accumulator struct {
		hours   decimal.Decimal
		rates   decimal.Decimal
		entries int
		jobs    map[string]struct{}
	}

	totalHours := decimal.Zero
	byWorker := make(map[string]*accumulator)
	for _, ts := range timesheets {
		acc := byWorker[ts.UserID]
		if acc == nil {
			acc = &accumulator{
				hours: decimal.Zero,
				rates: decimal.Zero,
				jobs:  make(map[string]struct{}),
			}
			byWorker[ts.UserID] = acc
		}

		acc.hours = acc.hours.Add(ts.Hours)
		acc.rates = acc.rates.Add(ts.HourlyRate)
		acc.entries++
		if ts.JobID != nil {
			acc.jobs[*ts.JobID] = struct{}{}
		}
		totalHours = totalHours.Add(ts.Hours)
	}

	results := make([]WorkerMetric, 0, len(byWorker))
	for userID, acc := range byWorker {
		results = append(results, WorkerMetric{
			UserID:       userID,
			Hours:        acc.hours.InexactFloat64(),
			Entries:      acc.entries,
			Jobs:         len(acc.jobs),
			AverageRate:  ratio(acc.rates, acc.entries),
			ShareOfHours: percent(acc.hours, totalHours),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Hours != results[j].Hours {
			return results[i].Hours > results[j].Hours
		}
		return results[i].UserID < results[j].UserID
	})

	return results
}
