// Package metrics reduces job, receipt and timesheet collections into the
// derived financial and operational aggregates the insight generators judge.
//
// Sums are carried in decimal and converted to float64 once, when the snapshot
// is built. Every percentage is 0 when its denominator is 0.
package metrics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/datsun80zx/jobinsights/internal/model"
)

// RecentWindow is the look-back used for "recent" receipt and timesheet counts
const RecentWindow = 30 * 24 * time.Hour

var hundred = decimal.NewFromInt(100)

// laborTotals holds the timesheet reduction shared by both paths
type laborTotals struct {
	Hours      decimal.Decimal
	AvgRate    decimal.Decimal
	Cost       decimal.Decimal
	Entries    int
	Workers    int
	RecentRows int
}

// sumLabor totals hours and derives labor cost as hours x mean entry rate.
// The mean is unweighted by hours.
func sumLabor(timesheets []model.TimesheetRecord, now time.Time) laborTotals {
	totals := laborTotals{
		Hours:   decimal.Zero,
		AvgRate: decimal.Zero,
		Cost:    decimal.Zero,
	}

	rateSum := decimal.Zero
	workers := make(map[string]struct{})
	for _, ts := range timesheets {
		totals.Hours = totals.Hours.Add(ts.Hours)
		rateSum = rateSum.Add(ts.HourlyRate)
		workers[ts.UserID] = struct{}{}
		if isRecent(ts.Date, now) {
			totals.RecentRows++
		}
	}

	totals.Entries = len(timesheets)
	totals.Workers = len(workers)
	if totals.Entries > 0 {
		totals.AvgRate = rateSum.Div(decimal.NewFromInt(int64(totals.Entries)))
	}
	totals.Cost = totals.Hours.Mul(totals.AvgRate)

	return totals
}

// isRecent reports date >= now - RecentWindow. Undated records are never recent.
func isRecent(date *time.Time, now time.Time) bool {
	if date == nil {
		return false
	}
	return !date.Before(now.Add(-RecentWindow))
}

// percent returns num/den*100, or 0 when den is zero
func percent(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Div(den).Mul(hundred).InexactFloat64()
}

// ratio returns num/den, or 0 when den is zero
func ratio(num decimal.Decimal, den int) float64 {
	if den == 0 {
		return 0
	}
	return num.Div(decimal.NewFromInt(int64(den))).InexactFloat64()
}

// DaysBetween returns the number of calendar days from a to b. Each time is
// read as a date in its own location, so the time of day never counts.
func DaysBetween(a, b time.Time) int {
	return int(calendarDay(b).Sub(calendarDay(a)) / (24 * time.Hour))
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
