package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MonthlyTotal is the subject's share of spending in one calendar month.
type MonthlyTotal struct {
	// Month is the first instant of the month, in Unix milliseconds.
	Month int64
	Total float64
}

// TotalSpent sums the subject's own split amounts over expenses dated at or
// after since (Unix milliseconds). Paid and unpaid splits both count: this is
// spending, not debt.
func TotalSpent(subjectID string, expenses []*models.Expense, since int64) float64 {
	var total decimal.Decimal
	for _, e := range expenses {
		if e == nil || e.Date < since || !e.Involves(subjectID) {
			continue
		}
		if mine, ok := e.SplitFor(subjectID); ok {
			total = total.Add(decimal.NewFromFloat(mine.Amount))
		}
	}
	return total.InexactFloat64()
}

// MonthlySpending buckets the subject's own split amounts into the twelve
// months of year, in loc. Every month is present, ascending, even when zero.
// Expenses outside the year are ignored.
func MonthlySpending(subjectID string, expenses []*models.Expense, year int, loc *time.Location) []MonthlyTotal {
	if loc == nil {
		loc = time.UTC
	}

	totals := make([]decimal.Decimal, 12)
	for _, e := range expenses {
		if e == nil || !e.Involves(subjectID) {
			continue
		}
		mine, ok := e.SplitFor(subjectID)
		if !ok {
			continue
		}
		when := time.UnixMilli(e.Date).In(loc)
		if when.Year() != year {
			continue
		}
		m := int(when.Month()) - 1
		totals[m] = totals[m].Add(decimal.NewFromFloat(mine.Amount))
	}

	out := make([]MonthlyTotal, 12)
	for i := range out {
		out[i] = MonthlyTotal{
			Month: time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, loc).UnixMilli(),
			Total: totals[i].InexactFloat64(),
		}
	}
	return out
}

// StartOfYear returns the first instant of t's year in t's location, in Unix
// milliseconds.
func StartOfYear(t time.Time) int64 {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location()).UnixMilli()
}
