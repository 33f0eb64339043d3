package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/pto-approval-api/internal/models"
	"github.com/yukikurage/pto-approval-api/internal/utils"
)

// DefaultHoursPerDay is the chargeable amount of one business day
const DefaultHoursPerDay = 8

// Ledger computes what a date range costs and what a user can spend.
// Balances and costs are expressed in hours.
type Ledger struct {
	hoursPerDay decimal.Decimal
}

// NewLedger creates a Ledger charging hoursPerDay per business day
func NewLedger(hoursPerDay int64) *Ledger {
	if hoursPerDay <= 0 {
		hoursPerDay = DefaultHoursPerDay
	}
	return &Ledger{hoursPerDay: decimal.NewFromInt(hoursPerDay)}
}

// HoursPerDay returns the per-day unit
func (l *Ledger) HoursPerDay() decimal.Decimal {
	return l.hoursPerDay
}

// Cost returns the hours charged for the closed range [start, end]
func (l *Ledger) Cost(start, end time.Time) decimal.Decimal {
	return l.hoursPerDay.Mul(decimal.NewFromInt(int64(BusinessDays(start, end))))
}

// Available returns the spendable balance. The stored balance is the running
// ledger; it is only decremented when a request is approved.
func (l *Ledger) Available(user *models.User) decimal.Decimal {
	return user.PTOBalance
}

// Reserved sums the hours snapshot of the given pending requests
func (l *Ledger) Reserved(pending []models.PTORequest) decimal.Decimal {
	total := decimal.Zero
	for _, request := range pending {
		if request.Status != models.RequestStatusPending {
			continue
		}
		total = total.Add(request.Hours)
	}
	return total
}

// BusinessDays counts Monday–Friday dates in [start, end], both inclusive.
// It returns 0 when end is before start.
func BusinessDays(start, end time.Time) int {
	start = utils.NormalizeDate(start)
	end = utils.NormalizeDate(end)
	if end.Before(start) {
		return 0
	}

	totalDays := int(end.Sub(start).Hours()/24) + 1
	fullWeeks := totalDays / 7
	count := fullWeeks * 5

	// Walk the remaining partial week
	current := start.AddDate(0, 0, fullWeeks*7)
	for !current.After(end) {
		if weekday := current.Weekday(); weekday != time.Saturday && weekday != time.Sunday {
			count++
		}
		current = current.AddDate(0, 0, 1)
	}

	return count
}
