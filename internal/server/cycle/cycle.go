// Package cycle derives a workspace's recurring billing window from its items
// and projects the balance once every outstanding item settles. Everything
// here is a pure function of its arguments.
package cycle

import (
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/shopspring/decimal"
)

// MaxDay is the largest due day an item may carry.
const MaxDay = 31

// Days is the window as stored on the workspace: both nil when there are no
// items, otherwise 1..31.
type Days struct {
	StartDay *int
	EndDay   *int
}

// CalculateCycleDays starts the cycle on the earliest due day and ends it on
// the day before, wrapping from day 1 to day 31. Item types do not matter.
func CalculateCycleDays(items []models.Item) Days {
	if len(items) == 0 {
		return Days{}
	}

	start := MaxDay
	for _, it := range items {
		if it.DayOfMonth < start {
			start = it.DayOfMonth
		}
	}

	end := start - 1
	if end < 1 {
		end = MaxDay
	}

	return Days{StartDay: &start, EndDay: &end}
}

// Equal compares against the days currently stored on a workspace.
func (d Days) Equal(start, end *int) bool {
	return eqDay(d.StartDay, start) && eqDay(d.EndDay, end)
}

func eqDay(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// BalanceCards are derived, never stored.
type BalanceCards struct {
	CurrentBalance  decimal.Decimal
	ExpectedBalance decimal.Decimal
	// DeficitExcess is unpaid income minus unpaid payments; it always equals
	// ExpectedBalance - CurrentBalance.
	DeficitExcess decimal.Decimal
}

func CalculateBalanceCards(balance decimal.Decimal, items []models.Item) BalanceCards {
	pending := decimal.Zero
	for _, it := range items {
		if it.IsPaid {
			continue
		}
		if it.Type.IsIncome() {
			pending = pending.Add(it.Amount)
		} else {
			pending = pending.Sub(it.Amount)
		}
	}

	return BalanceCards{
		CurrentBalance:  balance,
		ExpectedBalance: balance.Add(pending),
		DeficitExcess:   pending,
	}
}
