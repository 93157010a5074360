package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// daysPerMonth approximates the average length of a calendar month, used to
// amortize a savings goal over months instead of exact month boundaries.
const daysPerMonth = 30.44

// Fund is a savings pot with an optional goal and target date. It counts as a
// monetary asset in net-worth terms but is tracked separately.
type Fund struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Goal         decimal.Decimal `json:"goal"`
	TargetDate   *time.Time      `json:"target_date,omitempty"`
	CurrentValue decimal.Decimal `json:"current_value"`
	CurrencyID   int64           `json:"currency_id"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressPercentage returns current/goal as a percentage, 0 when the goal
// is not positive.
func (f *Fund) ProgressPercentage() decimal.Decimal {
	if f.Goal.IsPositive() {
		return f.CurrentValue.Div(f.Goal).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return decimal.Zero.Round(2)
}

// RemainingAmount returns how much is still missing, floored at zero
func (f *Fund) RemainingAmount() decimal.Decimal {
	remaining := f.Goal.Sub(f.CurrentValue)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// DaysUntilTarget returns the days left until the target date (floored at 0),
// or nil when no target date is set.
func (f *Fund) DaysUntilTarget(now time.Time) *int {
	if f.TargetDate == nil {
		return nil
	}
	days := int(math.Ceil(f.TargetDate.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}

// MonthlySavingsNeeded returns the amount to save per average-length month to
// reach the goal by the target date, 0 when there is no positive day count.
func (f *Fund) MonthlySavingsNeeded(now time.Time) decimal.Decimal {
	days := f.DaysUntilTarget(now)
	if days == nil || *days <= 0 {
		return decimal.Zero.Round(2)
	}
	months := decimal.NewFromInt(int64(*days)).Div(decimal.NewFromFloat(daysPerMonth))
	return f.RemainingAmount().Div(months).Round(2)
}
