package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPlan is a planned income/expense pair for a period such as
// "2024-06", "2024-Q2" or "2024".
type BudgetPlan struct {
	ID             int64           `json:"id"`
	Period         string          `json:"period"`
	PlannedIncome  decimal.Decimal `json:"planned_income"`
	PlannedExpense decimal.Decimal `json:"planned_expense"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
