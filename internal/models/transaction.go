package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Income kinds
const (
	IncomeRegular    = "regular"
	IncomeTemporary  = "temporary"
	IncomeOccasional = "occasional"
)

// Expense kinds
const (
	ExpenseMandatory = "mandatory"
	ExpenseOptional  = "optional"
)

// Income is money received, optionally attributed to an asset
type Income struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	CurrencyID  int64           `json:"currency_id"`
	Date        time.Time       `json:"date"`
	AssetID     *int64          `json:"asset_id,omitempty"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	Type        string          `json:"type"`
	Periodicity string          `json:"periodicity,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expense is money spent, optionally attributed to an asset or a liability.
// A liability with no linked expenses triggers a dashboard data-quality warning.
type Expense struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	CurrencyID  int64           `json:"currency_id"`
	Date        time.Time       `json:"date"`
	AssetID     *int64          `json:"asset_id,omitempty"`
	LiabilityID *int64          `json:"liability_id,omitempty"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	Type        string          `json:"type"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
