package repository

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"famledger/internal/models"
)

// Entity type labels used in the audit log
const (
	entityAsset      = "asset"
	entityShare      = "asset_share"
	entityFund       = "fund"
	entityLiability  = "liability"
	entityPayment    = "liability_payment"
	entityIncome     = "income"
	entityExpense    = "expense"
	entityCategory   = "category"
	entityBudgetPlan = "budget_plan"
)

// ownershipArgs expands an ownership into driver arguments for the
// owner_id, family_id, is_family column triple.
func ownershipArgs(o models.Ownership) []any {
	return []any{nullableInt(o.OwnerID), nullableInt(o.FamilyID), o.IsFamily}
}

// nullableInt converts an optional id into a driver argument
func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableTime converts an optional timestamp into a driver argument
func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

// nullableDate converts an optional calendar date into a driver argument.
// Dates are written as YYYY-MM-DD strings so all three dialects store the
// same value for their DATE columns.
func nullableDate(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.Format(dateLayout)
}

// nullableDecimal converts an optional amount into a driver argument
func nullableDecimal(v *decimal.Decimal) any {
	if v == nil {
		return nil
	}
	return v.String()
}

func fromNullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func fromNullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}

func fromNullString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
