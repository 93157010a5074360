package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is a valued holding: cash, property, a business stake.
// PurchaseValue and CurrentValue may use different currencies.
type Asset struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	TypeID             int64           `json:"type_id"`
	CategoryID         *int64          `json:"category_id,omitempty"`
	PurchaseValue      decimal.Decimal `json:"purchase_value"`
	PurchaseCurrencyID int64           `json:"purchase_currency_id"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	CurrentCurrencyID  int64           `json:"current_currency_id"`
	LastValuationDate  *time.Time      `json:"last_valuation_date,omitempty"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ROI returns the return on investment as a percentage with two decimal
// places. A non-positive purchase value yields 0 rather than a division by
// zero; a free asset has no meaningful ROI.
func (a *Asset) ROI() decimal.Decimal {
	if a.PurchaseValue.IsPositive() {
		return a.CurrentValue.Sub(a.PurchaseValue).
			Div(a.PurchaseValue).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return decimal.Zero.Round(2)
}

// AssetShare records what fraction of an asset a user or a family holds,
// as a percentage with four decimal places, valid over a date range. The
// holder is a user or a family, never both.
type AssetShare struct {
	ID        int64           `json:"id"`
	AssetID   int64           `json:"asset_id"`
	UserID    *int64          `json:"user_id,omitempty"`
	FamilyID  *int64          `json:"family_id,omitempty"`
	Share     decimal.Decimal `json:"share"`
	ValidFrom time.Time       `json:"valid_from"`
	ValidTo   *time.Time      `json:"valid_to,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AssetValueHistory records one valuation per asset per calendar date.
// Re-valuing the same date replaces the earlier figure.
type AssetValueHistory struct {
	ID         int64           `json:"id"`
	AssetID    int64           `json:"asset_id"`
	Value      decimal.Decimal `json:"value"`
	CurrencyID int64           `json:"currency_id"`
	Date       time.Time       `json:"date"`
}
