package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is reference data for monetary fields. Amounts never imply a
// currency; every money column carries an explicit currency id.
type Currency struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// CurrencyRate is one exchange rate to the base currency on a calendar date,
// one per currency per date. Rates are stored for reference; amounts are
// never converted automatically.
type CurrencyRate struct {
	ID         int64           `json:"id"`
	CurrencyID int64           `json:"currency_id"`
	Date       time.Time       `json:"date"`
	RateToBase decimal.Decimal `json:"rate_to_base"`
}

// AssetType groups assets for dashboard aggregation (cash, property, business, ...)
type AssetType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LiabilityType groups liabilities (loan, mortgage, ...)
type LiabilityType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
