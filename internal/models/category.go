package models

import "time"

// Category kinds
const (
	CategoryAsset   = "asset"
	CategoryIncome  = "income"
	CategoryExpense = "expense"
)

// Category is a user- or family-defined grouping for assets, incomes and
// expenses. Categories nest via ParentID and follow the same ownership rules
// as every other ledger entity.
type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Type     string `json:"type"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
