package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Liability payment schedules
const (
	PaymentTypeAnnuity      = "annuity"
	PaymentTypeDifferential = "diff"
)

// Liability is a debt: a loan, mortgage or private borrowing. CurrentDebt is
// the authoritative outstanding figure and is directly editable; payment
// history is informational and may diverge from it.
type Liability struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	TypeID        int64            `json:"type_id"`
	InitialAmount decimal.Decimal  `json:"initial_amount"`
	CurrencyID    int64            `json:"currency_id"`
	OpenDate      time.Time        `json:"open_date"`
	CloseDate     *time.Time       `json:"close_date,omitempty"`
	InterestRate  *decimal.Decimal `json:"interest_rate,omitempty"`
	PaymentType   string           `json:"payment_type,omitempty"`
	CurrentDebt   decimal.Decimal  `json:"current_debt"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalPaid returns initial minus current debt. This deliberately ignores the
// payment rows: current_debt can be adjusted by hand and stays authoritative.
func (l *Liability) TotalPaid() decimal.Decimal {
	return l.InitialAmount.Sub(l.CurrentDebt)
}

// LiabilityPayment is an immutable payment record apportioned into principal
// and interest; at most one payment is booked per liability per day.
type LiabilityPayment struct {
	ID          int64           `json:"id"`
	LiabilityID int64           `json:"liability_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Principal   decimal.Decimal `json:"principal"`
	Interest    decimal.Decimal `json:"interest"`
	CreatedAt   time.Time       `json:"created_at"`
}
