package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"famledger/internal/database"
	"famledger/internal/models"
)

// LiabilityRepository handles liabilities and their payment history
type LiabilityRepository struct {
	db *database.DB
}

// NewLiabilityRepository creates a new liability repository
func NewLiabilityRepository(db *database.DB) *LiabilityRepository {
	return &LiabilityRepository{db: db}
}

// DebtTotals is the dashboard's aggregate view over visible liabilities
type DebtTotals struct {
	TotalInitial decimal.Decimal `json:"total_initial"`
	TotalDebt    decimal.Decimal `json:"total_debt"`
	Count        int             `json:"count"`
}

// LiabilitySummaryRow is a liability joined with its payment totals and a
// data-quality flag for expense linkage.
type LiabilitySummaryRow struct {
	models.Liability
	TotalPayments     decimal.Decimal `json:"total_payments"`
	TotalPrincipal    decimal.Decimal `json:"total_principal"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	HasLinkedExpenses bool            `json:"has_linked_expenses"`
}

const liabilityColumns = `id, name, type_id, initial_amount, currency_id, open_date, close_date,
	interest_rate, payment_type, current_debt, owner_id, family_id, is_family, created_at, updated_at`

func scanLiability(row interface{ Scan(...interface{}) error }) (*models.Liability, error) {
	var l models.Liability
	var closeDate sql.NullTime
	var interestRate decimal.NullDecimal
	var paymentType sql.NullString
	var ownerID, familyID sql.NullInt64
	err := row.Scan(&l.ID, &l.Name, &l.TypeID, &l.InitialAmount, &l.CurrencyID, &l.OpenDate, &closeDate,
		&interestRate, &paymentType, &l.CurrentDebt, &ownerID, &familyID, &l.IsFamily,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.CloseDate = fromNullTime(closeDate)
	if interestRate.Valid {
		l.InterestRate = &interestRate.Decimal
	}
	l.PaymentType = fromNullString(paymentType)
	l.OwnerID = fromNullInt(ownerID)
	l.FamilyID = fromNullInt(familyID)
	return &l, nil
}

// Create inserts a liability and logs the creation in one transaction
func (r *LiabilityRepository) Create(liability *models.Liability, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := []any{liability.Name, liability.TypeID, liability.InitialAmount, liability.CurrencyID,
		liability.OpenDate.Format(dateLayout), nullableDate(liability.CloseDate),
		nullableDecimal(liability.InterestRate), liability.PaymentType, liability.CurrentDebt}
	args = append(args, ownershipArgs(liability.Ownership)...)

	id, err := tx.ExecReturningID(`
		INSERT INTO liabilities (name, type_id, initial_amount, currency_id, open_date, close_date,
			interest_rate, payment_type, current_debt, owner_id, family_id, is_family,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to create liability: %w", err)
	}

	liability.ID = id
	liability.CreatedAt = time.Now()
	liability.UpdatedAt = liability.CreatedAt

	if err := insertLog(tx, entityLiability, id, models.LogActionCreate, actorID, nil, liability); err != nil {
		return err
	}
	return tx.Commit()
}

// Update saves a liability's editable fields and logs before/after snapshots.
// CurrentDebt is directly editable and stays the authoritative figure.
func (r *LiabilityRepository) Update(before, after *models.Liability, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE liabilities
		SET name = ?, type_id = ?, initial_amount = ?, currency_id = ?, open_date = ?, close_date = ?,
			interest_rate = ?, payment_type = ?, current_debt = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, after.Name, after.TypeID, after.InitialAmount, after.CurrencyID,
		after.OpenDate.Format(dateLayout), nullableDate(after.CloseDate),
		nullableDecimal(after.InterestRate), after.PaymentType, after.CurrentDebt, after.ID)
	if err != nil {
		return fmt.Errorf("failed to update liability: %w", err)
	}
	after.UpdatedAt = time.Now()

	if err := insertLog(tx, entityLiability, after.ID, models.LogActionUpdate, actorID, before, after); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a liability and logs the final snapshot
func (r *LiabilityRepository) Delete(liability *models.Liability, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM liabilities WHERE id = ?", liability.ID); err != nil {
		return fmt.Errorf("failed to delete liability: %w", err)
	}

	if err := insertLog(tx, entityLiability, liability.ID, models.LogActionDelete, actorID, liability, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves a liability visible within the scope, nil if not found or
// not visible.
func (r *LiabilityRepository) GetByID(id int64, scope Scope) (*models.Liability, error) {
	where, args := scope.Predicate()
	row := r.db.QueryRow(`
		SELECT `+liabilityColumns+` FROM liabilities WHERE id = ? AND `+where,
		append([]any{id}, args...)...)
	liability, err := scanLiability(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get liability: %w", err)
	}
	return liability, nil
}

// List returns all liabilities visible within the scope
func (r *LiabilityRepository) List(scope Scope) ([]models.Liability, error) {
	where, args := scope.Predicate()
	rows, err := r.db.Query(`
		SELECT `+liabilityColumns+` FROM liabilities WHERE `+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query liabilities: %w", err)
	}
	defer rows.Close()

	var liabilities []models.Liability
	for rows.Next() {
		liability, err := scanLiability(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liability: %w", err)
		}
		liabilities = append(liabilities, *liability)
	}
	return liabilities, rows.Err()
}

// RecordPayment books one payment per liability per date and reduces the
// outstanding debt by the principal portion, never below zero. The payment
// insert, the debt update and both audit rows commit together. Booking a
// second payment for the same date returns ErrDuplicate.
func (r *LiabilityRepository) RecordPayment(liability *models.Liability, p *models.LiabilityPayment, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	paymentID, err := tx.ExecReturningID(`
		INSERT INTO liability_payments (liability_id, amount, date, principal, interest, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.LiabilityID, p.Amount, p.Date.Format(dateLayout), p.Principal, p.Interest)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to record payment: %w", err)
	}
	p.ID = paymentID
	p.CreatedAt = time.Now()

	before := *liability
	liability.CurrentDebt = liability.CurrentDebt.Sub(p.Principal)
	if liability.CurrentDebt.IsNegative() {
		liability.CurrentDebt = decimal.Zero
	}
	liability.UpdatedAt = time.Now()

	_, err = tx.Exec(`
		UPDATE liabilities SET current_debt = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, liability.CurrentDebt, liability.ID)
	if err != nil {
		return fmt.Errorf("failed to reduce debt: %w", err)
	}

	if err := insertLog(tx, entityPayment, paymentID, models.LogActionCreate, actorID, nil, p); err != nil {
		return err
	}
	if err := insertLog(tx, entityLiability, liability.ID, models.LogActionUpdate, actorID, &before, liability); err != nil {
		return err
	}
	return tx.Commit()
}

// GetPayment retrieves a single payment, nil if not found. Visibility is
// checked by the caller against the parent liability.
func (r *LiabilityRepository) GetPayment(id int64) (*models.LiabilityPayment, error) {
	var p models.LiabilityPayment
	err := r.db.QueryRow(`
		SELECT id, liability_id, amount, date, principal, interest, created_at
		FROM liability_payments WHERE id = ?
	`, id).Scan(&p.ID, &p.LiabilityID, &p.Amount, &p.Date, &p.Principal, &p.Interest, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &p, nil
}

// ListPayments returns a liability's payments, newest first. Visibility is
// checked by the caller against the liability itself.
func (r *LiabilityRepository) ListPayments(liabilityID int64) ([]models.LiabilityPayment, error) {
	rows, err := r.db.Query(`
		SELECT id, liability_id, amount, date, principal, interest, created_at
		FROM liability_payments
		WHERE liability_id = ?
		ORDER BY date DESC
	`, liabilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []models.LiabilityPayment
	for rows.Next() {
		var p models.LiabilityPayment
		if err := rows.Scan(&p.ID, &p.LiabilityID, &p.Amount, &p.Date, &p.Principal, &p.Interest, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// SumDebt totals the initial amounts and outstanding debt of visible liabilities
func (r *LiabilityRepository) SumDebt(scope Scope) (DebtTotals, error) {
	where, args := scope.Predicate()
	var totals DebtTotals
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(initial_amount), 0), COALESCE(SUM(current_debt), 0), COUNT(*)
		FROM liabilities WHERE `+where, args...).Scan(&totals.TotalInitial, &totals.TotalDebt, &totals.Count)
	if err != nil {
		return DebtTotals{}, fmt.Errorf("failed to sum liabilities: %w", err)
	}
	return totals, nil
}

// ListSummaries returns visible liabilities with payment totals and the
// expense-linkage flag used for unlinked-debt warnings.
func (r *LiabilityRepository) ListSummaries(scope Scope) ([]LiabilitySummaryRow, error) {
	where, args := scope.Predicate()
	rows, err := r.db.Query(`
		SELECT `+liabilityColumns+`,
			COALESCE((SELECT SUM(amount) FROM liability_payments p WHERE p.liability_id = liabilities.id), 0),
			COALESCE((SELECT SUM(principal) FROM liability_payments p WHERE p.liability_id = liabilities.id), 0),
			COALESCE((SELECT SUM(interest) FROM liability_payments p WHERE p.liability_id = liabilities.id), 0),
			EXISTS(SELECT 1 FROM expenses e WHERE e.liability_id = liabilities.id)
		FROM liabilities WHERE `+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query liability summaries: %w", err)
	}
	defer rows.Close()

	var summaries []LiabilitySummaryRow
	for rows.Next() {
		var row LiabilitySummaryRow
		var closeDate sql.NullTime
		var interestRate decimal.NullDecimal
		var paymentType sql.NullString
		var ownerID, familyID sql.NullInt64
		if err := rows.Scan(&row.ID, &row.Name, &row.TypeID, &row.InitialAmount, &row.CurrencyID,
			&row.OpenDate, &closeDate, &interestRate, &paymentType, &row.CurrentDebt,
			&ownerID, &familyID, &row.IsFamily, &row.CreatedAt, &row.UpdatedAt,
			&row.TotalPayments, &row.TotalPrincipal, &row.TotalInterest, &row.HasLinkedExpenses); err != nil {
			return nil, fmt.Errorf("failed to scan liability summary: %w", err)
		}
		row.CloseDate = fromNullTime(closeDate)
		if interestRate.Valid {
			row.InterestRate = &interestRate.Decimal
		}
		row.PaymentType = fromNullString(paymentType)
		row.OwnerID = fromNullInt(ownerID)
		row.FamilyID = fromNullInt(familyID)
		summaries = append(summaries, row)
	}
	return summaries, rows.Err()
}
