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

// EntryRepository handles income and expense records
type EntryRepository struct {
	db *database.DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *database.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// AssetFlows are the income and expense totals attributed to one asset
type AssetFlows struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

// NetIncome returns income minus expenses for the asset
func (f AssetFlows) NetIncome() decimal.Decimal {
	return f.TotalIncome.Sub(f.TotalExpense)
}

const incomeColumns = `id, name, amount, currency_id, date, asset_id, category_id, type,
	periodicity, end_date, owner_id, family_id, is_family, created_at, updated_at`

func scanIncome(row interface{ Scan(...interface{}) error }) (*models.Income, error) {
	var in models.Income
	var assetID, categoryID, ownerID, familyID sql.NullInt64
	var periodicity sql.NullString
	var endDate sql.NullTime
	err := row.Scan(&in.ID, &in.Name, &in.Amount, &in.CurrencyID, &in.Date, &assetID, &categoryID,
		&in.Type, &periodicity, &endDate, &ownerID, &familyID, &in.IsFamily, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	in.AssetID = fromNullInt(assetID)
	in.CategoryID = fromNullInt(categoryID)
	in.Periodicity = fromNullString(periodicity)
	in.EndDate = fromNullTime(endDate)
	in.OwnerID = fromNullInt(ownerID)
	in.FamilyID = fromNullInt(familyID)
	return &in, nil
}

// CreateIncome inserts an income and logs the creation in one transaction
func (r *EntryRepository) CreateIncome(income *models.Income, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := []any{income.Name, income.Amount, income.CurrencyID, income.Date.Format(dateLayout),
		nullableInt(income.AssetID), nullableInt(income.CategoryID), income.Type,
		income.Periodicity, nullableDate(income.EndDate)}
	args = append(args, ownershipArgs(income.Ownership)...)

	id, err := tx.ExecReturningID(`
		INSERT INTO incomes (name, amount, currency_id, date, asset_id, category_id, type,
			periodicity, end_date, owner_id, family_id, is_family, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to create income: %w", err)
	}

	income.ID = id
	income.CreatedAt = time.Now()
	income.UpdatedAt = income.CreatedAt

	if err := insertLog(tx, entityIncome, id, models.LogActionCreate, actorID, nil, income); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateIncome saves an income's editable fields and logs before/after snapshots
func (r *EntryRepository) UpdateIncome(before, after *models.Income, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE incomes
		SET name = ?, amount = ?, currency_id = ?, date = ?, asset_id = ?, category_id = ?,
			type = ?, periodicity = ?, end_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, after.Name, after.Amount, after.CurrencyID, after.Date.Format(dateLayout),
		nullableInt(after.AssetID), nullableInt(after.CategoryID), after.Type,
		after.Periodicity, nullableDate(after.EndDate), after.ID)
	if err != nil {
		return fmt.Errorf("failed to update income: %w", err)
	}
	after.UpdatedAt = time.Now()

	if err := insertLog(tx, entityIncome, after.ID, models.LogActionUpdate, actorID, before, after); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteIncome removes an income and logs the final snapshot
func (r *EntryRepository) DeleteIncome(income *models.Income, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM incomes WHERE id = ?", income.ID); err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}

	if err := insertLog(tx, entityIncome, income.ID, models.LogActionDelete, actorID, income, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// GetIncomeByID retrieves an income visible within the scope, nil if not
// found or not visible.
func (r *EntryRepository) GetIncomeByID(id int64, scope Scope) (*models.Income, error) {
	where, args := scope.Predicate()
	row := r.db.QueryRow(`
		SELECT `+incomeColumns+` FROM incomes WHERE id = ? AND `+where,
		append([]any{id}, args...)...)
	income, err := scanIncome(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get income: %w", err)
	}
	return income, nil
}

// ListIncomes returns all incomes visible within the scope, newest first
func (r *EntryRepository) ListIncomes(scope Scope) ([]models.Income, error) {
	where, args := scope.Predicate()
	rows, err := r.db.Query(`
		SELECT `+incomeColumns+` FROM incomes WHERE `+where+` ORDER BY date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incomes: %w", err)
	}
	defer rows.Close()

	var incomes []models.Income
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		incomes = append(incomes, *income)
	}
	return incomes, rows.Err()
}

const expenseColumns = `id, name, amount, currency_id, date, asset_id, liability_id, category_id,
	type, owner_id, family_id, is_family, created_at, updated_at`

func scanExpense(row interface{ Scan(...interface{}) error }) (*models.Expense, error) {
	var ex models.Expense
	var assetID, liabilityID, categoryID, ownerID, familyID sql.NullInt64
	err := row.Scan(&ex.ID, &ex.Name, &ex.Amount, &ex.CurrencyID, &ex.Date, &assetID, &liabilityID,
		&categoryID, &ex.Type, &ownerID, &familyID, &ex.IsFamily, &ex.CreatedAt, &ex.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ex.AssetID = fromNullInt(assetID)
	ex.LiabilityID = fromNullInt(liabilityID)
	ex.CategoryID = fromNullInt(categoryID)
	ex.OwnerID = fromNullInt(ownerID)
	ex.FamilyID = fromNullInt(familyID)
	return &ex, nil
}

// CreateExpense inserts an expense and logs the creation in one transaction
func (r *EntryRepository) CreateExpense(expense *models.Expense, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := []any{expense.Name, expense.Amount, expense.CurrencyID, expense.Date.Format(dateLayout),
		nullableInt(expense.AssetID), nullableInt(expense.LiabilityID), nullableInt(expense.CategoryID),
		expense.Type}
	args = append(args, ownershipArgs(expense.Ownership)...)

	id, err := tx.ExecReturningID(`
		INSERT INTO expenses (name, amount, currency_id, date, asset_id, liability_id, category_id,
			type, owner_id, family_id, is_family, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	expense.ID = id
	expense.CreatedAt = time.Now()
	expense.UpdatedAt = expense.CreatedAt

	if err := insertLog(tx, entityExpense, id, models.LogActionCreate, actorID, nil, expense); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateExpense saves an expense's editable fields and logs before/after snapshots
func (r *EntryRepository) UpdateExpense(before, after *models.Expense, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE expenses
		SET name = ?, amount = ?, currency_id = ?, date = ?, asset_id = ?, liability_id = ?,
			category_id = ?, type = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, after.Name, after.Amount, after.CurrencyID, after.Date.Format(dateLayout),
		nullableInt(after.AssetID), nullableInt(after.LiabilityID), nullableInt(after.CategoryID),
		after.Type, after.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	after.UpdatedAt = time.Now()

	if err := insertLog(tx, entityExpense, after.ID, models.LogActionUpdate, actorID, before, after); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteExpense removes an expense and logs the final snapshot
func (r *EntryRepository) DeleteExpense(expense *models.Expense, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM expenses WHERE id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	if err := insertLog(tx, entityExpense, expense.ID, models.LogActionDelete, actorID, expense, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// GetExpenseByID retrieves an expense visible within the scope, nil if not
// found or not visible.
func (r *EntryRepository) GetExpenseByID(id int64, scope Scope) (*models.Expense, error) {
	where, args := scope.Predicate()
	row := r.db.QueryRow(`
		SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND `+where,
		append([]any{id}, args...)...)
	expense, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns all expenses visible within the scope, newest first
func (r *EntryRepository) ListExpenses(scope Scope) ([]models.Expense, error) {
	where, args := scope.Predicate()
	rows, err := r.db.Query(`
		SELECT `+expenseColumns+` FROM expenses WHERE `+where+` ORDER BY date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *expense)
	}
	return expenses, rows.Err()
}

// AssetFlowTotals sums the incomes and expenses attributed to one asset.
// Visibility is checked by the caller against the asset itself.
func (r *EntryRepository) AssetFlowTotals(assetID int64) (AssetFlows, error) {
	var flows AssetFlows
	err := r.db.QueryRow(`
		SELECT
			COALESCE((SELECT SUM(amount) FROM incomes WHERE asset_id = ?), 0),
			COALESCE((SELECT SUM(amount) FROM expenses WHERE asset_id = ?), 0)
	`, assetID, assetID).Scan(&flows.TotalIncome, &flows.TotalExpense)
	if err != nil {
		return AssetFlows{}, fmt.Errorf("failed to sum asset flows: %w", err)
	}
	return flows, nil
}
