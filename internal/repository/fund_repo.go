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

// FundRepository handles savings funds
type FundRepository struct {
	db *database.DB
}

// NewFundRepository creates a new fund repository
func NewFundRepository(db *database.DB) *FundRepository {
	return &FundRepository{db: db}
}

const fundColumns = `id, name, goal, target_date, current_value, currency_id,
	owner_id, family_id, is_family, created_at, updated_at`

func scanFund(row interface{ Scan(...interface{}) error }) (*models.Fund, error) {
	var f models.Fund
	var targetDate sql.NullTime
	var ownerID, familyID sql.NullInt64
	err := row.Scan(&f.ID, &f.Name, &f.Goal, &targetDate, &f.CurrentValue, &f.CurrencyID,
		&ownerID, &familyID, &f.IsFamily, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.TargetDate = fromNullTime(targetDate)
	f.OwnerID = fromNullInt(ownerID)
	f.FamilyID = fromNullInt(familyID)
	return &f, nil
}

// Create inserts a fund and logs the creation in one transaction
func (r *FundRepository) Create(fund *models.Fund, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := []any{fund.Name, fund.Goal, nullableDate(fund.TargetDate), fund.CurrentValue, fund.CurrencyID}
	args = append(args, ownershipArgs(fund.Ownership)...)

	id, err := tx.ExecReturningID(`
		INSERT INTO funds (name, goal, target_date, current_value, currency_id,
			owner_id, family_id, is_family, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to create fund: %w", err)
	}

	fund.ID = id
	fund.CreatedAt = time.Now()
	fund.UpdatedAt = fund.CreatedAt

	if err := insertLog(tx, entityFund, id, models.LogActionCreate, actorID, nil, fund); err != nil {
		return err
	}
	return tx.Commit()
}

// Update saves a fund's editable fields and logs before/after snapshots
func (r *FundRepository) Update(before, after *models.Fund, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE funds
		SET name = ?, goal = ?, target_date = ?, current_value = ?, currency_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, after.Name, after.Goal, nullableDate(after.TargetDate), after.CurrentValue, after.CurrencyID,
		after.ID)
	if err != nil {
		return fmt.Errorf("failed to update fund: %w", err)
	}
	after.UpdatedAt = time.Now()

	if err := insertLog(tx, entityFund, after.ID, models.LogActionUpdate, actorID, before, after); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a fund and logs the final snapshot
func (r *FundRepository) Delete(fund *models.Fund, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM funds WHERE id = ?", fund.ID); err != nil {
		return fmt.Errorf("failed to delete fund: %w", err)
	}

	if err := insertLog(tx, entityFund, fund.ID, models.LogActionDelete, actorID, fund, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves a fund visible within the scope, nil if not found or not visible
func (r *FundRepository) GetByID(id int64, scope Scope) (*models.Fund, error) {
	where, args := scope.Predicate()
	row := r.db.QueryRow(`
		SELECT `+fundColumns+` FROM funds WHERE id = ? AND `+where,
		append([]any{id}, args...)...)
	fund, err := scanFund(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}
	return fund, nil
}

// List returns all funds visible within the scope
func (r *FundRepository) List(scope Scope) ([]models.Fund, error) {
	where, args := scope.Predicate()
	rows, err := r.db.Query(`
		SELECT `+fundColumns+` FROM funds WHERE `+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query funds: %w", err)
	}
	defer rows.Close()

	var funds []models.Fund
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, *fund)
	}
	return funds, rows.Err()
}

// SumCurrentValue totals the current value of all visible funds
func (r *FundRepository) SumCurrentValue(scope Scope) (decimal.Decimal, error) {
	where, args := scope.Predicate()
	var total decimal.Decimal
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(current_value), 0) FROM funds WHERE `+where, args...).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum funds: %w", err)
	}
	return total, nil
}
