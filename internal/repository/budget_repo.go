package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"famledger/internal/database"
	"famledger/internal/models"
)

// BudgetRepository handles budget plans
type BudgetRepository struct {
	db *database.DB
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *database.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

const budgetColumns = `id, period, planned_income, planned_expense,
	owner_id, family_id, is_family, created_at, updated_at`

func scanBudget(row interface{ Scan(...interface{}) error }) (*models.BudgetPlan, error) {
	var b models.BudgetPlan
	var ownerID, familyID sql.NullInt64
	err := row.Scan(&b.ID, &b.Period, &b.PlannedIncome, &b.PlannedExpense,
		&ownerID, &familyID, &b.IsFamily, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.OwnerID = fromNullInt(ownerID)
	b.FamilyID = fromNullInt(familyID)
	return &b, nil
}

// Create inserts a budget plan and logs the creation in one transaction
func (r *BudgetRepository) Create(plan *models.BudgetPlan, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := []any{plan.Period, plan.PlannedIncome, plan.PlannedExpense}
	args = append(args, ownershipArgs(plan.Ownership)...)

	id, err := tx.ExecReturningID(`
		INSERT INTO budget_plans (period, planned_income, planned_expense,
			owner_id, family_id, is_family, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to create budget plan: %w", err)
	}

	plan.ID = id
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt

	if err := insertLog(tx, entityBudgetPlan, id, models.LogActionCreate, actorID, nil, plan); err != nil {
		return err
	}
	return tx.Commit()
}

// Update saves a budget plan's editable fields and logs before/after snapshots
func (r *BudgetRepository) Update(before, after *models.BudgetPlan, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE budget_plans
		SET period = ?, planned_income = ?, planned_expense = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, after.Period, after.PlannedIncome, after.PlannedExpense, after.ID)
	if err != nil {
		return fmt.Errorf("failed to update budget plan: %w", err)
	}
	after.UpdatedAt = time.Now()

	if err := insertLog(tx, entityBudgetPlan, after.ID, models.LogActionUpdate, actorID, before, after); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a budget plan and logs the final snapshot
func (r *BudgetRepository) Delete(plan *models.BudgetPlan, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM budget_plans WHERE id = ?", plan.ID); err != nil {
		return fmt.Errorf("failed to delete budget plan: %w", err)
	}

	if err := insertLog(tx, entityBudgetPlan, plan.ID, models.LogActionDelete, actorID, plan, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves a budget plan visible within the scope, nil if not found
// or not visible.
func (r *BudgetRepository) GetByID(id int64, scope Scope) (*models.BudgetPlan, error) {
	where, args := scope.Predicate()
	row := r.db.QueryRow(`
		SELECT `+budgetColumns+` FROM budget_plans WHERE id = ? AND `+where,
		append([]any{id}, args...)...)
	plan, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get budget plan: %w", err)
	}
	return plan, nil
}

// List returns all budget plans visible within the scope, newest period first
func (r *BudgetRepository) List(scope Scope) ([]models.BudgetPlan, error) {
	where, args := scope.Predicate()
	rows, err := r.db.Query(`
		SELECT `+budgetColumns+` FROM budget_plans WHERE `+where+` ORDER BY period DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget plans: %w", err)
	}
	defer rows.Close()

	var plans []models.BudgetPlan
	for rows.Next() {
		plan, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}
