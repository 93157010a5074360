package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"famledger/internal/database"
	"famledger/internal/models"
)

// CategoryRepository handles user- and family-defined categories
type CategoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, name, parent_id, type, owner_id, family_id, is_family, created_at, updated_at`

func scanCategory(row interface{ Scan(...interface{}) error }) (*models.Category, error) {
	var c models.Category
	var parentID, ownerID, familyID sql.NullInt64
	err := row.Scan(&c.ID, &c.Name, &parentID, &c.Type, &ownerID, &familyID, &c.IsFamily,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ParentID = fromNullInt(parentID)
	c.OwnerID = fromNullInt(ownerID)
	c.FamilyID = fromNullInt(familyID)
	return &c, nil
}

// Create inserts a category and logs the creation in one transaction
func (r *CategoryRepository) Create(category *models.Category, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := []any{category.Name, nullableInt(category.ParentID), category.Type}
	args = append(args, ownershipArgs(category.Ownership)...)

	id, err := tx.ExecReturningID(`
		INSERT INTO categories (name, parent_id, type, owner_id, family_id, is_family, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	category.ID = id
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt

	if err := insertLog(tx, entityCategory, id, models.LogActionCreate, actorID, nil, category); err != nil {
		return err
	}
	return tx.Commit()
}

// Update saves a category's editable fields and logs before/after snapshots
func (r *CategoryRepository) Update(before, after *models.Category, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE categories
		SET name = ?, parent_id = ?, type = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, after.Name, nullableInt(after.ParentID), after.Type, after.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	after.UpdatedAt = time.Now()

	if err := insertLog(tx, entityCategory, after.ID, models.LogActionUpdate, actorID, before, after); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a category and logs the final snapshot
func (r *CategoryRepository) Delete(category *models.Category, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM categories WHERE id = ?", category.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if err := insertLog(tx, entityCategory, category.ID, models.LogActionDelete, actorID, category, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves a category visible within the scope, nil if not found or
// not visible.
func (r *CategoryRepository) GetByID(id int64, scope Scope) (*models.Category, error) {
	where, args := scope.Predicate()
	row := r.db.QueryRow(`
		SELECT `+categoryColumns+` FROM categories WHERE id = ? AND `+where,
		append([]any{id}, args...)...)
	category, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// List returns all categories of a kind visible within the scope; an empty
// kind returns every kind.
func (r *CategoryRepository) List(scope Scope, kind string) ([]models.Category, error) {
	where, args := scope.Predicate()
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE ` + where
	if kind != "" {
		query += " AND type = ?"
		args = append(args, kind)
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}
