package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"famledger/internal/database"
	"famledger/internal/models"
)

// CircleRepository handles family circles and circle memberships. Circle
// members are families, not users.
type CircleRepository struct {
	db *database.DB
}

// NewCircleRepository creates a new circle repository
func NewCircleRepository(db *database.DB) *CircleRepository {
	return &CircleRepository{db: db}
}

// CircleFamilyRow is a circle membership joined with the family's display name
type CircleFamilyRow struct {
	models.CircleFamilyMembership
	FamilyName string `json:"family_name"`
}

// CreateWithAdminFamily inserts a circle and enrolls the founding family as
// its active admin, in one transaction.
func (r *CircleRepository) CreateWithAdminFamily(circle *models.FamilyCircle, familyID, addedByUserID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	circleID, err := tx.ExecReturningID(`
		INSERT INTO family_circles (name, description, join_code, join_password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, circle.Name, circle.Description, circle.JoinCode, circle.JoinPasswordHash)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create circle: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO circle_family_memberships (family_id, circle_id, role, status, added_by_user_id, joined_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, familyID, circleID, models.CircleRoleAdmin, models.StatusActive, addedByUserID)
	if err != nil {
		return fmt.Errorf("failed to enroll founding family: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	circle.ID = circleID
	circle.CreatedAt = time.Now()
	circle.UpdatedAt = circle.CreatedAt
	return nil
}

// GetByID retrieves a circle by ID, nil if not found
func (r *CircleRepository) GetByID(id int64) (*models.FamilyCircle, error) {
	return r.getCircle("id = ?", id)
}

// GetByJoinCode retrieves a circle by its join code, nil if not found
func (r *CircleRepository) GetByJoinCode(code string) (*models.FamilyCircle, error) {
	return r.getCircle("join_code = ?", code)
}

func (r *CircleRepository) getCircle(where string, arg any) (*models.FamilyCircle, error) {
	var circle models.FamilyCircle
	err := r.db.QueryRow(`
		SELECT id, name, description, join_code, join_password_hash, created_at, updated_at
		FROM family_circles WHERE `+where,
		arg).Scan(&circle.ID, &circle.Name, &circle.Description, &circle.JoinCode,
		&circle.JoinPasswordHash, &circle.CreatedAt, &circle.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get circle: %w", err)
	}
	return &circle, nil
}

// UpdateCredentials replaces the circle's join code and password hash
func (r *CircleRepository) UpdateCredentials(circleID int64, joinCode, passwordHash string) error {
	_, err := r.db.Exec(`
		UPDATE family_circles
		SET join_code = ?, join_password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, joinCode, passwordHash, circleID)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update circle credentials: %w", err)
	}
	return nil
}

func scanCircleMembership(row interface{ Scan(...interface{}) error }) (*models.CircleFamilyMembership, error) {
	var m models.CircleFamilyMembership
	var addedBy sql.NullInt64
	var leftAt sql.NullTime
	err := row.Scan(&m.ID, &m.FamilyID, &m.CircleID, &m.Role, &m.Status, &addedBy, &m.JoinedAt, &leftAt)
	if err != nil {
		return nil, err
	}
	m.AddedByUserID = fromNullInt(addedBy)
	m.LeftAt = fromNullTime(leftAt)
	return &m, nil
}

// GetMembership retrieves a family's membership in a circle regardless of
// status, nil if the family was never enrolled.
func (r *CircleRepository) GetMembership(familyID, circleID int64) (*models.CircleFamilyMembership, error) {
	row := r.db.QueryRow(`
		SELECT id, family_id, circle_id, role, status, added_by_user_id, joined_at, left_at
		FROM circle_family_memberships WHERE family_id = ? AND circle_id = ?
	`, familyID, circleID)
	m, err := scanCircleMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get circle membership: %w", err)
	}
	return m, nil
}

// CreateMembership inserts a new circle membership row
func (r *CircleRepository) CreateMembership(m *models.CircleFamilyMembership) error {
	id, err := r.db.ExecReturningID(`
		INSERT INTO circle_family_memberships (family_id, circle_id, role, status, added_by_user_id, joined_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, m.FamilyID, m.CircleID, m.Role, m.Status, nullableInt(m.AddedByUserID))
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create circle membership: %w", err)
	}
	m.ID = id
	m.JoinedAt = time.Now()
	return nil
}

// UpdateMembership saves role, status and timestamps
func (r *CircleRepository) UpdateMembership(m *models.CircleFamilyMembership) error {
	_, err := r.db.Exec(`
		UPDATE circle_family_memberships
		SET role = ?, status = ?, added_by_user_id = ?, joined_at = ?, left_at = ?
		WHERE id = ?
	`, m.Role, m.Status, nullableInt(m.AddedByUserID), m.JoinedAt, nullableTime(m.LeftAt), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update circle membership: %w", err)
	}
	return nil
}

// ListFamilies returns all families in a circle joined with their names,
// active rows first.
func (r *CircleRepository) ListFamilies(circleID int64) ([]CircleFamilyRow, error) {
	rows, err := r.db.Query(`
		SELECT m.id, m.family_id, m.circle_id, m.role, m.status, m.added_by_user_id,
			m.joined_at, m.left_at, f.name
		FROM circle_family_memberships m
		JOIN nuclear_families f ON f.id = m.family_id
		WHERE m.circle_id = ?
		ORDER BY CASE m.status WHEN 'active' THEN 0 WHEN 'invited' THEN 1 ELSE 2 END, m.joined_at
	`, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query circle families: %w", err)
	}
	defer rows.Close()

	var families []CircleFamilyRow
	for rows.Next() {
		var row CircleFamilyRow
		var addedBy sql.NullInt64
		var leftAt sql.NullTime
		if err := rows.Scan(&row.ID, &row.FamilyID, &row.CircleID, &row.Role, &row.Status,
			&addedBy, &row.JoinedAt, &leftAt, &row.FamilyName); err != nil {
			return nil, fmt.Errorf("failed to scan circle family: %w", err)
		}
		row.AddedByUserID = fromNullInt(addedBy)
		row.LeftAt = fromNullTime(leftAt)
		families = append(families, row)
	}
	return families, rows.Err()
}

// ListCirclesForFamily returns the circles where the family is active
func (r *CircleRepository) ListCirclesForFamily(familyID int64) ([]models.FamilyCircle, error) {
	rows, err := r.db.Query(`
		SELECT c.id, c.name, c.description, c.join_code, c.join_password_hash, c.created_at, c.updated_at
		FROM family_circles c
		JOIN circle_family_memberships m ON m.circle_id = c.id
		WHERE m.family_id = ? AND m.status = ?
		ORDER BY c.name
	`, familyID, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query circles: %w", err)
	}
	defer rows.Close()

	var circles []models.FamilyCircle
	for rows.Next() {
		var c models.FamilyCircle
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.JoinCode,
			&c.JoinPasswordHash, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan circle: %w", err)
		}
		circles = append(circles, c)
	}
	return circles, rows.Err()
}

// CountActiveAdminFamilies returns how many active admin families a circle has
func (r *CircleRepository) CountActiveAdminFamilies(circleID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM circle_family_memberships
		WHERE circle_id = ? AND role = ? AND status = ?
	`, circleID, models.CircleRoleAdmin, models.StatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admin families: %w", err)
	}
	return count, nil
}
