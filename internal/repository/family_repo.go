package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"famledger/internal/database"
	"famledger/internal/models"
)

// FamilyRepository handles nuclear families and family memberships
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// MemberRow is a membership joined with the member's display fields
type MemberRow struct {
	models.FamilyMembership
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// CreateWithAdmin inserts a family and enrolls the creator as an active admin
// with every circle capability, in one transaction.
func (r *FamilyRepository) CreateWithAdmin(family *models.NuclearFamily, creatorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	familyID, err := tx.ExecReturningID(`
		INSERT INTO nuclear_families (name, description, join_code, join_password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, family.Name, family.Description, family.JoinCode, family.JoinPasswordHash)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create family: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO family_memberships (user_id, family_id, role, status,
			can_join_circles, can_share_to_circles, can_manage_circle_access, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, creatorID, familyID, models.RoleAdmin, models.StatusActive, true, true, true)
	if err != nil {
		return fmt.Errorf("failed to enroll creator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	family.ID = familyID
	family.CreatedAt = time.Now()
	family.UpdatedAt = family.CreatedAt
	return nil
}

// GetByID retrieves a family by ID, nil if not found
func (r *FamilyRepository) GetByID(id int64) (*models.NuclearFamily, error) {
	return r.getFamily("id = ?", id)
}

// GetByJoinCode retrieves a family by its join code, nil if not found
func (r *FamilyRepository) GetByJoinCode(code string) (*models.NuclearFamily, error) {
	return r.getFamily("join_code = ?", code)
}

func (r *FamilyRepository) getFamily(where string, arg any) (*models.NuclearFamily, error) {
	var family models.NuclearFamily
	err := r.db.QueryRow(`
		SELECT id, name, description, join_code, join_password_hash, created_at, updated_at
		FROM nuclear_families WHERE `+where,
		arg).Scan(&family.ID, &family.Name, &family.Description, &family.JoinCode,
		&family.JoinPasswordHash, &family.CreatedAt, &family.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return &family, nil
}

// Update saves the family's name and description
func (r *FamilyRepository) Update(family *models.NuclearFamily) error {
	_, err := r.db.Exec(`
		UPDATE nuclear_families
		SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, family.Name, family.Description, family.ID)
	if err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

// UpdateCredentials replaces the family's join code and password hash
func (r *FamilyRepository) UpdateCredentials(familyID int64, joinCode, passwordHash string) error {
	_, err := r.db.Exec(`
		UPDATE nuclear_families
		SET join_code = ?, join_password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, joinCode, passwordHash, familyID)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update family credentials: %w", err)
	}
	return nil
}

const membershipColumns = `id, user_id, family_id, role, status,
	can_join_circles, can_share_to_circles, can_manage_circle_access, joined_at, left_at`

func scanMembership(row interface{ Scan(...interface{}) error }) (*models.FamilyMembership, error) {
	var m models.FamilyMembership
	var leftAt sql.NullTime
	err := row.Scan(&m.ID, &m.UserID, &m.FamilyID, &m.Role, &m.Status,
		&m.CanJoinCircles, &m.CanShareToCircles, &m.CanManageCircleAccess, &m.JoinedAt, &leftAt)
	if err != nil {
		return nil, err
	}
	m.LeftAt = fromNullTime(leftAt)
	return &m, nil
}

// GetMembership retrieves the membership row for a user in a family regardless
// of status, nil if the user was never enrolled.
func (r *FamilyRepository) GetMembership(userID, familyID int64) (*models.FamilyMembership, error) {
	row := r.db.QueryRow(`
		SELECT `+membershipColumns+`
		FROM family_memberships WHERE user_id = ? AND family_id = ?
	`, userID, familyID)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// GetMembershipByID retrieves a membership by its row id, nil if not found
func (r *FamilyRepository) GetMembershipByID(id int64) (*models.FamilyMembership, error) {
	row := r.db.QueryRow(`
		SELECT `+membershipColumns+`
		FROM family_memberships WHERE id = ?
	`, id)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// CreateMembership inserts a new membership row
func (r *FamilyRepository) CreateMembership(m *models.FamilyMembership) error {
	id, err := r.db.ExecReturningID(`
		INSERT INTO family_memberships (user_id, family_id, role, status,
			can_join_circles, can_share_to_circles, can_manage_circle_access, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, m.UserID, m.FamilyID, m.Role, m.Status,
		m.CanJoinCircles, m.CanShareToCircles, m.CanManageCircleAccess)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	m.ID = id
	m.JoinedAt = time.Now()
	return nil
}

// UpdateMembership saves role, status, capabilities and timestamps
func (r *FamilyRepository) UpdateMembership(m *models.FamilyMembership) error {
	_, err := r.db.Exec(`
		UPDATE family_memberships
		SET role = ?, status = ?, can_join_circles = ?, can_share_to_circles = ?,
			can_manage_circle_access = ?, joined_at = ?, left_at = ?
		WHERE id = ?
	`, m.Role, m.Status, m.CanJoinCircles, m.CanShareToCircles,
		m.CanManageCircleAccess, m.JoinedAt, nullableTime(m.LeftAt), m.ID)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return nil
}

// ListMembers returns all memberships of a family joined with user details,
// active rows first.
func (r *FamilyRepository) ListMembers(familyID int64) ([]MemberRow, error) {
	rows, err := r.db.Query(`
		SELECT m.id, m.user_id, m.family_id, m.role, m.status,
			m.can_join_circles, m.can_share_to_circles, m.can_manage_circle_access,
			m.joined_at, m.left_at, u.name, u.email
		FROM family_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.family_id = ?
		ORDER BY CASE m.status WHEN 'active' THEN 0 WHEN 'invited' THEN 1 ELSE 2 END, m.joined_at
	`, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []MemberRow
	for rows.Next() {
		var row MemberRow
		var leftAt sql.NullTime
		if err := rows.Scan(&row.ID, &row.UserID, &row.FamilyID, &row.Role, &row.Status,
			&row.CanJoinCircles, &row.CanShareToCircles, &row.CanManageCircleAccess,
			&row.JoinedAt, &leftAt, &row.UserName, &row.UserEmail); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		row.LeftAt = fromNullTime(leftAt)
		members = append(members, row)
	}
	return members, rows.Err()
}

// ActiveFamilyIDs returns the ids of families where the user is active. This
// is the family half of the visibility scope.
func (r *FamilyRepository) ActiveFamilyIDs(userID int64) ([]int64, error) {
	rows, err := r.db.Query(`
		SELECT family_id FROM family_memberships
		WHERE user_id = ? AND status = ?
		ORDER BY family_id
	`, userID, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query family ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan family id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListFamiliesForUser returns the families where the user holds an active membership
func (r *FamilyRepository) ListFamiliesForUser(userID int64) ([]models.NuclearFamily, error) {
	rows, err := r.db.Query(`
		SELECT f.id, f.name, f.description, f.join_code, f.join_password_hash, f.created_at, f.updated_at
		FROM nuclear_families f
		JOIN family_memberships m ON m.family_id = f.id
		WHERE m.user_id = ? AND m.status = ?
		ORDER BY f.name
	`, userID, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.NuclearFamily
	for rows.Next() {
		var f models.NuclearFamily
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.JoinCode,
			&f.JoinPasswordHash, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, f)
	}
	return families, rows.Err()
}

// CountActiveAdmins returns how many active admins a family has
func (r *FamilyRepository) CountActiveAdmins(familyID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM family_memberships
		WHERE family_id = ? AND role = ? AND status = ?
	`, familyID, models.RoleAdmin, models.StatusActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
