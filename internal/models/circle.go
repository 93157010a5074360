package models

import "time"

// Circle membership roles; circles only distinguish admin families from members
const (
	CircleRoleAdmin  = "admin"
	CircleRoleMember = "member"
)

// FamilyCircle groups families under a shared join code/password pair
type FamilyCircle struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	JoinCode         string    `json:"join_code"`
	JoinPasswordHash string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CircleFamilyMembership links one family (not user) to one circle; unique
// per (family, circle). AddedByUserID records who connected the family and
// survives as null if that user is ever deleted.
type CircleFamilyMembership struct {
	ID            int64      `json:"id"`
	FamilyID      int64      `json:"family_id"`
	CircleID      int64      `json:"circle_id"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	AddedByUserID *int64     `json:"added_by_user_id,omitempty"`
	JoinedAt      time.Time  `json:"joined_at"`
	LeftAt        *time.Time `json:"left_at,omitempty"`
}

// IsActive reports whether the circle membership is currently active
func (m *CircleFamilyMembership) IsActive() bool {
	return m.Status == StatusActive
}
