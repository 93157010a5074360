package models

import "time"

// Membership roles within a nuclear family
const (
	RoleAdmin  = "admin"
	RoleParent = "parent"
	RoleChild  = "child"
	RoleElder  = "elder"
	RoleGuest  = "guest"
)

// Membership status values, shared by family and circle memberships
const (
	StatusActive  = "active"
	StatusInvited = "invited"
	StatusLeft    = "left"
)

// ValidFamilyRole reports whether role is one of the family membership roles
func ValidFamilyRole(role string) bool {
	switch role {
	case RoleAdmin, RoleParent, RoleChild, RoleElder, RoleGuest:
		return true
	}
	return false
}

// NuclearFamily is a household that shares family-scoped financial records.
// JoinPasswordHash only ever holds a bcrypt hash; the plaintext is returned
// once at creation or regeneration and never stored.
type NuclearFamily struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	JoinCode         string    `json:"join_code"`
	JoinPasswordHash string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FamilyMembership links one user to one family; unique per (user, family)
type FamilyMembership struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	FamilyID int64  `json:"family_id"`
	Role     string `json:"role"`
	Status   string `json:"status"`

	CanJoinCircles        bool `json:"can_join_circles"`
	CanShareToCircles     bool `json:"can_share_to_circles"`
	CanManageCircleAccess bool `json:"can_manage_circle_access"`

	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`
}

// IsActive reports whether the membership is currently active
func (m *FamilyMembership) IsActive() bool {
	return m.Status == StatusActive
}

// IsAdmin reports whether the membership carries the admin role and is active
func (m *FamilyMembership) IsAdmin() bool {
	return m.IsActive() && m.Role == RoleAdmin
}

// Can reports whether the membership grants the given circle capability.
// Only active memberships grant anything.
func (m *FamilyMembership) Can(c Capability) bool {
	if !m.IsActive() {
		return false
	}
	switch c {
	case CapJoinCircles:
		return m.CanJoinCircles
	case CapShareToCircles:
		return m.CanShareToCircles
	case CapManageCircleAccess:
		return m.CanManageCircleAccess
	}
	return false
}

// Capabilities returns the set of circle capabilities this membership grants
func (m *FamilyMembership) Capabilities() []Capability {
	var caps []Capability
	for _, c := range AllCapabilities {
		if m.Can(c) {
			caps = append(caps, c)
		}
	}
	return caps
}
