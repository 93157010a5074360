package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"famledger/internal/config"
	"famledger/internal/credentials"
	"famledger/internal/models"
	"famledger/internal/repository"
	"famledger/internal/security"
	"famledger/internal/validation"
)

// credentialAttempts bounds retries when a generated join code collides
const credentialAttempts = 5

// MembershipService implements family lifecycle: creation, joining by
// credentials, invitations, leaving and membership administration.
type MembershipService struct {
	families *repository.FamilyRepository
	users    *repository.UserRepository
	email    *EmailService
	rejoin   config.RejoinPolicy
}

// NewMembershipService creates a new membership service
func NewMembershipService(families *repository.FamilyRepository, users *repository.UserRepository,
	email *EmailService, rejoin config.RejoinPolicy) *MembershipService {
	return &MembershipService{families: families, users: users, email: email, rejoin: rejoin}
}

// FamilySearchResult is the public view of a family returned by code search.
// It never carries credentials beyond the code that was searched for.
type FamilySearchResult struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	JoinCode string `json:"join_code"`
}

// CreateFamily creates a family with fresh join credentials and enrolls the
// creator as its admin. The returned plaintext password is shown exactly once
// and only its hash is stored.
func (s *MembershipService) CreateFamily(creatorID int64, name, description string) (*models.NuclearFamily, string, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, "", err
	}

	for attempt := 0; attempt < credentialAttempts; attempt++ {
		code, err := credentials.GenerateJoinCode()
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate join code: %w", err)
		}
		password, err := credentials.GenerateJoinPassword()
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate join password: %w", err)
		}
		hash, err := security.HashPassword(password)
		if err != nil {
			return nil, "", fmt.Errorf("failed to hash join password: %w", err)
		}

		family := &models.NuclearFamily{
			Name:             name,
			Description:      description,
			JoinCode:         code,
			JoinPasswordHash: hash,
		}
		err = s.families.CreateWithAdmin(family, creatorID)
		if err == repository.ErrDuplicate {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return family, password, nil
	}
	return nil, "", fmt.Errorf("failed to create family: could not find a free join code")
}

// SearchFamilyByCode finds a family by join code. This runs before the caller
// is a member, so it returns only the public fields.
func (s *MembershipService) SearchFamilyByCode(code string) (*FamilySearchResult, error) {
	if err := validation.ValidateJoinCode(code); err != nil {
		return nil, err
	}
	family, err := s.families.GetByJoinCode(code)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNotFound
	}
	return &FamilySearchResult{ID: family.ID, Name: family.Name, JoinCode: family.JoinCode}, nil
}

// JoinFamily enrolls a user into the family matching the join code, after
// checking the join password. New and invited members become active parents
// without circle capabilities. Members who previously left are handled by the
// configured rejoin policy.
func (s *MembershipService) JoinFamily(userID int64, code, password string) (*models.FamilyMembership, error) {
	if err := validation.ValidateJoinCode(code); err != nil {
		return nil, err
	}
	family, err := s.families.GetByJoinCode(code)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNotFound
	}
	if !security.CheckPassword(password, family.JoinPasswordHash) {
		return nil, ErrInvalidPassword
	}

	existing, err := s.families.GetMembership(userID, family.ID)
	if err != nil {
		return nil, err
	}
	switch {
	case existing == nil:
		m := &models.FamilyMembership{
			UserID:   userID,
			FamilyID: family.ID,
			Role:     models.RoleParent,
			Status:   models.StatusActive,
		}
		if err := s.families.CreateMembership(m); err != nil {
			if err == repository.ErrDuplicate {
				return nil, ErrAlreadyMember
			}
			return nil, err
		}
		return m, nil

	case existing.Status == models.StatusActive:
		return nil, ErrAlreadyMember

	case existing.Status == models.StatusInvited:
		existing.Status = models.StatusActive
		existing.JoinedAt = time.Now()
		existing.LeftAt = nil
		if err := s.families.UpdateMembership(existing); err != nil {
			return nil, err
		}
		return existing, nil

	default: // left
		if s.rejoin != config.RejoinReactivate {
			return nil, ErrRejoinDenied
		}
		existing.Role = models.RoleParent
		existing.Status = models.StatusActive
		existing.CanJoinCircles = false
		existing.CanShareToCircles = false
		existing.CanManageCircleAccess = false
		existing.JoinedAt = time.Now()
		existing.LeftAt = nil
		if err := s.families.UpdateMembership(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
}

// LeaveFamily marks the user's membership as left. The last active admin
// cannot leave; admin rights must be handed over first.
func (s *MembershipService) LeaveFamily(userID, familyID int64) error {
	m, err := s.families.GetMembership(userID, familyID)
	if err != nil {
		return err
	}
	if m == nil || !m.IsActive() {
		return ErrNotFound
	}
	if m.IsAdmin() {
		admins, err := s.families.CountActiveAdmins(familyID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	now := time.Now()
	m.Status = models.StatusLeft
	m.LeftAt = &now
	return s.families.UpdateMembership(m)
}

// RegenerateFamilyCredentials replaces the family's join code and password.
// Admin only. Outstanding credentials stop working immediately; the new
// plaintext password is returned exactly once.
func (s *MembershipService) RegenerateFamilyCredentials(actorID, familyID int64) (string, string, error) {
	if err := s.requireAdmin(actorID, familyID); err != nil {
		return "", "", err
	}

	for attempt := 0; attempt < credentialAttempts; attempt++ {
		code, err := credentials.GenerateJoinCode()
		if err != nil {
			return "", "", fmt.Errorf("failed to generate join code: %w", err)
		}
		password, err := credentials.GenerateJoinPassword()
		if err != nil {
			return "", "", fmt.Errorf("failed to generate join password: %w", err)
		}
		hash, err := security.HashPassword(password)
		if err != nil {
			return "", "", fmt.Errorf("failed to hash join password: %w", err)
		}

		err = s.families.UpdateCredentials(familyID, code, hash)
		if err == repository.ErrDuplicate {
			continue
		}
		if err != nil {
			return "", "", err
		}
		return code, password, nil
	}
	return "", "", fmt.Errorf("failed to regenerate credentials: could not find a free join code")
}

// InviteMember records an invited membership for the given email and sends an
// invitation mail. The mail carries the join code but never the password.
// Inviting someone who is already active is a conflict; re-inviting an
// invited member just resends the mail.
func (s *MembershipService) InviteMember(ctx context.Context, actorID, familyID int64, email, role string) (*models.FamilyMembership, error) {
	if err := s.requireAdmin(actorID, familyID); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if role == "" {
		role = models.RoleParent
	}
	if !models.ValidFamilyRole(role) {
		return nil, validation.NewError("role", "is not a valid family role")
	}

	family, err := s.families.GetByID(familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNotFound
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{Email: email, Name: email}
		if err := s.users.Create(user); err != nil {
			return nil, err
		}
	}

	existing, err := s.families.GetMembership(user.ID, familyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == models.StatusActive {
			return nil, ErrAlreadyMember
		}
		if existing.Status == models.StatusLeft {
			return nil, ErrConflict
		}
		// Already invited, resend the mail
		if err := s.sendInvitation(ctx, email, family); err != nil {
			return nil, err
		}
		return existing, nil
	}

	m := &models.FamilyMembership{
		UserID:   user.ID,
		FamilyID: familyID,
		Role:     role,
		Status:   models.StatusInvited,
	}
	if err := s.families.CreateMembership(m); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := s.sendInvitation(ctx, email, family); err != nil {
		// The membership row is already committed; surface the mail
		// failure without rolling the invite back.
		log.Printf("Invitation mail to %s failed: %v", email, err)
	}
	return m, nil
}

func (s *MembershipService) sendInvitation(ctx context.Context, email string, family *models.NuclearFamily) error {
	return s.email.SendFamilyInvitation(ctx, email, family.Name, family.JoinCode)
}

// UpdateMembership changes a member's role and circle capabilities. Admin
// only. Demoting the last active admin is rejected.
func (s *MembershipService) UpdateMembership(actorID, familyID, membershipID int64, role string, canJoin, canShare, canManage bool) (*models.FamilyMembership, error) {
	if err := s.requireAdmin(actorID, familyID); err != nil {
		return nil, err
	}
	if !models.ValidFamilyRole(role) {
		return nil, validation.NewError("role", "is not a valid family role")
	}

	m, err := s.families.GetMembershipByID(membershipID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.FamilyID != familyID {
		return nil, ErrNotFound
	}

	if m.IsAdmin() && role != models.RoleAdmin {
		admins, err := s.families.CountActiveAdmins(familyID)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, ErrLastAdmin
		}
	}

	m.Role = role
	m.CanJoinCircles = canJoin
	m.CanShareToCircles = canShare
	m.CanManageCircleAccess = canManage
	if err := s.families.UpdateMembership(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMembers returns the family's members. Any active member may look.
func (s *MembershipService) ListMembers(actorID, familyID int64) ([]repository.MemberRow, error) {
	if _, err := s.requireActiveMembership(actorID, familyID); err != nil {
		return nil, err
	}
	return s.families.ListMembers(familyID)
}

// GetFamily returns a family visible to one of its active members
func (s *MembershipService) GetFamily(actorID, familyID int64) (*models.NuclearFamily, error) {
	if _, err := s.requireActiveMembership(actorID, familyID); err != nil {
		return nil, err
	}
	family, err := s.families.GetByID(familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNotFound
	}
	return family, nil
}

// UpdateFamily renames a family. Admin only.
func (s *MembershipService) UpdateFamily(actorID, familyID int64, name, description string) (*models.NuclearFamily, error) {
	if err := s.requireAdmin(actorID, familyID); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	family, err := s.families.GetByID(familyID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNotFound
	}
	family.Name = name
	family.Description = description
	if err := s.families.Update(family); err != nil {
		return nil, err
	}
	return family, nil
}

// ListFamilies returns the families where the user is an active member
func (s *MembershipService) ListFamilies(userID int64) ([]models.NuclearFamily, error) {
	return s.families.ListFamiliesForUser(userID)
}

// ScopeFor derives the user's visibility scope from their active memberships.
// Rebuilt on every request so membership changes take effect immediately.
func (s *MembershipService) ScopeFor(userID int64) (repository.Scope, error) {
	ids, err := s.families.ActiveFamilyIDs(userID)
	if err != nil {
		return repository.Scope{}, err
	}
	return repository.Scope{UserID: userID, FamilyIDs: ids}, nil
}

// requireAdmin errors with ErrForbidden unless the actor is an active admin
func (s *MembershipService) requireAdmin(actorID, familyID int64) error {
	m, err := s.families.GetMembership(actorID, familyID)
	if err != nil {
		return err
	}
	if m == nil || !m.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// requireActiveMembership errors with ErrForbidden unless the actor is active
func (s *MembershipService) requireActiveMembership(actorID, familyID int64) (*models.FamilyMembership, error) {
	m, err := s.families.GetMembership(actorID, familyID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.IsActive() {
		return nil, ErrForbidden
	}
	return m, nil
}
