package service

import (
	"fmt"
	"time"

	"famledger/internal/config"
	"famledger/internal/credentials"
	"famledger/internal/models"
	"famledger/internal/repository"
	"famledger/internal/security"
	"famledger/internal/validation"
)

// CircleService implements the circle lifecycle. Circles connect whole
// families; every operation acts on behalf of one family, and the acting
// user needs the matching capability on their membership in that family.
type CircleService struct {
	circles  *repository.CircleRepository
	families *repository.FamilyRepository
	rejoin   config.RejoinPolicy
}

// NewCircleService creates a new circle service
func NewCircleService(circles *repository.CircleRepository, families *repository.FamilyRepository,
	rejoin config.RejoinPolicy) *CircleService {
	return &CircleService{circles: circles, families: families, rejoin: rejoin}
}

// CircleSearchResult is the public view of a circle returned by code search
type CircleSearchResult struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	JoinCode string `json:"join_code"`
}

// CreateCircle creates a circle with fresh join credentials and enrolls the
// acting user's family as its admin. Requires the manage-circle-access
// capability. The plaintext password is returned exactly once.
func (s *CircleService) CreateCircle(actorID, familyID int64, name, description string) (*models.FamilyCircle, string, error) {
	if err := s.requireCapability(actorID, familyID, models.CapManageCircleAccess); err != nil {
		return nil, "", err
	}
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

		circle := &models.FamilyCircle{
			Name:             name,
			Description:      description,
			JoinCode:         code,
			JoinPasswordHash: hash,
		}
		err = s.circles.CreateWithAdminFamily(circle, familyID, actorID)
		if err == repository.ErrDuplicate {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return circle, password, nil
	}
	return nil, "", fmt.Errorf("failed to create circle: could not find a free join code")
}

// SearchCircleByCode finds a circle by join code, public fields only
func (s *CircleService) SearchCircleByCode(code string) (*CircleSearchResult, error) {
	if err := validation.ValidateJoinCode(code); err != nil {
		return nil, err
	}
	circle, err := s.circles.GetByJoinCode(code)
	if err != nil {
		return nil, err
	}
	if circle == nil {
		return nil, ErrNotFound
	}
	return &CircleSearchResult{ID: circle.ID, Name: circle.Name, JoinCode: circle.JoinCode}, nil
}

// JoinCircle connects the acting user's family to the circle matching the
// join code, after checking the join password. Requires the join-circles
// capability. The family joins as a regular member.
func (s *CircleService) JoinCircle(actorID, familyID int64, code, password string) (*models.CircleFamilyMembership, error) {
	if err := s.requireCapability(actorID, familyID, models.CapJoinCircles); err != nil {
		return nil, err
	}
	if err := validation.ValidateJoinCode(code); err != nil {
		return nil, err
	}

	circle, err := s.circles.GetByJoinCode(code)
	if err != nil {
		return nil, err
	}
	if circle == nil {
		return nil, ErrNotFound
	}
	if !security.CheckPassword(password, circle.JoinPasswordHash) {
		return nil, ErrInvalidPassword
	}

	existing, err := s.circles.GetMembership(familyID, circle.ID)
	if err != nil {
		return nil, err
	}
	switch {
	case existing == nil:
		m := &models.CircleFamilyMembership{
			FamilyID:      familyID,
			CircleID:      circle.ID,
			Role:          models.CircleRoleMember,
			Status:        models.StatusActive,
			AddedByUserID: &actorID,
		}
		if err := s.circles.CreateMembership(m); err != nil {
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
		existing.AddedByUserID = &actorID
		existing.JoinedAt = time.Now()
		existing.LeftAt = nil
		if err := s.circles.UpdateMembership(existing); err != nil {
			return nil, err
		}
		return existing, nil

	default: // left
		if s.rejoin != config.RejoinReactivate {
			return nil, ErrRejoinDenied
		}
		existing.Role = models.CircleRoleMember
		existing.Status = models.StatusActive
		existing.AddedByUserID = &actorID
		existing.JoinedAt = time.Now()
		existing.LeftAt = nil
		if err := s.circles.UpdateMembership(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
}

// LeaveCircle disconnects the acting user's family from a circle. Requires
// the manage-circle-access capability. The last active admin family cannot
// leave.
func (s *CircleService) LeaveCircle(actorID, familyID, circleID int64) error {
	if err := s.requireCapability(actorID, familyID, models.CapManageCircleAccess); err != nil {
		return err
	}

	m, err := s.circles.GetMembership(familyID, circleID)
	if err != nil {
		return err
	}
	if m == nil || !m.IsActive() {
		return ErrNotFound
	}
	if m.Role == models.CircleRoleAdmin {
		admins, err := s.circles.CountActiveAdminFamilies(circleID)
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
	return s.circles.UpdateMembership(m)
}

// RegenerateCircleCredentials replaces the circle's join code and password.
// The acting user's family must be an active admin of the circle and the
// user needs the manage-circle-access capability.
func (s *CircleService) RegenerateCircleCredentials(actorID, familyID, circleID int64) (string, string, error) {
	if err := s.requireCapability(actorID, familyID, models.CapManageCircleAccess); err != nil {
		return "", "", err
	}
	m, err := s.circles.GetMembership(familyID, circleID)
	if err != nil {
		return "", "", err
	}
	if m == nil || !m.IsActive() || m.Role != models.CircleRoleAdmin {
		return "", "", ErrForbidden
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

		err = s.circles.UpdateCredentials(circleID, code, hash)
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

// ListCircleFamilies returns the families connected to a circle. The acting
// user's family must itself be an active member.
func (s *CircleService) ListCircleFamilies(actorID, familyID, circleID int64) ([]repository.CircleFamilyRow, error) {
	if _, err := s.requireActiveFamilyMember(actorID, familyID); err != nil {
		return nil, err
	}
	m, err := s.circles.GetMembership(familyID, circleID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.IsActive() {
		return nil, ErrForbidden
	}
	return s.circles.ListFamilies(circleID)
}

// ListCirclesForFamily returns the circles a family is active in. Any active
// member of the family may look.
func (s *CircleService) ListCirclesForFamily(actorID, familyID int64) ([]models.FamilyCircle, error) {
	if _, err := s.requireActiveFamilyMember(actorID, familyID); err != nil {
		return nil, err
	}
	return s.circles.ListCirclesForFamily(familyID)
}

// requireCapability checks that the actor's membership in the family is
// active and grants the capability.
func (s *CircleService) requireCapability(actorID, familyID int64, c models.Capability) error {
	m, err := s.families.GetMembership(actorID, familyID)
	if err != nil {
		return err
	}
	if m == nil || !m.Can(c) {
		return ErrForbidden
	}
	return nil
}

func (s *CircleService) requireActiveFamilyMember(actorID, familyID int64) (*models.FamilyMembership, error) {
	m, err := s.families.GetMembership(actorID, familyID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.IsActive() {
		return nil, ErrForbidden
	}
	return m, nil
}
