package service

import (
	"errors"
	"testing"

	"famledger/internal/config"
	"famledger/internal/models"
)

// twoFamilies builds two families with admins alice and bob
func twoFamilies(t *testing.T, env *testEnv) (alice, bob *models.User, smith, jones *models.NuclearFamily) {
	t.Helper()
	alice = env.createUser(t, "alice@example.com")
	bob = env.createUser(t, "bob@example.com")

	var err error
	smith, _, err = env.membership.CreateFamily(alice.ID, "Smith", "")
	if err != nil {
		t.Fatalf("CreateFamily() error: %v", err)
	}
	jones, _, err = env.membership.CreateFamily(bob.ID, "Jones", "")
	if err != nil {
		t.Fatalf("CreateFamily() error: %v", err)
	}
	return alice, bob, smith, jones
}

func TestCreateCircleRequiresCapability(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice, bob, smith, jones := twoFamilies(t, env)
	_ = bob
	_ = jones

	// Family admins hold every capability, so alice can create
	circle, password, err := env.circles.CreateCircle(alice.ID, smith.ID, "Neighbourhood", "")
	if err != nil {
		t.Fatalf("CreateCircle() error: %v", err)
	}
	if len(circle.JoinCode) != 8 || len(password) != 6 {
		t.Errorf("credentials code=%q password=%q", circle.JoinCode, password)
	}

	// A plain member without the capability cannot
	carol := env.createUser(t, "carol@example.com")
	_, famPassword, err := env.membership.RegenerateFamilyCredentials(alice.ID, smith.ID)
	if err != nil {
		t.Fatalf("RegenerateFamilyCredentials() error: %v", err)
	}
	code, err := env.membership.GetFamily(alice.ID, smith.ID)
	if err != nil {
		t.Fatalf("GetFamily() error: %v", err)
	}
	if _, err := env.membership.JoinFamily(carol.ID, code.JoinCode, famPassword); err != nil {
		t.Fatalf("JoinFamily() error: %v", err)
	}
	if _, _, err := env.circles.CreateCircle(carol.ID, smith.ID, "Another", ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("CreateCircle() without capability error = %v, want ErrForbidden", err)
	}
}

func TestJoinCircleConnectsWholeFamily(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice, bob, smith, jones := twoFamilies(t, env)
	_ = alice

	circle, password, err := env.circles.CreateCircle(alice.ID, smith.ID, "Neighbourhood", "")
	if err != nil {
		t.Fatalf("CreateCircle() error: %v", err)
	}

	m, err := env.circles.JoinCircle(bob.ID, jones.ID, circle.JoinCode, password)
	if err != nil {
		t.Fatalf("JoinCircle() error: %v", err)
	}
	if m.FamilyID != jones.ID || m.Role != models.CircleRoleMember || !m.IsActive() {
		t.Errorf("circle membership = %+v, want active member for Jones", m)
	}
	if m.AddedByUserID == nil || *m.AddedByUserID != bob.ID {
		t.Error("circle membership must record who connected the family")
	}

	if _, err := env.circles.JoinCircle(bob.ID, jones.ID, circle.JoinCode, password); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("JoinCircle() twice error = %v, want ErrAlreadyMember", err)
	}
	if _, err := env.circles.JoinCircle(bob.ID, jones.ID, circle.JoinCode, "wrong!"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("JoinCircle() wrong password error = %v, want ErrInvalidPassword", err)
	}

	families, err := env.circles.ListCircleFamilies(bob.ID, jones.ID, circle.ID)
	if err != nil {
		t.Fatalf("ListCircleFamilies() error: %v", err)
	}
	if len(families) != 2 {
		t.Errorf("ListCircleFamilies() = %d families, want 2", len(families))
	}
}

func TestLastAdminFamilyCannotLeaveCircle(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice, bob, smith, jones := twoFamilies(t, env)

	circle, password, err := env.circles.CreateCircle(alice.ID, smith.ID, "Neighbourhood", "")
	if err != nil {
		t.Fatalf("CreateCircle() error: %v", err)
	}
	if _, err := env.circles.JoinCircle(bob.ID, jones.ID, circle.JoinCode, password); err != nil {
		t.Fatalf("JoinCircle() error: %v", err)
	}

	if err := env.circles.LeaveCircle(alice.ID, smith.ID, circle.ID); !errors.Is(err, ErrLastAdmin) {
		t.Errorf("LeaveCircle() founding family error = %v, want ErrLastAdmin", err)
	}

	// A member family can leave
	if err := env.circles.LeaveCircle(bob.ID, jones.ID, circle.ID); err != nil {
		t.Errorf("LeaveCircle() member family error: %v", err)
	}
}

func TestRegenerateCircleCredentialsAdminFamilyOnly(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice, bob, smith, jones := twoFamilies(t, env)

	circle, password, err := env.circles.CreateCircle(alice.ID, smith.ID, "Neighbourhood", "")
	if err != nil {
		t.Fatalf("CreateCircle() error: %v", err)
	}
	if _, err := env.circles.JoinCircle(bob.ID, jones.ID, circle.JoinCode, password); err != nil {
		t.Fatalf("JoinCircle() error: %v", err)
	}

	// Jones is only a member family; its admin cannot rotate credentials
	if _, _, err := env.circles.RegenerateCircleCredentials(bob.ID, jones.ID, circle.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("RegenerateCircleCredentials() by member family error = %v, want ErrForbidden", err)
	}

	newCode, _, err := env.circles.RegenerateCircleCredentials(alice.ID, smith.ID, circle.ID)
	if err != nil {
		t.Fatalf("RegenerateCircleCredentials() error: %v", err)
	}
	if newCode == circle.JoinCode {
		t.Error("circle join code did not change")
	}
}
