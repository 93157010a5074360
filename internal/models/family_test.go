package models

import "testing"

func TestMembershipCan(t *testing.T) {
	tests := []struct {
		name       string
		membership FamilyMembership
		capability Capability
		want       bool
	}{
		{
			name: "active with flag",
			membership: FamilyMembership{
				Status:         StatusActive,
				CanJoinCircles: true,
			},
			capability: CapJoinCircles,
			want:       true,
		},
		{
			name: "active without flag",
			membership: FamilyMembership{
				Status: StatusActive,
			},
			capability: CapJoinCircles,
			want:       false,
		},
		{
			name: "left membership grants nothing",
			membership: FamilyMembership{
				Status:                StatusLeft,
				CanJoinCircles:        true,
				CanShareToCircles:     true,
				CanManageCircleAccess: true,
			},
			capability: CapManageCircleAccess,
			want:       false,
		},
		{
			name: "invited membership grants nothing",
			membership: FamilyMembership{
				Status:         StatusInvited,
				CanJoinCircles: true,
			},
			capability: CapJoinCircles,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.membership.Can(tt.capability); got != tt.want {
				t.Errorf("Can(%s) = %v, want %v", tt.capability, got, tt.want)
			}
		})
	}
}

func TestMembershipIsAdmin(t *testing.T) {
	tests := []struct {
		name       string
		membership FamilyMembership
		want       bool
	}{
		{name: "active admin", membership: FamilyMembership{Role: RoleAdmin, Status: StatusActive}, want: true},
		{name: "left admin", membership: FamilyMembership{Role: RoleAdmin, Status: StatusLeft}, want: false},
		{name: "active parent", membership: FamilyMembership{Role: RoleParent, Status: StatusActive}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.membership.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMembershipCapabilities(t *testing.T) {
	membership := FamilyMembership{
		Status:                StatusActive,
		CanJoinCircles:        true,
		CanManageCircleAccess: true,
	}
	caps := membership.Capabilities()
	if len(caps) != 2 {
		t.Fatalf("Capabilities() returned %d capabilities, want 2", len(caps))
	}
	if caps[0] != CapJoinCircles || caps[1] != CapManageCircleAccess {
		t.Errorf("Capabilities() = %v, want [join_circles manage_circle_access]", caps)
	}
}

func TestValidFamilyRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleParent, RoleChild, RoleElder, RoleGuest} {
		if !ValidFamilyRole(role) {
			t.Errorf("ValidFamilyRole(%q) = false, want true", role)
		}
	}
	if ValidFamilyRole("owner") {
		t.Error("ValidFamilyRole(\"owner\") = true, want false")
	}
}
