package repository

import (
	"reflect"
	"testing"
)

func TestScopePredicate(t *testing.T) {
	tests := []struct {
		name     string
		scope    Scope
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "no family memberships",
			scope:    Scope{UserID: 7},
			wantSQL:  "owner_id = ?",
			wantArgs: []any{int64(7)},
		},
		{
			name:     "single family",
			scope:    Scope{UserID: 7, FamilyIDs: []int64{3}},
			wantSQL:  "(owner_id = ? OR (is_family = ? AND family_id IN (?)))",
			wantArgs: []any{int64(7), true, int64(3)},
		},
		{
			name:     "multiple families",
			scope:    Scope{UserID: 7, FamilyIDs: []int64{3, 9}},
			wantSQL:  "(owner_id = ? OR (is_family = ? AND family_id IN (?, ?)))",
			wantArgs: []any{int64(7), true, int64(3), int64(9)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs := tt.scope.Predicate()
			if gotSQL != tt.wantSQL {
				t.Errorf("Predicate() sql = %q, want %q", gotSQL, tt.wantSQL)
			}
			if !reflect.DeepEqual(gotArgs, tt.wantArgs) {
				t.Errorf("Predicate() args = %v, want %v", gotArgs, tt.wantArgs)
			}
		})
	}
}

func TestScopeCanSeeFamily(t *testing.T) {
	scope := Scope{UserID: 1, FamilyIDs: []int64{2, 5}}
	if !scope.CanSeeFamily(5) {
		t.Error("CanSeeFamily(5) = false, want true")
	}
	if scope.CanSeeFamily(4) {
		t.Error("CanSeeFamily(4) = true, want false")
	}
}
