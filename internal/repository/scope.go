package repository

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when an insert collides with a uniqueness
// constraint (duplicate membership, duplicate join code, payment for a
// booked date). Services surface it as a conflict.
var ErrDuplicate = errors.New("duplicate row")

// dateLayout is how DATE columns are stored across all three dialects
const dateLayout = "2006-01-02"

// Scope is the visibility of one authenticated user: their own records plus
// family-shared records of every family where they hold an active membership.
// It is resolved per request from membership rows and passed explicitly;
// never cache it across requests.
type Scope struct {
	UserID    int64
	FamilyIDs []int64
}

// Predicate returns the owner-or-family SQL condition and its arguments.
// Every ledger query appends this to its WHERE clause, which keeps the
// access rule in exactly one place.
func (s Scope) Predicate() (string, []any) {
	if len(s.FamilyIDs) == 0 {
		return "owner_id = ?", []any{s.UserID}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(s.FamilyIDs)), ", ")
	args := make([]any, 0, len(s.FamilyIDs)+2)
	args = append(args, s.UserID, true)
	for _, id := range s.FamilyIDs {
		args = append(args, id)
	}
	return "(owner_id = ? OR (is_family = ? AND family_id IN (" + placeholders + ")))", args
}

// CanSeeFamily reports whether the scope includes the given family
func (s Scope) CanSeeFamily(familyID int64) bool {
	for _, id := range s.FamilyIDs {
		if id == familyID {
			return true
		}
	}
	return false
}
