package models

// Ownership scopes a ledger record to exactly one principal: a user or a
// family, never both. IsFamily says which side is authoritative; the server
// assigns these fields on create and ignores client-supplied values.
type Ownership struct {
	OwnerID  *int64 `json:"owner_id,omitempty"`
	FamilyID *int64 `json:"family_id,omitempty"`
	IsFamily bool   `json:"is_family"`
}

// PersonalOwnership scopes a record to a single user
func PersonalOwnership(userID int64) Ownership {
	return Ownership{OwnerID: &userID}
}

// FamilyOwnership scopes a record to a family
func FamilyOwnership(familyID int64) Ownership {
	return Ownership{FamilyID: &familyID, IsFamily: true}
}

// Valid reports whether exactly one of owner/family is set, matching IsFamily
func (o Ownership) Valid() bool {
	if o.IsFamily {
		return o.FamilyID != nil && o.OwnerID == nil
	}
	return o.OwnerID != nil && o.FamilyID == nil
}
