package handlers

import (
	"net/http"

	"famledger/internal/service"
)

// FamilyHandler handles family and membership HTTP requests
type FamilyHandler struct {
	membership *service.MembershipService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(membership *service.MembershipService) *FamilyHandler {
	return &FamilyHandler{membership: membership}
}

// CreateFamily creates a family and returns its join credentials. The
// plaintext join password appears in this response and nowhere else.
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	family, password, err := h.membership.CreateFamily(user.ID, req.Name, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"family":        family,
		"join_password": password,
	})
}

// ListFamilies lists the families the caller actively belongs to
func (h *FamilyHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	families, err := h.membership.ListFamilies(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"families": families})
}

// GetFamily returns one family the caller belongs to
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	family, err := h.membership.GetFamily(user.ID, familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}

// UpdateFamily renames a family; admin only
func (h *FamilyHandler) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	family, err := h.membership.UpdateFamily(user.ID, familyID, req.Name, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, family)
}

// SearchFamily looks a family up by join code. Unauthenticated; answers with
// the public fields only.
func (h *FamilyHandler) SearchFamily(w http.ResponseWriter, r *http.Request) {
	result, err := h.membership.SearchFamilyByCode(r.URL.Query().Get("code"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// JoinFamily enrolls the caller using a join code and password
func (h *FamilyHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		JoinCode     string `json:"join_code"`
		JoinPassword string `json:"join_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	membership, err := h.membership.JoinFamily(user.ID, req.JoinCode, req.JoinPassword)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, membership)
}

// LeaveFamily marks the caller's membership as left
func (h *FamilyHandler) LeaveFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.membership.LeaveFamily(user.ID, familyID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegenerateCredentials rotates the family join code and password; admin
// only. The old credentials stop working immediately.
func (h *FamilyHandler) RegenerateCredentials(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	code, password, err := h.membership.RegenerateFamilyCredentials(user.ID, familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"join_code":     code,
		"join_password": password,
	})
}

// ListMembers lists the memberships of a family with user details
func (h *FamilyHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	members, err := h.membership.ListMembers(user.ID, familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"members": members})
}

// InviteMember creates an invited membership and emails the join code
func (h *FamilyHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	membership, err := h.membership.InviteMember(r.Context(), user.ID, familyID, req.Email, req.Role)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, membership)
}

// UpdateMembership changes a member's role and circle capabilities
func (h *FamilyHandler) UpdateMembership(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	membershipID, ok := pathID(w, r, "memberID")
	if !ok {
		return
	}

	var req struct {
		Role                  string `json:"role"`
		CanJoinCircles        bool   `json:"can_join_circles"`
		CanShareToCircles     bool   `json:"can_share_to_circles"`
		CanManageCircleAccess bool   `json:"can_manage_circle_access"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	membership, err := h.membership.UpdateMembership(user.ID, familyID, membershipID,
		req.Role, req.CanJoinCircles, req.CanShareToCircles, req.CanManageCircleAccess)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, membership)
}
