package handlers

import (
	"net/http"
	"strconv"

	"famledger/internal/service"
)

// CircleHandler handles family-circle HTTP requests
type CircleHandler struct {
	circles *service.CircleService
}

// NewCircleHandler creates a new circle handler
func NewCircleHandler(circles *service.CircleService) *CircleHandler {
	return &CircleHandler{circles: circles}
}

// CreateCircle creates a circle with the caller's family as its admin. The
// plaintext join password appears in this response and nowhere else.
func (h *CircleHandler) CreateCircle(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		FamilyID    int64  `json:"family_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	circle, password, err := h.circles.CreateCircle(user.ID, req.FamilyID, req.Name, req.Description)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"circle":        circle,
		"join_password": password,
	})
}

// SearchCircle looks a circle up by join code. Unauthenticated; answers with
// the public fields only.
func (h *CircleHandler) SearchCircle(w http.ResponseWriter, r *http.Request) {
	result, err := h.circles.SearchCircleByCode(r.URL.Query().Get("code"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// JoinCircle connects the caller's whole family to a circle
func (h *CircleHandler) JoinCircle(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		FamilyID     int64  `json:"family_id"`
		JoinCode     string `json:"join_code"`
		JoinPassword string `json:"join_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	membership, err := h.circles.JoinCircle(user.ID, req.FamilyID, req.JoinCode, req.JoinPassword)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, membership)
}

// LeaveCircle disconnects the caller's family from a circle
func (h *CircleHandler) LeaveCircle(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	circleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		FamilyID int64 `json:"family_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.circles.LeaveCircle(user.ID, req.FamilyID, circleID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegenerateCredentials rotates the circle join code and password; only a
// capable member of an admin family may do this.
func (h *CircleHandler) RegenerateCredentials(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	circleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		FamilyID int64 `json:"family_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	code, password, err := h.circles.RegenerateCircleCredentials(user.ID, req.FamilyID, circleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"join_code":     code,
		"join_password": password,
	})
}

// ListFamilies lists the families connected to a circle. The caller names
// which of their families they are acting for via the family_id query param.
func (h *CircleHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	circleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	familyID, err := strconv.ParseInt(r.URL.Query().Get("family_id"), 10, 64)
	if err != nil || familyID <= 0 {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid family_id"))
		return
	}

	families, err := h.circles.ListCircleFamilies(user.ID, familyID, circleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"families": families})
}

// ListForFamily lists the circles a family is connected to
func (h *CircleHandler) ListForFamily(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	circles, err := h.circles.ListCirclesForFamily(user.ID, familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"circles": circles})
}
