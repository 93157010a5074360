package handlers

import (
	"net/http"
	"time"

	"famledger/internal/service"
)

// DashboardHandler handles aggregated-figure HTTP requests
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Overview returns net worth, totals, per-type asset groups, fund progress
// and liability summaries for everything visible to the caller
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	overview, err := h.dashboard.Overview(user.ID, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, overview)
}

// FundsProgress returns the per-fund progress figures
func (h *DashboardHandler) FundsProgress(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	funds, err := h.dashboard.FundsProgress(user.ID, time.Now())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"funds": funds})
}

// AssetDetail returns one asset with its ROI and linked income/expense totals
func (h *DashboardHandler) AssetDetail(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	assetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.dashboard.AssetDetail(user.ID, assetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}
