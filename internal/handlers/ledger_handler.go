package handlers

import (
	"net/http"

	"famledger/internal/service"
)

// LedgerHandler handles ledger entity HTTP requests
type LedgerHandler struct {
	ledger *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledger *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// --- assets ---

func (h *LedgerHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.AssetInput
	if !decodeJSON(w, r, &in) {
		return
	}

	asset, err := h.ledger.CreateAsset(user.ID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, asset)
}

func (h *LedgerHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	assets, err := h.ledger.ListAssets(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"assets": assets})
}

func (h *LedgerHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	assetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	asset, err := h.ledger.GetAsset(user.ID, assetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (h *LedgerHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	assetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.AssetInput
	if !decodeJSON(w, r, &in) {
		return
	}

	asset, err := h.ledger.UpdateAsset(user.ID, assetID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (h *LedgerHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	assetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteAsset(user.ID, assetID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordValuation books a dated valuation; a second booking on the same date
// replaces the first.
func (h *LedgerHandler) RecordValuation(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	assetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.ValuationInput
	if !decodeJSON(w, r, &in) {
		return
	}

	asset, err := h.ledger.RecordAssetValue(user.ID, assetID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, asset)
}

func (h *LedgerHandler) ListValuations(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	assetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	valuations, err := h.ledger.ListAssetValuations(user.ID, assetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"valuations": valuations})
}

// CreateShare books a holding share for an asset
func (h *LedgerHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	assetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.ShareInput
	if !decodeJSON(w, r, &in) {
		return
	}

	share, err := h.ledger.CreateAssetShare(user.ID, assetID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, share)
}

func (h *LedgerHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	assetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	shares, err := h.ledger.ListAssetShares(user.ID, assetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"shares": shares})
}

func (h *LedgerHandler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	assetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	shareID, ok := pathID(w, r, "shareID")
	if !ok {
		return
	}

	if err := h.ledger.DeleteAssetShare(user.ID, assetID, shareID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- funds ---

func (h *LedgerHandler) CreateFund(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.FundInput
	if !decodeJSON(w, r, &in) {
		return
	}

	fund, err := h.ledger.CreateFund(user.ID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, fund)
}

func (h *LedgerHandler) ListFunds(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	funds, err := h.ledger.ListFunds(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"funds": funds})
}

func (h *LedgerHandler) GetFund(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	fundID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	fund, err := h.ledger.GetFund(user.ID, fundID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fund)
}

func (h *LedgerHandler) UpdateFund(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	fundID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.FundInput
	if !decodeJSON(w, r, &in) {
		return
	}

	fund, err := h.ledger.UpdateFund(user.ID, fundID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, fund)
}

func (h *LedgerHandler) DeleteFund(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	fundID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteFund(user.ID, fundID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- liabilities ---

func (h *LedgerHandler) CreateLiability(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.LiabilityInput
	if !decodeJSON(w, r, &in) {
		return
	}

	liability, err := h.ledger.CreateLiability(user.ID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, liability)
}

func (h *LedgerHandler) ListLiabilities(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	liabilities, err := h.ledger.ListLiabilities(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"liabilities": liabilities})
}

func (h *LedgerHandler) GetLiability(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	liabilityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	liability, err := h.ledger.GetLiability(user.ID, liabilityID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, liability)
}

func (h *LedgerHandler) UpdateLiability(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	liabilityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.LiabilityInput
	if !decodeJSON(w, r, &in) {
		return
	}

	liability, err := h.ledger.UpdateLiability(user.ID, liabilityID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, liability)
}

func (h *LedgerHandler) DeleteLiability(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	liabilityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteLiability(user.ID, liabilityID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordPayment books a payment; a second booking for the same date is a 409
func (h *LedgerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	liabilityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.PaymentInput
	if !decodeJSON(w, r, &in) {
		return
	}

	liability, err := h.ledger.RecordLiabilityPayment(user.ID, liabilityID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, liability)
}

func (h *LedgerHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	liabilityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.ledger.ListLiabilityPayments(user.ID, liabilityID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"payments": payments})
}

// --- incomes ---

func (h *LedgerHandler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.IncomeInput
	if !decodeJSON(w, r, &in) {
		return
	}

	income, err := h.ledger.CreateIncome(user.ID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, income)
}

func (h *LedgerHandler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	incomes, err := h.ledger.ListIncomes(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"incomes": incomes})
}

func (h *LedgerHandler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	incomeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.IncomeInput
	if !decodeJSON(w, r, &in) {
		return
	}

	income, err := h.ledger.UpdateIncome(user.ID, incomeID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, income)
}

func (h *LedgerHandler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	incomeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteIncome(user.ID, incomeID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- expenses ---

func (h *LedgerHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.ExpenseInput
	if !decodeJSON(w, r, &in) {
		return
	}

	expense, err := h.ledger.CreateExpense(user.ID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

func (h *LedgerHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	expenses, err := h.ledger.ListExpenses(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (h *LedgerHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	expenseID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.ExpenseInput
	if !decodeJSON(w, r, &in) {
		return
	}

	expense, err := h.ledger.UpdateExpense(user.ID, expenseID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (h *LedgerHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	expenseID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteExpense(user.ID, expenseID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- categories ---

func (h *LedgerHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}

	category, err := h.ledger.CreateCategory(user.ID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *LedgerHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	categories, err := h.ledger.ListCategories(user.ID, r.URL.Query().Get("type"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *LedgerHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}

	category, err := h.ledger.UpdateCategory(user.ID, categoryID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (h *LedgerHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	categoryID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteCategory(user.ID, categoryID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- budget plans ---

func (h *LedgerHandler) CreateBudgetPlan(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.BudgetInput
	if !decodeJSON(w, r, &in) {
		return
	}

	plan, err := h.ledger.CreateBudgetPlan(user.ID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, plan)
}

func (h *LedgerHandler) ListBudgetPlans(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	plans, err := h.ledger.ListBudgetPlans(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"budget_plans": plans})
}

func (h *LedgerHandler) UpdateBudgetPlan(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	planID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in service.BudgetInput
	if !decodeJSON(w, r, &in) {
		return
	}

	plan, err := h.ledger.UpdateBudgetPlan(user.ID, planID, &in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (h *LedgerHandler) DeleteBudgetPlan(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	planID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ledger.DeleteBudgetPlan(user.ID, planID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- audit trail ---

// EntityLog returns the change history of one visible ledger record
func (h *LedgerHandler) EntityLog(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	entityID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.ledger.EntityLog(user.ID, r.PathValue("entityType"), entityID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
