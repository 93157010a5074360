package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"famledger/internal/models"
	"famledger/internal/repository"
	"famledger/internal/validation"
)

// RefDataHandler serves the shared reference tables and records exchange rates
type RefDataHandler struct {
	refdata *repository.RefDataRepository
}

// NewRefDataHandler creates a new reference data handler
func NewRefDataHandler(refdata *repository.RefDataRepository) *RefDataHandler {
	return &RefDataHandler{refdata: refdata}
}

func (h *RefDataHandler) Currencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.refdata.ListCurrencies()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"currencies": currencies})
}

// RecordRate stores one exchange rate per currency per date; a second rate
// for the same date is a 409. Rates are reference data, never applied to
// stored amounts.
func (h *RefDataHandler) RecordRate(w http.ResponseWriter, r *http.Request) {
	currencyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in struct {
		Date       string          `json:"date"`
		RateToBase decimal.Decimal `json:"rate_to_base"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		respondServiceError(w, validation.NewError("date", "must be a YYYY-MM-DD date"))
		return
	}
	if !in.RateToBase.IsPositive() {
		respondServiceError(w, validation.NewError("rate_to_base", "must be positive"))
		return
	}

	currency, err := h.refdata.GetCurrency(currencyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if currency == nil {
		respondJSON(w, http.StatusNotFound, errorBody("currency not found"))
		return
	}

	rate := &models.CurrencyRate{CurrencyID: currency.ID, Date: date, RateToBase: in.RateToBase}
	if err := h.refdata.RecordRate(rate); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rate)
}

func (h *RefDataHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	currencyID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	currency, err := h.refdata.GetCurrency(currencyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if currency == nil {
		respondJSON(w, http.StatusNotFound, errorBody("currency not found"))
		return
	}

	rates, err := h.refdata.ListRates(currency.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rates": rates})
}

func (h *RefDataHandler) AssetTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.refdata.ListAssetTypes()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"asset_types": types})
}

func (h *RefDataHandler) LiabilityTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.refdata.ListLiabilityTypes()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"liability_types": types})
}
