package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"famledger/internal/database"
	"famledger/internal/models"
)

// RefDataRepository handles the shared reference tables: currencies and
// their exchange rates, asset types and liability types. These are seeded by
// migrations (rates are recorded at runtime) and not scoped.
type RefDataRepository struct {
	db *database.DB
}

// NewRefDataRepository creates a new reference data repository
func NewRefDataRepository(db *database.DB) *RefDataRepository {
	return &RefDataRepository{db: db}
}

// ListCurrencies returns all currencies
func (r *RefDataRepository) ListCurrencies() ([]models.Currency, error) {
	rows, err := r.db.Query(`SELECT id, code, name, symbol FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	var currencies []models.Currency
	for rows.Next() {
		var c models.Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Symbol); err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}

// RecordRate stores one exchange rate per currency per date. A second rate
// for the same (currency, date) pair returns ErrDuplicate.
func (r *RefDataRepository) RecordRate(rate *models.CurrencyRate) error {
	id, err := r.db.ExecReturningID(`
		INSERT INTO currency_rates (currency_id, date, rate_to_base)
		VALUES (?, ?, ?)
	`, rate.CurrencyID, rate.Date.Format(dateLayout), rate.RateToBase)
	if err != nil {
		if r.db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to record currency rate: %w", err)
	}
	rate.ID = id
	return nil
}

// ListRates returns a currency's stored rates, newest first
func (r *RefDataRepository) ListRates(currencyID int64) ([]models.CurrencyRate, error) {
	rows, err := r.db.Query(`
		SELECT id, currency_id, date, rate_to_base
		FROM currency_rates
		WHERE currency_id = ?
		ORDER BY date DESC
	`, currencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query currency rates: %w", err)
	}
	defer rows.Close()

	var rates []models.CurrencyRate
	for rows.Next() {
		var rate models.CurrencyRate
		if err := rows.Scan(&rate.ID, &rate.CurrencyID, &rate.Date, &rate.RateToBase); err != nil {
			return nil, fmt.Errorf("failed to scan currency rate: %w", err)
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

// GetCurrency retrieves one currency, nil if not found
func (r *RefDataRepository) GetCurrency(id int64) (*models.Currency, error) {
	var c models.Currency
	err := r.db.QueryRow(`SELECT id, code, name, symbol FROM currencies WHERE id = ?`, id).
		Scan(&c.ID, &c.Code, &c.Name, &c.Symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return &c, nil
}

// ListAssetTypes returns all asset types
func (r *RefDataRepository) ListAssetTypes() ([]models.AssetType, error) {
	rows, err := r.db.Query(`SELECT id, name FROM asset_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset types: %w", err)
	}
	defer rows.Close()

	var types []models.AssetType
	for rows.Next() {
		var t models.AssetType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan asset type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// ListLiabilityTypes returns all liability types
func (r *RefDataRepository) ListLiabilityTypes() ([]models.LiabilityType, error) {
	rows, err := r.db.Query(`SELECT id, name FROM liability_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query liability types: %w", err)
	}
	defer rows.Close()

	var types []models.LiabilityType
	for rows.Next() {
		var t models.LiabilityType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan liability type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}
