package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"famledger/internal/database"
	"famledger/internal/models"
)

// AssetRepository handles assets and their valuation history. Every mutation
// writes its audit row in the same transaction.
type AssetRepository struct {
	db *database.DB
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *database.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// TypeAggregate is one dashboard grouping of assets by type
type TypeAggregate struct {
	TypeID   int64           `json:"type_id"`
	TypeName string          `json:"type_name"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

const assetColumns = `id, name, type_id, category_id, purchase_value, purchase_currency_id,
	current_value, current_currency_id, last_valuation_date, owner_id, family_id, is_family,
	created_at, updated_at`

func scanAsset(row interface{ Scan(...interface{}) error }) (*models.Asset, error) {
	var a models.Asset
	var categoryID, ownerID, familyID sql.NullInt64
	var lastValuation sql.NullTime
	err := row.Scan(&a.ID, &a.Name, &a.TypeID, &categoryID, &a.PurchaseValue, &a.PurchaseCurrencyID,
		&a.CurrentValue, &a.CurrentCurrencyID, &lastValuation, &ownerID, &familyID, &a.IsFamily,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.CategoryID = fromNullInt(categoryID)
	a.LastValuationDate = fromNullTime(lastValuation)
	a.OwnerID = fromNullInt(ownerID)
	a.FamilyID = fromNullInt(familyID)
	return &a, nil
}

// Create inserts an asset and logs the creation in one transaction
func (r *AssetRepository) Create(asset *models.Asset, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	args := []any{asset.Name, asset.TypeID, nullableInt(asset.CategoryID),
		asset.PurchaseValue, asset.PurchaseCurrencyID, asset.CurrentValue, asset.CurrentCurrencyID,
		nullableDate(asset.LastValuationDate)}
	args = append(args, ownershipArgs(asset.Ownership)...)

	id, err := tx.ExecReturningID(`
		INSERT INTO assets (name, type_id, category_id, purchase_value, purchase_currency_id,
			current_value, current_currency_id, last_valuation_date, owner_id, family_id, is_family,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}

	asset.ID = id
	asset.CreatedAt = time.Now()
	asset.UpdatedAt = asset.CreatedAt

	if err := insertLog(tx, entityAsset, id, models.LogActionCreate, actorID, nil, asset); err != nil {
		return err
	}
	return tx.Commit()
}

// Update saves an asset's editable fields and logs before/after snapshots
func (r *AssetRepository) Update(before, after *models.Asset, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		UPDATE assets
		SET name = ?, type_id = ?, category_id = ?, purchase_value = ?, purchase_currency_id = ?,
			current_value = ?, current_currency_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, after.Name, after.TypeID, nullableInt(after.CategoryID),
		after.PurchaseValue, after.PurchaseCurrencyID, after.CurrentValue, after.CurrentCurrencyID,
		after.ID)
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	after.UpdatedAt = time.Now()

	if err := insertLog(tx, entityAsset, after.ID, models.LogActionUpdate, actorID, before, after); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes an asset and logs the final snapshot
func (r *AssetRepository) Delete(asset *models.Asset, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM assets WHERE id = ?", asset.ID); err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	if err := insertLog(tx, entityAsset, asset.ID, models.LogActionDelete, actorID, asset, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves an asset visible within the scope, nil if not found or
// not visible.
func (r *AssetRepository) GetByID(id int64, scope Scope) (*models.Asset, error) {
	where, args := scope.Predicate()
	row := r.db.QueryRow(`
		SELECT `+assetColumns+` FROM assets WHERE id = ? AND `+where,
		append([]any{id}, args...)...)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return asset, nil
}

// List returns all assets visible within the scope
func (r *AssetRepository) List(scope Scope) ([]models.Asset, error) {
	where, args := scope.Predicate()
	rows, err := r.db.Query(`
		SELECT `+assetColumns+` FROM assets WHERE `+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}
	return assets, rows.Err()
}

// RecordValuation books one valuation per asset per date, replacing an earlier
// figure for the same date, and refreshes the asset's current value. The
// history upsert, the asset update and the audit row commit together.
func (r *AssetRepository) RecordValuation(asset *models.Asset, v *models.AssetValueHistory, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(r.db.Dialect.UpsertValuationQuery(),
		v.AssetID, v.Value, v.CurrencyID, v.Date.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("failed to record valuation: %w", err)
	}

	before := *asset
	asset.CurrentValue = v.Value
	asset.CurrentCurrencyID = v.CurrencyID
	date := v.Date
	asset.LastValuationDate = &date
	asset.UpdatedAt = time.Now()

	_, err = tx.Exec(`
		UPDATE assets
		SET current_value = ?, current_currency_id = ?, last_valuation_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, asset.CurrentValue, asset.CurrentCurrencyID, v.Date.Format(dateLayout), asset.ID)
	if err != nil {
		return fmt.Errorf("failed to refresh asset value: %w", err)
	}

	if err := insertLog(tx, entityAsset, asset.ID, models.LogActionUpdate, actorID, &before, asset); err != nil {
		return err
	}
	return tx.Commit()
}

// ListValuations returns the valuation history of an asset, newest first.
// Visibility is checked by the caller against the asset itself.
func (r *AssetRepository) ListValuations(assetID int64) ([]models.AssetValueHistory, error) {
	rows, err := r.db.Query(`
		SELECT id, asset_id, value, currency_id, date
		FROM asset_value_history
		WHERE asset_id = ?
		ORDER BY date DESC
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuations: %w", err)
	}
	defer rows.Close()

	var history []models.AssetValueHistory
	for rows.Next() {
		var h models.AssetValueHistory
		if err := rows.Scan(&h.ID, &h.AssetID, &h.Value, &h.CurrencyID, &h.Date); err != nil {
			return nil, fmt.Errorf("failed to scan valuation: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// CreateShare inserts a holding share for an asset and logs it in one
// transaction. Visibility of the parent asset is checked by the caller.
func (r *AssetRepository) CreateShare(share *models.AssetShare, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := tx.ExecReturningID(`
		INSERT INTO asset_shares (asset_id, user_id, family_id, share, valid_from, valid_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, share.AssetID, nullableInt(share.UserID), nullableInt(share.FamilyID),
		share.Share, share.ValidFrom.Format(dateLayout), nullableDate(share.ValidTo))
	if err != nil {
		return fmt.Errorf("failed to create asset share: %w", err)
	}

	share.ID = id
	share.CreatedAt = time.Now()

	if err := insertLog(tx, entityShare, id, models.LogActionCreate, actorID, nil, share); err != nil {
		return err
	}
	return tx.Commit()
}

// GetShare retrieves a single share, nil if not found. Visibility is checked
// by the caller against the parent asset.
func (r *AssetRepository) GetShare(id int64) (*models.AssetShare, error) {
	row := r.db.QueryRow(`
		SELECT id, asset_id, user_id, family_id, share, valid_from, valid_to, created_at
		FROM asset_shares WHERE id = ?
	`, id)
	share, err := scanShare(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset share: %w", err)
	}
	return share, nil
}

// ListShares returns an asset's holding shares, oldest validity first
func (r *AssetRepository) ListShares(assetID int64) ([]models.AssetShare, error) {
	rows, err := r.db.Query(`
		SELECT id, asset_id, user_id, family_id, share, valid_from, valid_to, created_at
		FROM asset_shares
		WHERE asset_id = ?
		ORDER BY valid_from, id
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset shares: %w", err)
	}
	defer rows.Close()

	var shares []models.AssetShare
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset share: %w", err)
		}
		shares = append(shares, *share)
	}
	return shares, rows.Err()
}

// DeleteShare removes a share and logs the final snapshot
func (r *AssetRepository) DeleteShare(share *models.AssetShare, actorID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM asset_shares WHERE id = ?", share.ID); err != nil {
		return fmt.Errorf("failed to delete asset share: %w", err)
	}

	if err := insertLog(tx, entityShare, share.ID, models.LogActionDelete, actorID, share, nil); err != nil {
		return err
	}
	return tx.Commit()
}

func scanShare(row interface{ Scan(...interface{}) error }) (*models.AssetShare, error) {
	var s models.AssetShare
	var userID, familyID sql.NullInt64
	var validTo sql.NullTime
	err := row.Scan(&s.ID, &s.AssetID, &userID, &familyID, &s.Share, &s.ValidFrom, &validTo, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.UserID = fromNullInt(userID)
	s.FamilyID = fromNullInt(familyID)
	s.ValidTo = fromNullTime(validTo)
	return &s, nil
}

// SumCurrentValue totals the current value of all visible assets
func (r *AssetRepository) SumCurrentValue(scope Scope) (decimal.Decimal, error) {
	where, args := scope.Predicate()
	var total decimal.Decimal
	err := r.db.QueryRow(`
		SELECT COALESCE(SUM(current_value), 0) FROM assets WHERE `+where, args...).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum assets: %w", err)
	}
	return total, nil
}

// AggregateByType groups visible assets by type for the dashboard
func (r *AssetRepository) AggregateByType(scope Scope) ([]TypeAggregate, error) {
	where, args := scope.Predicate()
	rows, err := r.db.Query(`
		SELECT t.id, t.name, COALESCE(SUM(a.current_value), 0), COUNT(a.id)
		FROM assets a
		JOIN asset_types t ON t.id = a.type_id
		WHERE `+where+`
		GROUP BY t.id, t.name
		ORDER BY t.name
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate assets: %w", err)
	}
	defer rows.Close()

	var aggregates []TypeAggregate
	for rows.Next() {
		var agg TypeAggregate
		if err := rows.Scan(&agg.TypeID, &agg.TypeName, &agg.Total, &agg.Count); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}
