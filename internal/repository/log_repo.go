package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"famledger/internal/database"
	"famledger/internal/models"
)

// FinanceLogRepository reads the append-only audit trail. Writes happen via
// insertLog inside the same transaction as the mutation they record; there is
// deliberately no update or delete path.
type FinanceLogRepository struct {
	db *database.DB
}

// NewFinanceLogRepository creates a new finance log repository
func NewFinanceLogRepository(db *database.DB) *FinanceLogRepository {
	return &FinanceLogRepository{db: db}
}

// insertLog writes one audit row within the caller's transaction. before and
// after are marshaled to JSON; pass nil for the missing side on creates and
// deletes. Snapshots go through the models' JSON tags, so fields tagged "-"
// (credential hashes) never reach the log.
func insertLog(tx database.DBTX, entityType string, entityID int64, action string, userID int64, before, after any) error {
	var beforeJSON, afterJSON any

	if before != nil {
		data, err := json.Marshal(before)
		if err != nil {
			return fmt.Errorf("failed to marshal before snapshot: %w", err)
		}
		beforeJSON = string(data)
	}
	if after != nil {
		data, err := json.Marshal(after)
		if err != nil {
			return fmt.Errorf("failed to marshal after snapshot: %w", err)
		}
		afterJSON = string(data)
	}

	_, err := tx.Exec(`
		INSERT INTO finance_logs (entity_type, entity_id, action, user_id, data_before, data_after, created_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, entityType, entityID, action, userID, beforeJSON, afterJSON)
	if err != nil {
		return fmt.Errorf("failed to insert finance log: %w", err)
	}
	return nil
}

// ListForEntity returns the audit entries for one entity, newest first
func (r *FinanceLogRepository) ListForEntity(entityType string, entityID int64) ([]models.FinanceLog, error) {
	rows, err := r.db.Query(`
		SELECT id, entity_type, entity_id, action, user_id, data_before, data_after, created_at
		FROM finance_logs
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at DESC, id DESC
	`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query finance logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

// ListRecent returns the most recent audit entries across all entities
func (r *FinanceLogRepository) ListRecent(limit int) ([]models.FinanceLog, error) {
	rows, err := r.db.Query(`
		SELECT id, entity_type, entity_id, action, user_id, data_before, data_after, created_at
		FROM finance_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query finance logs: %w", err)
	}
	defer rows.Close()

	return scanLogs(rows)
}

func scanLogs(rows *sql.Rows) ([]models.FinanceLog, error) {
	var logs []models.FinanceLog
	for rows.Next() {
		var entry models.FinanceLog
		var userID sql.NullInt64
		var before, after sql.NullString
		if err := rows.Scan(&entry.ID, &entry.EntityType, &entry.EntityID, &entry.Action,
			&userID, &before, &after, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan finance log: %w", err)
		}
		entry.UserID = fromNullInt(userID)
		if before.Valid {
			entry.Before = json.RawMessage(before.String)
		}
		if after.Valid {
			entry.After = json.RawMessage(after.String)
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
