package models

import (
	"encoding/json"
	"time"
)

// Finance log actions
const (
	LogActionCreate = "create"
	LogActionUpdate = "update"
	LogActionDelete = "delete"
)

// FinanceLog is an append-only audit entry with JSON snapshots of the entity
// before and after the operation. Before is null for creates, After is null
// for deletes. Rows are never updated or deleted.
type FinanceLog struct {
	ID         int64           `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Action     string          `json:"action"`
	UserID     *int64          `json:"user_id,omitempty"`
	Before     json.RawMessage `json:"data_before,omitempty"`
	After      json.RawMessage `json:"data_after,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
