package domain

import (
	"slices"
	"time"
)

// History limits.
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// HistoryEntry records the products a session asked to compare. Entries are
// append-only.
type HistoryEntry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	ProductIDs []string  `json:"product_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewHistoryEntry copies productIDs so later changes by the caller do not
// leak into the record.
func NewHistoryEntry(id, sessionID string, productIDs []string, at time.Time) HistoryEntry {
	return HistoryEntry{
		ID:         id,
		SessionID:  sessionID,
		ProductIDs: slices.Clone(productIDs),
		CreatedAt:  at.UTC(),
	}
}

// ClampHistoryLimit maps a requested limit onto 1..MaxHistoryLimit, using the
// default for non-positive values.
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	return min(limit, MaxHistoryLimit)
}
