package models

import "time"

// AuditEntry records one mutation against a specimen record, with the old
// and new values serialized as JSON for later inspection.
type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	RecordID   string    `json:"record_id"`
	OperatorID string    `json:"operator_id,omitempty"`
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
