package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"labtrack/internal/models"
)

// appendAudit records one mutation inside the caller's transaction so the
// audit row commits or rolls back together with the change it describes.
func appendAudit(ctx context.Context, tx *sql.Tx, action, recordID, operatorID string, oldValue, newValue *models.Specimen, now time.Time) error {
	auditID, err := GenerateAuditID(nil)
	if err != nil {
		return err
	}

	oldJSON, err := marshalAuditValue(oldValue)
	if err != nil {
		return err
	}
	newJSON, err := marshalAuditValue(newValue)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, action, record_id, operator_id, old_value, new_value, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, auditID, action, recordID, nullIfEmpty(operatorID), oldJSON, newJSON, formatTime(now))
	return err
}

func marshalAuditValue(sp *models.Specimen) (any, error) {
	if sp == nil {
		return nil, nil
	}
	data, err := json.Marshal(sp)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// ListAuditEntries returns audit entries, most recent first. A non-empty
// recordID narrows the result to one specimen's history.
func (s *Store) ListAuditEntries(ctx context.Context, recordID string, limit int) ([]models.AuditEntry, error) {
	query := `
		SELECT id, action, record_id, operator_id, old_value, new_value, created_at
		FROM audit_logs
	`
	args := []any{}
	if recordID != "" {
		query += " WHERE record_id = ?"
		args = append(args, recordID)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var operatorID, oldValue, newValue sql.NullString
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.RecordID, &operatorID, &oldValue, &newValue, &createdAt); err != nil {
			return nil, err
		}
		entry.OperatorID = operatorID.String
		entry.OldValue = oldValue.String
		entry.NewValue = newValue.String
		parsed, err := parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = parsed
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
