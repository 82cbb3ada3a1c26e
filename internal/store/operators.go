package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"labtrack/internal/models"
)

// ErrDuplicateOperatorName is returned when creating an operator whose
// name is already taken.
var ErrDuplicateOperatorName = errors.New("an operator with this name already exists")

// CreateOperator creates one named operator. The password hash may be
// empty; passwords are opt-in.
func (s *Store) CreateOperator(ctx context.Context, name, passwordHash string, isAdmin bool, now time.Time) (*models.Operator, error) {
	if name == "" {
		return nil, fmt.Errorf("operator name is required")
	}

	existing, err := s.GetOperatorByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateOperatorName
	}

	id, err := GenerateOperatorID(s.operatorExists)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO operators (id, name, password_hash, is_admin, disabled, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`, id, name, nullIfEmpty(passwordHash), boolToInt(isAdmin), formatTime(now))
	if err != nil {
		return nil, err
	}

	return &models.Operator{
		ID:           id,
		Name:         name,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		Disabled:     false,
		CreatedAt:    now.UTC(),
	}, nil
}

// GetOperator returns an operator by id, or nil when absent.
func (s *Store) GetOperator(ctx context.Context, id string) (*models.Operator, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, is_admin, disabled, created_at
		FROM operators WHERE id = ? LIMIT 1
	`, id)
	return scanOperator(row)
}

// GetOperatorByName returns an operator by name, or nil when absent.
func (s *Store) GetOperatorByName(ctx context.Context, name string) (*models.Operator, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, is_admin, disabled, created_at
		FROM operators WHERE name = ? LIMIT 1
	`, name)
	return scanOperator(row)
}

// ListOperators returns all operators sorted by name.
func (s *Store) ListOperators(ctx context.Context) ([]models.Operator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, password_hash, is_admin, disabled, created_at
		FROM operators ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	operators := make([]models.Operator, 0)
	for rows.Next() {
		op, err := scanOperator(rows)
		if err != nil {
			return nil, err
		}
		if op == nil {
			continue
		}
		operators = append(operators, *op)
	}
	return operators, rows.Err()
}

// SetOperatorDisabled updates one operator's disabled state by name.
// Returns false when no operator matched.
func (s *Store) SetOperatorDisabled(ctx context.Context, name string, disabled bool) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE operators SET disabled = ? WHERE name = ?", boolToInt(disabled), name)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SetOperatorPassword replaces one operator's password hash by name. An
// empty hash clears the password.
func (s *Store) SetOperatorPassword(ctx context.Context, name, passwordHash string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE operators SET password_hash = ? WHERE name = ?", nullIfEmpty(passwordHash), name)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) operatorExists(id string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM operators WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scanOperator(scanner interface {
	Scan(dest ...any) error
}) (*models.Operator, error) {
	var op models.Operator
	var passwordHash sql.NullString
	var isAdmin, disabled int
	var createdAt string

	if err := scanner.Scan(&op.ID, &op.Name, &passwordHash, &isAdmin, &disabled, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	op.PasswordHash = passwordHash.String
	op.IsAdmin = isAdmin != 0
	op.Disabled = disabled != 0

	parsed, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	op.CreatedAt = parsed

	return &op, nil
}
