package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"labtrack/internal/models"
)

var (
	// ErrSpecimenNotFound is returned when a specimen id does not resolve
	// to a live record.
	ErrSpecimenNotFound = errors.New("specimen not found")
	// ErrDuplicateActiveBarcode is returned when registering a barcode that
	// an unreturned specimen still holds.
	ErrDuplicateActiveBarcode = errors.New("an active specimen already holds this barcode")
	// ErrOutOfOrderTransition is returned under strict stage ordering when
	// a later stage is applied before an earlier one.
	ErrOutOfOrderTransition = errors.New("an earlier return stage is still incomplete")
)

// ListScope selects a stage-completion combination for listing.
type ListScope string

const (
	ScopeAll        ListScope = "all"
	ScopeUnreturned ListScope = "unreturned"
	ScopeOverdue    ListScope = "overdue"
	ScopeToday      ListScope = "today"
	ScopeIncomplete ListScope = "incomplete"
	ScopeCompleted  ListScope = "completed"
)

// ListFilter narrows ListSpecimens results.
type ListFilter struct {
	Scope          ListScope
	Search         string
	Barcode        string
	PatientID      string
	OperatorID     string
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
	Sort           string // newest (default), oldest, overdue
	Now            time.Time
	Limit          int
	Offset         int
}

// SpecimenUpdate describes fields to update on a record.
type SpecimenUpdate struct {
	PatientID          *string
	Quantity           *int
	Notes              *string
	ExpectedReturnDate *time.Time
	OperatorID         string
}

const specimenColumns = `id, barcode, patient_id, quantity, operator_id, registered_at, expected_return_date,
	result_returned, result_returned_at, block_quantity, block_returned_at,
	slide_quantity, slide_returned_at, notes, deleted_at`

// activeCondition matches records that still hold their barcode: not
// deleted and not yet through all three return stages.
const activeCondition = `deleted_at IS NULL AND NOT (result_returned = 1 AND block_quantity > 0 AND slide_quantity > 0)`

// RegisterSpecimen inserts a new specimen record. The barcode, when
// present, must not collide with another active record; registering a
// barcode again after full return starts an independent lifecycle.
func (s *Store) RegisterSpecimen(ctx context.Context, sp *models.Specimen) error {
	if sp == nil {
		return fmt.Errorf("specimen is required")
	}
	if sp.Barcode == "" && sp.Notes == "" {
		return fmt.Errorf("barcode or notes is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if sp.Barcode != "" {
		var one int
		dupErr := tx.QueryRowContext(ctx,
			"SELECT 1 FROM specimens WHERE barcode = ? AND "+activeCondition+" LIMIT 1",
			sp.Barcode,
		).Scan(&one)
		if dupErr == nil {
			err = ErrDuplicateActiveBarcode
			return err
		}
		if dupErr != sql.ErrNoRows {
			err = dupErr
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO specimens (
			id, barcode, patient_id, quantity, operator_id, registered_at, expected_return_date,
			result_returned, result_returned_at, block_quantity, block_returned_at,
			slide_quantity, slide_returned_at, notes, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`,
		sp.ID,
		nullIfEmpty(sp.Barcode),
		nullIfEmpty(sp.PatientID),
		sp.Quantity,
		nullIfEmpty(sp.OperatorID),
		formatTime(sp.RegisteredAt),
		nullTime(sp.ExpectedReturnDate),
		boolToInt(sp.ResultReturned),
		nullTime(sp.ResultReturnedAt),
		sp.BlockQuantity,
		nullTime(sp.BlockReturnedAt),
		sp.SlideQuantity,
		nullTime(sp.SlideReturnedAt),
		nullIfEmpty(sp.Notes),
	)
	if err != nil {
		return err
	}

	if err = appendAudit(ctx, tx, models.AuditActionCreate, sp.ID, sp.OperatorID, nil, sp, sp.RegisteredAt); err != nil {
		return err
	}

	return tx.Commit()
}

// GetSpecimen returns a specimen by id, or nil when absent.
func (s *Store) GetSpecimen(ctx context.Context, id string) (*models.Specimen, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+specimenColumns+" FROM specimens WHERE id = ?", id)
	return scanSpecimen(row)
}

// FindActiveByBarcode returns the active record holding barcode, or nil.
// At most one active record can hold a barcode at a time.
func (s *Store) FindActiveByBarcode(ctx context.Context, barcode string) (*models.Specimen, error) {
	if barcode == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+specimenColumns+" FROM specimens WHERE barcode = ? AND "+activeCondition+" ORDER BY registered_at DESC LIMIT 1",
		barcode)
	return scanSpecimen(row)
}

// ApplyStage marks one return stage complete. Re-applying a completed
// stage is a no-op returning the unchanged record, so a double scan never
// errors. Stage flags only move false to true; timestamps are set once.
func (s *Store) ApplyStage(ctx context.Context, id string, stage models.Stage, quantity int, strictOrder bool, operatorID string, now time.Time) (*models.Specimen, error) {
	if !models.IsValidStage(stage) {
		return nil, fmt.Errorf("invalid stage: %s", stage)
	}
	if quantity <= 0 {
		quantity = 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	old, err := scanSpecimen(tx.QueryRowContext(ctx,
		"SELECT "+specimenColumns+" FROM specimens WHERE id = ?", id))
	if err != nil {
		return nil, err
	}
	if old == nil || old.DeletedAt != nil {
		err = ErrSpecimenNotFound
		return nil, err
	}

	if old.StageDone(stage) {
		if err = tx.Commit(); err != nil {
			return nil, err
		}
		return old, nil
	}

	if strictOrder {
		for _, earlier := range models.EarlierStages(stage) {
			if !old.StageDone(earlier) {
				err = ErrOutOfOrderTransition
				return nil, err
			}
		}
	}

	updated := *old
	switch stage {
	case models.StageResult:
		updated.ResultReturned = true
		ts := now.UTC()
		updated.ResultReturnedAt = &ts
		_, err = tx.ExecContext(ctx,
			"UPDATE specimens SET result_returned = 1, result_returned_at = ? WHERE id = ?",
			formatTime(now), id)
	case models.StageBlock:
		updated.BlockQuantity = quantity
		ts := now.UTC()
		updated.BlockReturnedAt = &ts
		_, err = tx.ExecContext(ctx,
			"UPDATE specimens SET block_quantity = ?, block_returned_at = ? WHERE id = ?",
			quantity, formatTime(now), id)
	case models.StageSlide:
		updated.SlideQuantity = quantity
		ts := now.UTC()
		updated.SlideReturnedAt = &ts
		_, err = tx.ExecContext(ctx,
			"UPDATE specimens SET slide_quantity = ?, slide_returned_at = ? WHERE id = ?",
			quantity, formatTime(now), id)
	}
	if err != nil {
		return nil, err
	}

	if err = appendAudit(ctx, tx, models.AuditActionUpdate, id, operatorID, old, &updated, now); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateSpecimen updates mutable fields on a record.
func (s *Store) UpdateSpecimen(ctx context.Context, id string, update SpecimenUpdate, now time.Time) (*models.Specimen, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	old, err := scanSpecimen(tx.QueryRowContext(ctx,
		"SELECT "+specimenColumns+" FROM specimens WHERE id = ?", id))
	if err != nil {
		return nil, err
	}
	if old == nil || old.DeletedAt != nil {
		err = ErrSpecimenNotFound
		return nil, err
	}

	set := []string{}
	args := []any{}

	if update.PatientID != nil {
		set = append(set, "patient_id = ?")
		args = append(args, nullIfEmpty(*update.PatientID))
	}
	if update.Quantity != nil {
		set = append(set, "quantity = ?")
		args = append(args, *update.Quantity)
	}
	if update.Notes != nil {
		set = append(set, "notes = ?")
		args = append(args, nullIfEmpty(*update.Notes))
	}
	if update.ExpectedReturnDate != nil {
		set = append(set, "expected_return_date = ?")
		args = append(args, nullTime(update.ExpectedReturnDate))
	}

	if len(set) == 0 {
		if err = tx.Commit(); err != nil {
			return nil, err
		}
		return old, nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE specimens SET %s WHERE id = ?", strings.Join(set, ", "))
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}

	updated, err := scanSpecimen(tx.QueryRowContext(ctx,
		"SELECT "+specimenColumns+" FROM specimens WHERE id = ?", id))
	if err != nil {
		return nil, err
	}

	if err = appendAudit(ctx, tx, models.AuditActionUpdate, id, update.OperatorID, old, updated, now); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDeleteSpecimen marks a record deleted without removing the row, so
// the audit trail stays intact.
func (s *Store) SoftDeleteSpecimen(ctx context.Context, id, operatorID string, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	old, err := scanSpecimen(tx.QueryRowContext(ctx,
		"SELECT "+specimenColumns+" FROM specimens WHERE id = ?", id))
	if err != nil {
		return err
	}
	if old == nil || old.DeletedAt != nil {
		err = ErrSpecimenNotFound
		return err
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE specimens SET deleted_at = ? WHERE id = ?", formatTime(now), id); err != nil {
		return err
	}

	if err = appendAudit(ctx, tx, models.AuditActionDelete, id, operatorID, old, nil, now); err != nil {
		return err
	}

	return tx.Commit()
}

// ListSpecimens returns records matching the provided filter, most recent
// registration first unless the filter says otherwise.
func (s *Store) ListSpecimens(ctx context.Context, filter ListFilter) ([]models.Specimen, error) {
	query, args := buildListQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specimens []models.Specimen
	for rows.Next() {
		sp, err := scanSpecimen(rows)
		if err != nil {
			return nil, err
		}
		specimens = append(specimens, *sp)
	}
	return specimens, rows.Err()
}

func buildListQuery(filter ListFilter) (string, []any) {
	now := filter.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	query := "SELECT " + specimenColumns + " FROM specimens"
	where := []string{}
	args := []any{}

	if !filter.IncludeDeleted {
		where = append(where, "deleted_at IS NULL")
	}

	switch filter.Scope {
	case ScopeUnreturned:
		where = append(where, "result_returned = 0")
	case ScopeOverdue:
		where = append(where, "result_returned = 0", "expected_return_date IS NOT NULL", "expected_return_date < ?")
		args = append(args, formatTime(now))
	case ScopeToday:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		where = append(where, "registered_at >= ?")
		args = append(args, formatTime(dayStart))
	case ScopeIncomplete:
		where = append(where, "NOT (result_returned = 1 AND block_quantity > 0 AND slide_quantity > 0)")
	case ScopeCompleted:
		where = append(where, "result_returned = 1", "block_quantity > 0", "slide_quantity > 0")
	}

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		where = append(where, "(barcode LIKE ? OR notes LIKE ? OR patient_id LIKE ?)")
		args = append(args, like, like, like)
	}
	if filter.Barcode != "" {
		where = append(where, "barcode = ?")
		args = append(args, filter.Barcode)
	}
	if filter.PatientID != "" {
		where = append(where, "patient_id = ?")
		args = append(args, filter.PatientID)
	}
	if filter.OperatorID != "" {
		where = append(where, "operator_id = ?")
		args = append(args, filter.OperatorID)
	}
	if filter.From != nil {
		where = append(where, "registered_at >= ?")
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "registered_at < ?")
		args = append(args, formatTime(*filter.To))
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	switch filter.Sort {
	case "oldest":
		query += " ORDER BY registered_at ASC"
	case "overdue":
		// Records without an expected date sort last.
		query += " ORDER BY expected_return_date IS NULL, expected_return_date ASC"
	default:
		query += " ORDER BY registered_at DESC"
	}

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	return query, args
}

func scanSpecimen(scanner interface {
	Scan(dest ...any) error
}) (*models.Specimen, error) {
	var sp models.Specimen
	var barcode, patientID, operatorID, notes sql.NullString
	var registeredAt string
	var expectedReturn, resultAt, blockAt, slideAt, deletedAt sql.NullString
	var resultReturned int

	if err := scanner.Scan(
		&sp.ID,
		&barcode,
		&patientID,
		&sp.Quantity,
		&operatorID,
		&registeredAt,
		&expectedReturn,
		&resultReturned,
		&resultAt,
		&sp.BlockQuantity,
		&blockAt,
		&sp.SlideQuantity,
		&slideAt,
		&notes,
		&deletedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	sp.Barcode = barcode.String
	sp.PatientID = patientID.String
	sp.OperatorID = operatorID.String
	sp.Notes = notes.String
	sp.ResultReturned = resultReturned != 0

	parsed, err := parseTime(registeredAt)
	if err != nil {
		return nil, err
	}
	sp.RegisteredAt = parsed

	for _, field := range []struct {
		value sql.NullString
		dst   **time.Time
	}{
		{expectedReturn, &sp.ExpectedReturnDate},
		{resultAt, &sp.ResultReturnedAt},
		{blockAt, &sp.BlockReturnedAt},
		{slideAt, &sp.SlideReturnedAt},
		{deletedAt, &sp.DeletedAt},
	} {
		if !field.value.Valid {
			continue
		}
		ts, err := parseTime(field.value.String)
		if err != nil {
			return nil, err
		}
		*field.dst = &ts
	}

	return &sp, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return formatTime(*value)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
