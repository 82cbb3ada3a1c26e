package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"labtrack/internal/format"
	"labtrack/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeSpecimenList(specimens []models.Specimen, now time.Time) error {
	for _, sp := range specimens {
		if err := writePlain("%s\n", formatSpecimenLine(sp, now)); err != nil {
			return err
		}
	}
	return nil
}

func writeSpecimenDetail(sp *models.Specimen) error {
	lines := []string{
		fmt.Sprintf("id: %s", sp.ID),
	}
	if sp.Barcode != "" {
		lines = append(lines, fmt.Sprintf("barcode: %s", sp.Barcode))
	}
	if sp.PatientID != "" {
		lines = append(lines, fmt.Sprintf("patient_id: %s", sp.PatientID))
	}
	lines = append(lines,
		fmt.Sprintf("quantity: %d", sp.Quantity),
		fmt.Sprintf("registered_at: %s", formatTimestamp(sp.RegisteredAt)),
	)
	if sp.OperatorID != "" {
		lines = append(lines, fmt.Sprintf("operator_id: %s", sp.OperatorID))
	}
	if sp.ExpectedReturnDate != nil {
		lines = append(lines, fmt.Sprintf("expected_return_date: %s", sp.ExpectedReturnDate.UTC().Format(dateLayout)))
	}

	for _, stage := range models.Stages() {
		state := "pending"
		if sp.StageDone(stage) {
			state = "returned"
			if ts := sp.StageTimestamp(stage); ts != nil {
				state = fmt.Sprintf("returned %s", formatTimestamp(*ts))
			}
		}
		switch stage {
		case models.StageBlock:
			if sp.BlockQuantity > 0 {
				state = fmt.Sprintf("%s (x%d)", state, sp.BlockQuantity)
			}
		case models.StageSlide:
			if sp.SlideQuantity > 0 {
				state = fmt.Sprintf("%s (x%d)", state, sp.SlideQuantity)
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s", stage, state))
	}

	if sp.Notes != "" {
		lines = append(lines, fmt.Sprintf("notes: %s", sp.Notes))
	}
	if sp.DeletedAt != nil {
		lines = append(lines, fmt.Sprintf("deleted_at: %s", formatTimestamp(*sp.DeletedAt)))
	}

	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatSpecimenLine(sp models.Specimen, now time.Time) string {
	symbol := "○"
	switch {
	case sp.DeletedAt != nil:
		symbol = "x"
	case sp.AllReturned():
		symbol = "●"
	case sp.IsOverdue(now):
		symbol = "!"
	}

	label := sp.Barcode
	if label == "" {
		label = "(no barcode)"
	}
	return fmt.Sprintf("%s %s [%s] %s - %s",
		symbol, sp.ID, stageMarks(sp), label, sp.RegisteredAt.UTC().Format(dateLayout))
}

// stageMarks renders return progress as a three-letter mask, e.g. R-S for
// a record whose result and slides are back but blocks are not.
func stageMarks(sp models.Specimen) string {
	marks := make([]byte, 0, 3)
	for _, stage := range models.Stages() {
		if sp.StageDone(stage) {
			marks = append(marks, strings.ToUpper(string(stage))[0])
		} else {
			marks = append(marks, '-')
		}
	}
	return string(marks)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
