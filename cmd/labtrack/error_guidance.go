package main

import (
	"errors"

	"labtrack/internal/store"
)

// formatCLIError renders an error with a followup hint where one exists.
func formatCLIError(err error) []string {
	lines := []string{"Error: " + err.Error()}
	switch {
	case errors.Is(err, store.ErrDuplicateActiveBarcode):
		lines = append(lines, "hint: the previous specimen with this barcode has not completed its returns; use 'labtrack show <barcode>' to inspect it")
	case errors.Is(err, store.ErrOutOfOrderTransition):
		lines = append(lines, "hint: strict stage ordering is enabled; record the earlier stages first or set strict_stage_order=false")
	case errors.Is(err, store.ErrSpecimenNotFound):
		lines = append(lines, "hint: 'labtrack list' shows known specimen ids and barcodes")
	}
	return lines
}
