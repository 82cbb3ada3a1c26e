package models

import (
	"fmt"
	"strings"
)

// Stage identifies one of the three return milestones for a specimen.
type Stage string

const (
	StageResult Stage = "result"
	StageBlock  Stage = "block"
	StageSlide  Stage = "slide"
)

// Audit actions recorded against specimen records.
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

const (
	BarcodeMaxLength   = 100
	PatientIDMaxLength = 50
	NotesMaxLength     = 500
	QuantityMax        = 9999

	DefaultReturnDays = 14
)

// stageOrder is the conventional progression: result to physician, block
// back to pathology, slide to the patient.
var stageOrder = []Stage{StageResult, StageBlock, StageSlide}

// Stages returns the stages in conventional order.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// EarlierStages returns the stages that conventionally precede stage.
func EarlierStages(stage Stage) []Stage {
	for i, s := range stageOrder {
		if s == stage {
			return Stages()[:i]
		}
	}
	return nil
}

func IsValidStage(stage Stage) bool {
	switch stage {
	case StageResult, StageBlock, StageSlide:
		return true
	}
	return false
}

func ParseStage(raw string) (Stage, error) {
	value := Stage(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("stage is required")
	}
	if !IsValidStage(value) {
		return "", fmt.Errorf("invalid stage: %s", value)
	}
	return value, nil
}

// ValidateBarcode checks barcode length limits. Empty barcodes are allowed
// at this layer; note-only records carry no barcode.
func ValidateBarcode(barcode string) error {
	if len(barcode) > BarcodeMaxLength {
		return fmt.Errorf("barcode must be at most %d characters", BarcodeMaxLength)
	}
	return nil
}

func ValidatePatientID(patientID string) error {
	if len(patientID) > PatientIDMaxLength {
		return fmt.Errorf("patient id must be at most %d characters", PatientIDMaxLength)
	}
	return nil
}

func ValidateNotes(notes string) error {
	if len(notes) > NotesMaxLength {
		return fmt.Errorf("notes must be at most %d characters", NotesMaxLength)
	}
	return nil
}

func IsValidQuantity(value int) bool {
	return value >= 1 && value <= QuantityMax
}
