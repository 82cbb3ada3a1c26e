package models

import "time"

// Specimen represents one tracked pathology specimen from barcode
// registration through the three return stages.
type Specimen struct {
	ID                 string     `json:"id"`
	Barcode            string     `json:"barcode,omitempty"`
	PatientID          string     `json:"patient_id,omitempty"`
	Quantity           int        `json:"quantity"`
	OperatorID         string     `json:"operator_id"`
	RegisteredAt       time.Time  `json:"registered_at"`
	ExpectedReturnDate *time.Time `json:"expected_return_date,omitempty"`
	ResultReturned     bool       `json:"result_returned"`
	ResultReturnedAt   *time.Time `json:"result_returned_at,omitempty"`
	BlockQuantity      int        `json:"block_quantity"`
	BlockReturnedAt    *time.Time `json:"block_returned_at,omitempty"`
	SlideQuantity      int        `json:"slide_quantity"`
	SlideReturnedAt    *time.Time `json:"slide_returned_at,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
}

// BlockReturned reports whether any blocks came back.
func (s *Specimen) BlockReturned() bool {
	return s.BlockQuantity > 0
}

// SlideReturned reports whether any slides came back.
func (s *Specimen) SlideReturned() bool {
	return s.SlideQuantity > 0
}

// AllReturned reports whether all three return stages are complete.
func (s *Specimen) AllReturned() bool {
	return s.ResultReturned && s.BlockReturned() && s.SlideReturned()
}

// StageDone reports whether the named return stage is complete.
func (s *Specimen) StageDone(stage Stage) bool {
	switch stage {
	case StageResult:
		return s.ResultReturned
	case StageBlock:
		return s.BlockReturned()
	case StageSlide:
		return s.SlideReturned()
	default:
		return false
	}
}

// StageTimestamp returns the recorded completion time for a stage, or nil.
func (s *Specimen) StageTimestamp(stage Stage) *time.Time {
	switch stage {
	case StageResult:
		return s.ResultReturnedAt
	case StageBlock:
		return s.BlockReturnedAt
	case StageSlide:
		return s.SlideReturnedAt
	default:
		return nil
	}
}

// IsOverdue reports whether the result is still outstanding past the
// expected return date. Deleted records are never overdue.
func (s *Specimen) IsOverdue(now time.Time) bool {
	if s.ResultReturned || s.DeletedAt != nil {
		return false
	}
	if s.ExpectedReturnDate == nil {
		return false
	}
	return now.After(*s.ExpectedReturnDate)
}
