package store

import (
	"context"
	"time"

	"labtrack/internal/models"
)

// SpecimenStore abstracts specimen storage backends.
type SpecimenStore interface {
	SpecimenExists(id string) (bool, error)
	RegisterSpecimen(ctx context.Context, sp *models.Specimen) error
	GetSpecimen(ctx context.Context, id string) (*models.Specimen, error)
	FindActiveByBarcode(ctx context.Context, barcode string) (*models.Specimen, error)
	ApplyStage(ctx context.Context, id string, stage models.Stage, quantity int, strictOrder bool, operatorID string, now time.Time) (*models.Specimen, error)
	UpdateSpecimen(ctx context.Context, id string, update SpecimenUpdate, now time.Time) (*models.Specimen, error)
	SoftDeleteSpecimen(ctx context.Context, id, operatorID string, now time.Time) error
	ListSpecimens(ctx context.Context, filter ListFilter) ([]models.Specimen, error)
	ListAuditEntries(ctx context.Context, recordID string, limit int) ([]models.AuditEntry, error)
}

var _ SpecimenStore = (*Store)(nil)
