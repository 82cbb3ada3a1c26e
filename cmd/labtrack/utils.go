package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"labtrack/internal/config"
	"labtrack/internal/models"
	"labtrack/internal/store"
)

// withStore opens the record store, runs fn, and closes it.
func withStore(cfg *config.Config, fn func(st *store.Store) error) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(st)
}

// resolveSpecimen looks up a record by id or, failing that, by the barcode
// of the record currently holding it.
func resolveSpecimen(ctx context.Context, st *store.Store, ref string) (*models.Specimen, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("specimen id or barcode is required")
	}

	sp, err := st.GetSpecimen(ctx, ref)
	if err != nil {
		return nil, err
	}
	if sp != nil {
		return sp, nil
	}

	sp, err = st.FindActiveByBarcode(ctx, ref)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrSpecimenNotFound, ref)
	}
	return sp, nil
}

// resolveOperatorID maps an operator name to its id. An empty name means
// the scan was recorded without attribution.
func resolveOperatorID(ctx context.Context, st *store.Store, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	op, err := st.GetOperatorByName(ctx, name)
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", fmt.Errorf("unknown operator: %s", name)
	}
	if op.Disabled {
		return "", fmt.Errorf("operator %s is disabled", name)
	}
	return op.ID, nil
}

const dateLayout = "2006-01-02"

// parseDateFlag parses a YYYY-MM-DD flag value as a UTC date.
func parseDateFlag(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}
