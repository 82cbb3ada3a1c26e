package main

import (
	"testing"
	"time"

	"labtrack/internal/models"
)

func TestStageMarks(t *testing.T) {
	now := time.Now().UTC()
	sp := models.Specimen{ID: "sp-abc123", RegisteredAt: now}

	if got := stageMarks(sp); got != "---" {
		t.Fatalf("expected ---, got %q", got)
	}

	sp.ResultReturned = true
	sp.SlideQuantity = 3
	if got := stageMarks(sp); got != "R-S" {
		t.Fatalf("expected R-S, got %q", got)
	}

	sp.BlockQuantity = 2
	if got := stageMarks(sp); got != "RBS" {
		t.Fatalf("expected RBS, got %q", got)
	}
}

func TestFormatSpecimenLine(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -1)
	sp := models.Specimen{
		ID:                 "sp-abc123",
		Barcode:            "B100",
		RegisteredAt:       now.AddDate(0, 0, -10),
		ExpectedReturnDate: &due,
	}

	line := formatSpecimenLine(sp, now)
	if line != "! sp-abc123 [---] B100 - 2026-08-20" {
		t.Fatalf("unexpected line %q", line)
	}

	sp.ResultReturned = true
	sp.BlockQuantity = 1
	sp.SlideQuantity = 1
	line = formatSpecimenLine(sp, now)
	if line != "● sp-abc123 [RBS] B100 - 2026-08-20" {
		t.Fatalf("unexpected line %q", line)
	}
}
