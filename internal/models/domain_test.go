package models

import (
	"strings"
	"testing"
	"time"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		raw     string
		want    Stage
		wantErr bool
	}{
		{"result", StageResult, false},
		{"Block", StageBlock, false},
		{"  SLIDE  ", StageSlide, false},
		{"", "", true},
		{"tissue", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStage(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseStage(%q): expected error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseStage(%q): %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ParseStage(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestEarlierStages(t *testing.T) {
	if got := EarlierStages(StageResult); len(got) != 0 {
		t.Fatalf("expected no stages before result, got %v", got)
	}
	if got := EarlierStages(StageSlide); len(got) != 2 || got[0] != StageResult || got[1] != StageBlock {
		t.Fatalf("unexpected stages before slide: %v", got)
	}
}

func TestSpecimenStageDerivation(t *testing.T) {
	sp := Specimen{Quantity: 1}
	if sp.BlockReturned() || sp.SlideReturned() || sp.AllReturned() {
		t.Fatal("fresh specimen should have no completed stages")
	}

	sp.ResultReturned = true
	sp.BlockQuantity = 2
	if sp.AllReturned() {
		t.Fatal("slide still outstanding")
	}

	sp.SlideQuantity = 1
	if !sp.AllReturned() {
		t.Fatal("expected all stages complete")
	}
	for _, stage := range Stages() {
		if !sp.StageDone(stage) {
			t.Fatalf("stage %s should be done", stage)
		}
	}
}

func TestSpecimenIsOverdue(t *testing.T) {
	now := time.Now().UTC()
	due := now.Add(-24 * time.Hour)

	sp := Specimen{ExpectedReturnDate: &due}
	if !sp.IsOverdue(now) {
		t.Fatal("expected overdue")
	}

	sp.ResultReturned = true
	if sp.IsOverdue(now) {
		t.Fatal("returned specimens are never overdue")
	}

	deleted := now
	sp = Specimen{ExpectedReturnDate: &due, DeletedAt: &deleted}
	if sp.IsOverdue(now) {
		t.Fatal("deleted specimens are never overdue")
	}
}

func TestValidators(t *testing.T) {
	if err := ValidateBarcode(strings.Repeat("x", BarcodeMaxLength+1)); err == nil {
		t.Fatal("expected barcode length error")
	}
	if err := ValidateBarcode(""); err != nil {
		t.Fatalf("empty barcode should pass: %v", err)
	}
	if err := ValidateNotes(strings.Repeat("n", NotesMaxLength+1)); err == nil {
		t.Fatal("expected notes length error")
	}
	if IsValidQuantity(0) || IsValidQuantity(QuantityMax+1) {
		t.Fatal("quantity bounds not enforced")
	}
	if !IsValidQuantity(1) {
		t.Fatal("quantity 1 must be valid")
	}
}
