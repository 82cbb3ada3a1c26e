package store

import (
	"context"
	"testing"
	"time"

	"labtrack/internal/models"
)

func seedHistory(t *testing.T, st *Store, now time.Time) (fresh, overdue, complete, deleted string) {
	t.Helper()
	ctx := context.Background()

	fresh = registerSpecimen(t, st, "H-FRESH", now)

	overdue = "sp-ovr001"
	due := now.Add(-48 * time.Hour)
	sp := &models.Specimen{
		ID:                 overdue,
		Barcode:            "H-OVERDUE",
		Quantity:           1,
		OperatorID:         "op-test01",
		RegisteredAt:       now.Add(-30 * 24 * time.Hour),
		ExpectedReturnDate: &due,
		Notes:              "left kidney biopsy",
	}
	if err := st.RegisterSpecimen(ctx, sp); err != nil {
		t.Fatalf("register overdue: %v", err)
	}

	complete = registerSpecimen(t, st, "H-DONE", now.Add(-time.Hour))
	for _, stage := range models.Stages() {
		if _, err := st.ApplyStage(ctx, complete, stage, 1, false, "op-test01", now); err != nil {
			t.Fatalf("apply %s: %v", stage, err)
		}
	}

	deleted = registerSpecimen(t, st, "H-GONE", now.Add(-2*time.Hour))
	if err := st.SoftDeleteSpecimen(ctx, deleted, "op-test01", now); err != nil {
		t.Fatalf("delete: %v", err)
	}

	return fresh, overdue, complete, deleted
}

func TestListSpecimensScopes(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	// Fixed midday clock keeps the "today" scope stable.
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	fresh, overdue, complete, _ := seedHistory(t, st, now)

	tests := []struct {
		name    string
		filter  ListFilter
		wantIDs map[string]bool
	}{
		{"all excludes deleted", ListFilter{Now: now}, map[string]bool{fresh: true, overdue: true, complete: true}},
		{"unreturned", ListFilter{Scope: ScopeUnreturned, Now: now}, map[string]bool{fresh: true, overdue: true}},
		{"overdue", ListFilter{Scope: ScopeOverdue, Now: now}, map[string]bool{overdue: true}},
		{"incomplete", ListFilter{Scope: ScopeIncomplete, Now: now}, map[string]bool{fresh: true, overdue: true}},
		{"completed", ListFilter{Scope: ScopeCompleted, Now: now}, map[string]bool{complete: true}},
		{"today", ListFilter{Scope: ScopeToday, Now: now.Add(time.Minute)}, map[string]bool{fresh: true, complete: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.ListSpecimens(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d records, got %d", len(tt.wantIDs), len(got))
			}
			for _, sp := range got {
				if !tt.wantIDs[sp.ID] {
					t.Fatalf("unexpected record %s", sp.ID)
				}
			}
		})
	}
}

func TestListSpecimensTodayUsesDayStart(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	// Registrations just before midnight must not leak into today.
	now := time.Date(2026, 8, 30, 0, 30, 0, 0, time.UTC)

	yesterday := &models.Specimen{
		ID:           "sp-yday01",
		Barcode:      "Y-1",
		Quantity:     1,
		OperatorID:   "op-test01",
		RegisteredAt: now.Add(-time.Hour),
	}
	if err := st.RegisterSpecimen(ctx, yesterday); err != nil {
		t.Fatalf("register: %v", err)
	}
	registerSpecimen(t, st, "T-1", now)

	got, err := st.ListSpecimens(ctx, ListFilter{Scope: ScopeToday, Now: now})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Barcode != "T-1" {
		t.Fatalf("expected only today's record, got %+v", got)
	}
}

func TestListSpecimensSearchAndOrder(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	seedHistory(t, st, now)

	got, err := st.ListSpecimens(ctx, ListFilter{Search: "kidney", Now: now})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Barcode != "H-OVERDUE" {
		t.Fatalf("expected notes match, got %+v", got)
	}

	// Default order is most recent registration first.
	all, err := st.ListSpecimens(ctx, ListFilter{Now: now})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].RegisteredAt.After(all[i-1].RegisteredAt) {
			t.Fatal("expected registered_at descending")
		}
	}

	oldest, err := st.ListSpecimens(ctx, ListFilter{Sort: "oldest", Now: now})
	if err != nil {
		t.Fatalf("list oldest: %v", err)
	}
	if oldest[0].Barcode != "H-OVERDUE" {
		t.Fatalf("expected oldest first, got %s", oldest[0].Barcode)
	}
}

func TestListSpecimensDateRangeAndPagination(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 5; i++ {
		sp := &models.Specimen{
			ID:           GenerateMustID(t),
			Barcode:      "R-" + string(rune('A'+i)),
			Quantity:     1,
			OperatorID:   "op-test01",
			RegisteredAt: now.Add(time.Duration(-i) * 24 * time.Hour),
		}
		if err := st.RegisterSpecimen(ctx, sp); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	from := now.Add(-2*24*time.Hour - time.Minute)
	to := now.Add(time.Minute)
	ranged, err := st.ListSpecimens(ctx, ListFilter{From: &from, To: &to, Now: now})
	if err != nil {
		t.Fatalf("range list: %v", err)
	}
	if len(ranged) != 3 {
		t.Fatalf("expected 3 in range, got %d", len(ranged))
	}

	page, err := st.ListSpecimens(ctx, ListFilter{Limit: 2, Offset: 2, Now: now})
	if err != nil {
		t.Fatalf("page list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
}

// GenerateMustID returns a fresh specimen id or fails the test.
func GenerateMustID(t *testing.T) string {
	t.Helper()
	id, err := GenerateSpecimenID(nil)
	if err != nil {
		t.Fatalf("generate id: %v", err)
	}
	return id
}
