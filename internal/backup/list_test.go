package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestListSnapshotsNewestFirstAcrossDestinations(t *testing.T) {
	local := t.TempDir()
	external := t.TempDir()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	writeSnapshotFile(t, local, now.AddDate(0, 0, -2))
	writeSnapshotFile(t, local, now)
	oldExternal := SnapshotName(now.AddDate(0, 0, -1), "labtrack.db")
	if err := os.WriteFile(filepath.Join(external, oldExternal), []byte("snap"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Temps and unrelated files are not snapshots.
	if err := os.WriteFile(filepath.Join(local, "."+SnapshotName(now, "labtrack.db")+tmpSuffix), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(local, "README"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res := Resolution{
		Local:    Destination{Kind: DestinationLocal, Dir: local},
		External: &Destination{Kind: DestinationExternal, Dir: external},
	}
	files, err := ListSnapshots(res)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i].CreatedAt.After(files[i-1].CreatedAt) {
			t.Fatalf("expected newest first, got %v before %v", files[i-1].CreatedAt, files[i].CreatedAt)
		}
	}
	if files[0].Kind != DestinationLocal || !files[0].CreatedAt.Equal(now) {
		t.Fatalf("unexpected newest snapshot: %+v", files[0])
	}
	if files[1].Kind != DestinationExternal {
		t.Fatalf("expected external snapshot second, got %+v", files[1])
	}
}

func TestLatestSnapshotEmpty(t *testing.T) {
	res := Resolution{Local: Destination{Kind: DestinationLocal, Dir: t.TempDir()}}
	latest, err := LatestSnapshot(res)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil for empty destination, got %+v", latest)
	}
}

func TestListSnapshotsMissingExternalDir(t *testing.T) {
	res := Resolution{
		Local:    Destination{Kind: DestinationLocal, Dir: t.TempDir()},
		External: &Destination{Kind: DestinationExternal, Dir: filepath.Join(t.TempDir(), "gone")},
	}
	files, err := ListSnapshots(res)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no snapshots, got %d", len(files))
	}
}
