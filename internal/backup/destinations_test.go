package backup

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveLocalOnly(t *testing.T) {
	local := filepath.Join(t.TempDir(), "backups")
	r, err := NewMountResolver(local, "", "labtrack_backups", discardLogger())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	res, err := r.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Local.Dir != local {
		t.Fatalf("expected local dir %q, got %q", local, res.Local.Dir)
	}
	if res.External != nil {
		t.Fatalf("expected no external destination")
	}
	if info, err := os.Stat(local); err != nil || !info.IsDir() {
		t.Fatalf("expected local dir created, err: %v", err)
	}
}

func TestResolveExternalMounted(t *testing.T) {
	local := filepath.Join(t.TempDir(), "backups")
	mount := t.TempDir()
	r, err := NewMountResolver(local, mount, "labtrack_backups", discardLogger())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	res, err := r.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.External == nil {
		t.Fatalf("expected external destination")
	}
	want := filepath.Join(mount, "labtrack_backups")
	if res.External.Dir != want {
		t.Fatalf("expected external dir %q, got %q", want, res.External.Dir)
	}
	if res.External.Kind != DestinationExternal {
		t.Fatalf("expected external kind, got %q", res.External.Kind)
	}

	// The probe file must not linger.
	if _, err := os.Stat(filepath.Join(mount, ".write_test")); !os.IsNotExist(err) {
		t.Fatalf("expected probe file removed, stat err: %v", err)
	}
}

func TestResolveExternalAbsent(t *testing.T) {
	local := filepath.Join(t.TempDir(), "backups")
	mount := filepath.Join(t.TempDir(), "no-such-mount")
	r, err := NewMountResolver(local, mount, "labtrack_backups", discardLogger())
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	res, err := r.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.External != nil {
		t.Fatalf("expected absent mount to be omitted, got %+v", res.External)
	}
}

func TestResolveRequiresLocalDir(t *testing.T) {
	if _, err := NewMountResolver("", "/mnt/usb", "sub", discardLogger()); err == nil {
		t.Fatal("expected error for empty local dir")
	}
}

func TestResolutionDestinationsLocalFirst(t *testing.T) {
	res := Resolution{
		Local:    Destination{Kind: DestinationLocal, Dir: "/a"},
		External: &Destination{Kind: DestinationExternal, Dir: "/b"},
	}
	dests := res.Destinations()
	if len(dests) != 2 {
		t.Fatalf("expected 2 destinations, got %d", len(dests))
	}
	if dests[0].Kind != DestinationLocal || dests[1].Kind != DestinationExternal {
		t.Fatalf("expected local first, got %+v", dests)
	}
}
