package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrSnapshotFailed marks a run that aborted because no snapshot could be
// produced. Destination writes are never attempted without a snapshot.
var ErrSnapshotFailed = errors.New("snapshot creation failed")

// snapshotTimeLayout is the timestamp prefix of every snapshot filename.
// The embedded time, not filesystem mtime, drives retention so copied or
// touched files still expire correctly.
const snapshotTimeLayout = "20060102_150405"

const tmpSuffix = ".tmp"

// Source provides a consistent point-in-time copy of the record store.
type Source interface {
	Path() string
	BackupTo(ctx context.Context, path string) error
}

// Snapshot is one produced point-in-time copy, staged under a temporary
// name until destination writes complete.
type Snapshot struct {
	SourcePath string
	Name       string
	TempPath   string
	CreatedAt  time.Time
	SizeBytes  int64
	SHA256     string
}

// Cleanup removes the staged temporary file.
func (s *Snapshot) Cleanup() {
	if s != nil && s.TempPath != "" {
		_ = os.Remove(s.TempPath)
	}
}

// Producer creates snapshots from a record store.
type Producer struct {
	source Source
}

// NewProducer creates a Producer reading from source.
func NewProducer(source Source) *Producer {
	return &Producer{source: source}
}

// Snapshot produces one consistent copy of the store into stagingDir under
// a temporary name, and computes its size and SHA-256 for later
// verification at each destination.
func (p *Producer) Snapshot(ctx context.Context, stagingDir string, now time.Time) (*Snapshot, error) {
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create staging dir: %v", ErrSnapshotFailed, err)
	}

	name := SnapshotName(now, p.source.Path())
	// Dot-prefixed so the staging file never collides with a destination
	// write temp for the same snapshot name.
	tmpPath := filepath.Join(stagingDir, "."+name+tmpSuffix)
	// A leftover temp from a crashed run would make VACUUM INTO fail.
	_ = os.Remove(tmpPath)

	if err := p.source.BackupTo(ctx, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: %v", ErrSnapshotFailed, err)
	}

	digest, size, err := hashFile(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("%w: checksum: %v", ErrSnapshotFailed, err)
	}

	return &Snapshot{
		SourcePath: p.source.Path(),
		Name:       name,
		TempPath:   tmpPath,
		CreatedAt:  now.UTC(),
		SizeBytes:  size,
		SHA256:     digest,
	}, nil
}

// SnapshotName builds the timestamped filename for a snapshot of the
// store at sourcePath, e.g. 20260830_020000_labtrack.db.
func SnapshotName(t time.Time, sourcePath string) string {
	return t.UTC().Format(snapshotTimeLayout) + "_" + filepath.Base(sourcePath)
}

// parseSnapshotTime extracts the creation time embedded in a snapshot
// filename. Files without the timestamp prefix are not snapshots. Staging
// temps carry a leading dot but age out on the same clock.
func parseSnapshotTime(filename string) (time.Time, bool) {
	filename = strings.TrimPrefix(filename, ".")
	if len(filename) < len(snapshotTimeLayout)+1 {
		return time.Time{}, false
	}
	if filename[len(snapshotTimeLayout)] != '_' {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(snapshotTimeLayout, filename[:len(snapshotTimeLayout)], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
