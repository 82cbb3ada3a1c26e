package backup

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// PurgeFailure records one snapshot that could not be deleted.
type PurgeFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// PurgeResult summarizes one retention pass.
type PurgeResult struct {
	Removed  int            `json:"removed"`
	Failures []PurgeFailure `json:"failures,omitempty"`
}

// PurgeExpired deletes snapshots in dir whose embedded creation time is
// strictly older than maxAge. Deletion is best-effort per file; failures
// are collected, not fatal. Only the local destination is ever purged;
// the external archive is permanent.
func PurgeExpired(dir string, maxAge time.Duration, now time.Time, logger *slog.Logger) PurgeResult {
	if logger == nil {
		logger = slog.Default()
	}

	var result PurgeResult

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Failures = append(result.Failures, PurgeFailure{Path: dir, Error: err.Error()})
		return result
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		createdAt, ok := parseSnapshotTime(entry.Name())
		if !ok {
			continue
		}
		// Strict greater-than: a snapshot exactly maxAge old survives.
		// Stale temp files from crashed runs age out the same way.
		if now.Sub(createdAt) <= maxAge {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warn("purge failed", "path", path, "error", err)
			result.Failures = append(result.Failures, PurgeFailure{Path: path, Error: err.Error()})
			continue
		}
		logger.Info("purged expired snapshot", "path", path)
		result.Removed++
	}

	return result
}
