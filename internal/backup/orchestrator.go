package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DestinationResult reports the write outcome for one destination.
type DestinationResult struct {
	Kind  DestinationKind `json:"kind"`
	Dir   string          `json:"dir"`
	Path  string          `json:"path,omitempty"`
	Error string          `json:"error,omitempty"`
}

// OK reports whether the write succeeded.
func (r DestinationResult) OK() bool {
	return r.Error == ""
}

// Report enumerates everything one orchestration run attempted and how it
// went. Backup failures surface here and in logs only; they never
// propagate into the serving side of the application.
type Report struct {
	RunID             string              `json:"run_id"`
	StartedAt         time.Time           `json:"started_at"`
	FinishedAt        time.Time           `json:"finished_at"`
	SnapshotName      string              `json:"snapshot_name"`
	SnapshotSize      int64               `json:"snapshot_size_bytes"`
	SnapshotSHA256    string              `json:"snapshot_sha256"`
	ExternalAvailable bool                `json:"external_available"`
	Destinations      []DestinationResult `json:"destinations"`
	Purged            int                 `json:"purged"`
	PurgeFailures     []PurgeFailure      `json:"purge_failures,omitempty"`
}

// AllWritten reports whether every attempted destination write succeeded.
func (r *Report) AllWritten() bool {
	for _, d := range r.Destinations {
		if !d.OK() {
			return false
		}
	}
	return true
}

// Orchestrator coordinates snapshot production, destination writes, and
// retention for one record store. It is invoked explicitly by the
// application's startup sequence.
type Orchestrator struct {
	mu       sync.Mutex
	producer *Producer
	resolver Resolver
	maxAge   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrchestrator wires a backup pipeline for source. retentionDays bounds
// the age of snapshots kept at the local destination.
func NewOrchestrator(source Source, resolver Resolver, retentionDays int, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		producer: NewProducer(source),
		resolver: resolver,
		maxAge:   time.Duration(retentionDays) * 24 * time.Hour,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one orchestration: resolve destinations, produce one
// snapshot, write it to every destination independently, then purge
// expired local snapshots. At most one run is active at a time. A failed
// snapshot aborts the run; a failed destination write or purge does not.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	started := o.now().UTC()
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}

	resolution, err := o.resolver.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolve destinations: %w", err)
	}
	report.ExternalAvailable = resolution.External != nil
	if resolution.External == nil {
		o.logger.Warn("external destination unavailable; writing local only", "run_id", report.RunID)
	}

	snapshot, err := o.producer.Snapshot(ctx, resolution.Local.Dir, started)
	if err != nil {
		o.logger.Error("backup run aborted", "run_id", report.RunID, "error", err)
		return nil, err
	}
	defer snapshot.Cleanup()

	report.SnapshotName = snapshot.Name
	report.SnapshotSize = snapshot.SizeBytes
	report.SnapshotSHA256 = snapshot.SHA256

	for _, dest := range resolution.Destinations() {
		result := DestinationResult{Kind: dest.Kind, Dir: dest.Dir}
		path, err := writeSnapshot(dest, snapshot)
		if err != nil {
			result.Error = err.Error()
			o.logger.Error("destination write failed", "run_id", report.RunID, "kind", dest.Kind, "dir", dest.Dir, "error", err)
		} else {
			result.Path = path
			o.logger.Info("snapshot written", "run_id", report.RunID, "kind", dest.Kind, "path", path, "size", snapshot.SizeBytes)
		}
		report.Destinations = append(report.Destinations, result)
	}

	// Retention runs after all writes were attempted, whatever their
	// outcome, and touches the local destination only.
	purge := PurgeExpired(resolution.Local.Dir, o.maxAge, o.now().UTC(), o.logger)
	report.Purged = purge.Removed
	report.PurgeFailures = purge.Failures

	report.FinishedAt = o.now().UTC()
	return report, nil
}

// writeSnapshot copies the staged snapshot into dest, verifying the
// recorded checksum on the way, and renames into place only once the copy
// is complete so a crash never leaves a half-written file under a valid
// snapshot name.
func writeSnapshot(dest Destination, snapshot *Snapshot) (string, error) {
	final := filepath.Join(dest.Dir, snapshot.Name)
	tmp := final + tmpSuffix

	src, err := os.Open(snapshot.TempPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, h), src); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	if digest := hex.EncodeToString(h.Sum(nil)); digest != snapshot.SHA256 {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("checksum mismatch writing %s: got %s, want %s", final, digest, snapshot.SHA256)
	}

	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return final, nil
}
