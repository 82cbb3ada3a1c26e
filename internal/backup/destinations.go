package backup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DestinationKind distinguishes the retained local directory from the
// permanent external archive.
type DestinationKind string

const (
	DestinationLocal    DestinationKind = "local"
	DestinationExternal DestinationKind = "external"
)

// Destination is one resolved backup target directory.
type Destination struct {
	Kind DestinationKind `json:"kind"`
	Dir  string          `json:"dir"`
}

// Resolution is the destination set for a single orchestration run. Local
// is always present; External only while the removable media is mounted
// and writable.
type Resolution struct {
	Local    Destination
	External *Destination
}

// Destinations returns the resolved destinations, Local first.
func (r Resolution) Destinations() []Destination {
	out := []Destination{r.Local}
	if r.External != nil {
		out = append(out, *r.External)
	}
	return out
}

// Resolver discovers available backup destinations. Implementations probe
// on every call; media may come and go between runs.
type Resolver interface {
	Resolve() (Resolution, error)
}

// MountResolver resolves the fixed local directory plus, when present, a
// subdirectory on a removable mount.
type MountResolver struct {
	localDir       string
	externalMount  string
	externalSubdir string
	logger         *slog.Logger
}

// NewMountResolver creates a resolver. externalMount may be empty when no
// removable destination is configured.
func NewMountResolver(localDir, externalMount, externalSubdir string, logger *slog.Logger) (*MountResolver, error) {
	if localDir == "" {
		return nil, fmt.Errorf("local backup dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MountResolver{
		localDir:       localDir,
		externalMount:  externalMount,
		externalSubdir: externalSubdir,
		logger:         logger,
	}, nil
}

// Resolve probes the filesystem. An unreachable external mount is logged
// and omitted, never an error; only a local directory that cannot be
// created fails the resolution.
func (r *MountResolver) Resolve() (Resolution, error) {
	if err := os.MkdirAll(r.localDir, 0o755); err != nil {
		return Resolution{}, fmt.Errorf("create local backup dir: %w", err)
	}

	res := Resolution{Local: Destination{Kind: DestinationLocal, Dir: r.localDir}}

	if r.externalMount == "" {
		return res, nil
	}

	info, err := os.Stat(r.externalMount)
	if err != nil || !info.IsDir() {
		r.logger.Warn("external mount not present", "mount", r.externalMount)
		return res, nil
	}
	if err := writeProbe(r.externalMount); err != nil {
		r.logger.Warn("external mount not writable", "mount", r.externalMount, "error", err)
		return res, nil
	}

	extDir := filepath.Join(r.externalMount, r.externalSubdir)
	if err := os.MkdirAll(extDir, 0o755); err != nil {
		r.logger.Warn("cannot create external backup dir", "dir", extDir, "error", err)
		return res, nil
	}

	res.External = &Destination{Kind: DestinationExternal, Dir: extDir}
	return res, nil
}

// writeProbe verifies the directory accepts writes by creating and
// removing a probe file. A mount that stats fine can still be read-only.
func writeProbe(dir string) error {
	probe := filepath.Join(dir, ".write_test")
	f, err := os.Create(probe)
	if err != nil {
		return err
	}
	if _, err := f.WriteString("test"); err != nil {
		_ = f.Close()
		_ = os.Remove(probe)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(probe)
		return err
	}
	return os.Remove(probe)
}
