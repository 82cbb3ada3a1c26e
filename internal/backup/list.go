package backup

import (
	"os"
	"path/filepath"
	"sort"
	"time"
)

// SnapshotFile is one snapshot found at a destination.
type SnapshotFile struct {
	Kind      DestinationKind `json:"kind"`
	Path      string          `json:"path"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	SizeBytes int64           `json:"size_bytes"`
}

// ListSnapshots enumerates completed snapshots across the resolved
// destinations, newest first. Staged temp files are not snapshots yet and
// are skipped.
func ListSnapshots(res Resolution) ([]SnapshotFile, error) {
	var out []SnapshotFile
	for _, dest := range res.Destinations() {
		files, err := listDir(dest)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// LatestSnapshot returns the newest snapshot across destinations, or nil
// when none exist.
func LatestSnapshot(res Resolution) (*SnapshotFile, error) {
	files, err := ListSnapshots(res)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return &files[0], nil
}

func listDir(dest Destination) ([]SnapshotFile, error) {
	entries, err := os.ReadDir(dest.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []SnapshotFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) == tmpSuffix || name[0] == '.' {
			continue
		}
		createdAt, ok := parseSnapshotTime(name)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, SnapshotFile{
			Kind:      dest.Kind,
			Path:      filepath.Join(dest.Dir, name),
			Name:      name,
			CreatedAt: createdAt,
			SizeBytes: info.Size(),
		})
	}
	return out, nil
}
