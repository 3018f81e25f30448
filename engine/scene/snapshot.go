package scene

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// SnapshotVersion is the scene file format written by WriteSnapshot.
const SnapshotVersion = 1

// Snapshot is the persistable form of a Scene. Objects are stored parents first, so a snapshot can
// be replayed in order.
type Snapshot struct {
	Version  int              `yaml:"version"`
	Name     string           `yaml:"name"`
	Selected ID               `yaml:"selected,omitempty"`
	Objects  []ObjectSnapshot `yaml:"objects"`
}

// ObjectSnapshot is one object of a Snapshot. IDs are only meaningful within the snapshot.
type ObjectSnapshot struct {
	ID         ID `yaml:"id"`
	Parent     ID `yaml:"parent,omitempty"`
	Properties `yaml:",inline"`
}

func (s *scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Version:  SnapshotVersion,
		Name:     s.name,
		Selected: s.selected,
		Objects:  make([]ObjectSnapshot, 0, len(s.objects)),
	}
	s.walk(func(o *sceneObject, _ common.Mat4) bool {
		snap.Objects = append(snap.Objects, ObjectSnapshot{
			ID:         o.ID(),
			Parent:     o.Parent(),
			Properties: o.Properties(),
		})
		return true
	})
	return snap
}

// WriteSnapshot encodes snap as YAML.
//
// Parameters:
//   - w: the destination
//   - snap: the snapshot
//
// Returns:
//   - error: error if encoding fails
func WriteSnapshot(w io.Writer, snap Snapshot) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode scene: %w", err)
	}
	return enc.Close()
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot and checks that parents precede children.
//
// Parameters:
//   - r: the source
//
// Returns:
//   - Snapshot: the decoded snapshot
//   - error: error if decoding fails or the version or hierarchy is invalid
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode scene: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported scene version %d", snap.Version)
	}
	seen := make(map[ID]bool, len(snap.Objects))
	for _, o := range snap.Objects {
		if o.ID == NoID || seen[o.ID] {
			return Snapshot{}, fmt.Errorf("invalid or duplicate object id %d", o.ID)
		}
		if o.Parent != NoID && !seen[o.Parent] {
			return Snapshot{}, fmt.Errorf("object %d refers to parent %d before it is defined", o.ID, o.Parent)
		}
		seen[o.ID] = true
	}
	return snap, nil
}

// SaveSnapshot writes snap to path, expanding a leading "~" and creating parent directories.
//
// Parameters:
//   - path: the file path
//   - snap: the snapshot
//
// Returns:
//   - error: error if the file cannot be written
func SaveSnapshot(path string, snap Snapshot) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return err
	}
	f, err := os.Create(expanded)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadSnapshot reads a snapshot from path, expanding a leading "~".
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Snapshot: the snapshot
//   - error: error if the file cannot be read or decoded
func LoadSnapshot(path string) (Snapshot, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return Snapshot{}, err
	}
	f, err := os.Open(expanded)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	return ReadSnapshot(f)
}
