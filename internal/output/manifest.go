package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
	"github.com/JonMunkholm/fedora-migrate/internal/drupal"
)

// ManifestFile is the default manifest name inside the output directory.
const ManifestFile = "migrate_manifest.json"

// Manifest collects every migrate map entry of a run as JSON, for
// reconciling source and destination state without reading the database.
type Manifest struct {
	path string
	now  func() time.Time

	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Entities   []ManifestEntity `json:"entities"`
}

// ManifestEntity is the migrate map of one entity type.
type ManifestEntity struct {
	Type     core.EntityType `json:"type"`
	Table    string          `json:"table"`
	Read     int             `json:"read"`
	Mappings []core.MapEntry `json:"mappings"`
}

// NewManifest creates a manifest that Save writes to path.
func NewManifest(path, runID string) *Manifest {
	m := &Manifest{path: path, now: time.Now, RunID: runID}
	m.StartedAt = m.now().UTC()
	return m
}

// Add records a batch's map entries.
func (m *Manifest) Add(b *core.Batch) {
	m.Entities = append(m.Entities, ManifestEntity{
		Type:     b.Definition.Type,
		Table:    drupal.MapTableName(b.Definition.Type),
		Read:     b.Read,
		Mappings: b.Map,
	})
}

// Save writes the manifest atomically.
func (m *Manifest) Save() error {
	m.FinishedAt = m.now().UTC()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".manifest-*")
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by Save.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	m.path = path
	return &m, nil
}
