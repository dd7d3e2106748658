// Package manifest persists the mapping from document identifier to the
// artifacts of its last successful narration, so unchanged documents are
// skipped on subsequent runs.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Entry records the resolved artifacts for one document.
type Entry struct {
	ContentHash  string    `yaml:"content_hash"`
	JobID        string    `yaml:"job_id,omitempty"`
	AudioRef     string    `yaml:"audio_ref"`
	AlignmentRef string    `yaml:"alignment_ref,omitempty"`
	Duration     float64   `yaml:"duration,omitempty"`
	SyncedAt     time.Time `yaml:"synced_at"`
}

// fileFormat is the on-disk shape of the manifest.
type fileFormat struct {
	Documents map[string]Entry `yaml:"documents"`
}

// Manifest is the persistent document map. Safe for concurrent use within
// one process; cross-process locking is not attempted.
type Manifest struct {
	path string

	mu      sync.Mutex
	entries map[string]Entry
	dirty   bool
}

// Load reads the manifest at path. A missing file yields an empty manifest.
func Load(path string) (*Manifest, error) {
	m := &Manifest{
		path:    path,
		entries: make(map[string]Entry),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read manifest: %w", err)
	}

	var file fileFormat
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse manifest %s: %w", path, err)
	}
	if file.Documents != nil {
		m.entries = file.Documents
	}
	return m, nil
}

// Get returns the entry for a document identifier.
func (m *Manifest) Get(id string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	return entry, ok
}

// Put stores an entry for a document identifier.
func (m *Manifest) Put(id string, entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = entry
	m.dirty = true
}

// SetDuration records the audio duration for an already-tracked document.
// Durations come from the alignment track, which is only fetched at render
// time; sync stores entries without one. Unknown identifiers and unchanged
// values leave the manifest clean.
func (m *Manifest) SetDuration(id string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok || entry.Duration == duration {
		return
	}
	entry.Duration = duration
	m.entries[id] = entry
	m.dirty = true
}

// Len returns the number of tracked documents.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Each calls fn for every entry. The iteration order is unspecified.
func (m *Manifest) Each(fn func(id string, entry Entry)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.entries {
		fn(id, entry)
	}
}

// Save writes the manifest back to disk if it changed. The write goes
// through a temp file and rename so a crash cannot truncate the manifest.
func (m *Manifest) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}

	data, err := yaml.Marshal(fileFormat{Documents: m.entries})
	if err != nil {
		return fmt.Errorf("unable to encode manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("unable to create manifest directory: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("unable to write manifest: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("unable to replace manifest: %w", err)
	}

	m.dirty = false
	return nil
}

// HashContent digests narratable text for change detection. Any
// collision-resistant digest would do; sha256 keeps it boring.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
