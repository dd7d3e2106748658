package manifest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/speakdown/internal/manifest"
)

// TestManifestRoundTrip checks that entries survive a save and reload.
func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yml")

	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("fresh manifest has %d entries", m.Len())
	}

	entry := manifest.Entry{
		ContentHash:  manifest.HashContent([]byte("hello world")),
		JobID:        "job-42",
		AudioRef:     "audio/42.mp3",
		AlignmentRef: "align/42.json",
		Duration:     12.5,
		SyncedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	m.Put("docs/intro.md", entry)

	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	got, ok := reloaded.Get("docs/intro.md")
	if !ok {
		t.Fatal("entry missing after reload")
	}
	if got != entry {
		t.Errorf("entry mismatch:\ngot  %+v\nwant %+v", got, entry)
	}
}

// TestManifestSaveSkipsClean checks that Save without changes does not write.
func TestManifestSaveSkipsClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yml")

	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("clean manifest should not be written")
	}
}

// TestManifestSetDuration checks the render-time duration backfill: the value
// persists across a reload, and unknown identifiers or unchanged values never
// dirty the manifest.
func TestManifestSetDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yml")

	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	m.Put("docs/intro.md", manifest.Entry{
		ContentHash: manifest.HashContent([]byte("hello")),
		AudioRef:    "audio/1.mp3",
	})
	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	m.SetDuration("docs/intro.md", 42.5)
	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	entry, ok := reloaded.Get("docs/intro.md")
	if !ok {
		t.Fatal("entry missing after reload")
	}
	if entry.Duration != 42.5 {
		t.Errorf("duration = %v, want 42.5", entry.Duration)
	}

	// Unknown identifiers leave a fresh manifest clean.
	other := filepath.Join(t.TempDir(), "manifest.yml")
	fresh, err := manifest.Load(other)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	fresh.SetDuration("docs/missing.md", 1)
	if err := fresh.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(other); !os.IsNotExist(err) {
		t.Error("manifest should not be written for an unknown identifier")
	}
}

// TestManifestCorrupt checks that an unreadable manifest surfaces an error
// instead of silently starting empty.
func TestManifestCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := manifest.Load(path); err == nil {
		t.Fatal("expected error for corrupt manifest")
	}
}

// TestHashContent checks digest stability and sensitivity.
func TestHashContent(t *testing.T) {
	a := manifest.HashContent([]byte("narration text"))
	b := manifest.HashContent([]byte("narration text"))
	c := manifest.HashContent([]byte("narration text."))

	if a != b {
		t.Error("hash is not stable")
	}
	if a == c {
		t.Error("hash does not distinguish content")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
