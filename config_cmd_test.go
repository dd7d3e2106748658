package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnsureConfigFileCreatesDefault checks that a missing config file is
// created, directories included, with the commented defaults.
func TestEnsureConfigFileCreatesDefault(t *testing.T) {
	orig := configFile
	t.Cleanup(func() { configFile = orig })

	configFile = filepath.Join(t.TempDir(), "nested", "speakdown.yml")
	if err := ensureConfigFile(); err != nil {
		t.Fatalf("ensureConfigFile failed: %v", err)
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if string(data) != defaultConfig {
		t.Error("config file does not carry the defaults")
	}
}

// TestEnsureConfigFileKeepsExisting checks that an existing file is left
// untouched.
func TestEnsureConfigFileKeepsExisting(t *testing.T) {
	orig := configFile
	t.Cleanup(func() { configFile = orig })

	configFile = filepath.Join(t.TempDir(), "speakdown.yml")
	if err := os.WriteFile(configFile, []byte("voice: custom\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureConfigFile(); err != nil {
		t.Fatalf("ensureConfigFile failed: %v", err)
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "voice: custom\n" {
		t.Errorf("existing config was overwritten: %q", data)
	}
}

// TestEnsureConfigFileRejectsUnknownExtension checks the yaml-only guard.
func TestEnsureConfigFileRejectsUnknownExtension(t *testing.T) {
	orig := configFile
	t.Cleanup(func() { configFile = orig })

	configFile = filepath.Join(t.TempDir(), "speakdown.toml")
	err := ensureConfigFile()
	if err == nil || !strings.Contains(err.Error(), "not a supported configuration type") {
		t.Fatalf("expected unsupported-type error, got %v", err)
	}
}
