package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Output != "test_bluntify_final.gfa" {
		t.Errorf("Output = %q, want test_bluntify_final.gfa", cfg.Output)
	}
	if cfg.Provenance != "test_bluntify_provenance.txt" {
		t.Errorf("Provenance = %q, want test_bluntify_provenance.txt", cfg.Provenance)
	}
	if cfg.Threads != 0 {
		t.Errorf("Threads = %d, want 0", cfg.Threads)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bluntify.toml")
	content := "threads = 4\noutput = \"out.gfa\"\nexact_cover_limit = 1024\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threads != 4 {
		t.Errorf("Threads = %d, want 4", cfg.Threads)
	}
	if cfg.Output != "out.gfa" {
		t.Errorf("Output = %q, want out.gfa", cfg.Output)
	}
	// Unset keys keep their defaults.
	if cfg.Provenance != "test_bluntify_provenance.txt" {
		t.Errorf("Provenance = %q, want default", cfg.Provenance)
	}
	if cfg.ExactCoverLimit != 1024 {
		t.Errorf("ExactCoverLimit = %d, want 1024", cfg.ExactCoverLimit)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load(missing) = nil error")
	}
	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("threads = \"not a number\""), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("Load(bad) = nil error")
	}
}
