package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kraitsura/segment_viewer/pkg/rowstate"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != rowstate.Combined || cfg.Notes.Driver != "sqlite3" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Debounce() != 250*time.Millisecond {
		t.Errorf("Debounce() = %v", cfg.Debounce())
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "mode: per-dimension\nwatch: true\nnotes:\n  driver: sqlite\n  path: notes.db\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != rowstate.PerDimension {
		t.Errorf("Mode = %v, want PerDimension", cfg.Mode)
	}
	if !cfg.Watch {
		t.Error("expected watch")
	}
	if cfg.Notes.Driver != "sqlite" || cfg.Notes.Path != "notes.db" {
		t.Errorf("Notes = %+v", cfg.Notes)
	}
	if cfg.DebounceMS != 250 {
		t.Errorf("unset debounce_ms should keep default, got %d", cfg.DebounceMS)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"bad mode":   "mode: sideways\n",
		"flat alias": "mode: flat\n",
		"bad driver": "notes:\n  driver: postgres\n",
		"negative":   "debounce_ms: -5\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Mode = rowstate.PerDimension
	cfg.Watch = true
	cfg.Notes.Author = "analyst"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded %+v, want %+v", loaded, cfg)
	}
}
