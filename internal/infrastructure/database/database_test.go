package database

import (
	"context"
	"path/filepath"
	"testing"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Path:        filepath.Join(t.TempDir(), "bridge.db"),
		WALMode:     true,
		BusyTimeout: 5,
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	db, err := Open(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestOpen_CreatesMissingDirectory(t *testing.T) {
	cfg := Config{
		Path:        filepath.Join(t.TempDir(), "nested", "dir", "bridge.db"),
		BusyTimeout: 1,
	}

	db, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if db.Path() != cfg.Path {
		t.Errorf("Path() = %q, want %q", db.Path(), cfg.Path)
	}
}

func TestClose_Idempotent(t *testing.T) {
	db, err := Open(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"20260301_000000_initial_schema.up.sql", "20260301_000000", true, true},
		{"20260301_000000_initial_schema.down.sql", "20260301_000000", false, true},
		{"README.md", "", false, false},
		{"notes.sql", "", false, false},
		{"x.up.sql", "", false, false},
	}

	for _, tt := range tests {
		version, isUp, ok := parseMigrationFilename(tt.name)
		if ok != tt.wantOK {
			t.Errorf("parseMigrationFilename(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if version != tt.wantVersion || isUp != tt.wantUp {
			t.Errorf("parseMigrationFilename(%q) = (%q, %v), want (%q, %v)",
				tt.name, version, isUp, tt.wantVersion, tt.wantUp)
		}
	}
}
