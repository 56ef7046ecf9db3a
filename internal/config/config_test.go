package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"artboard/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewDefaultConfig_IsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Editor.Unit != domain.UnitInch || cfg.Editor.Width != 8.5 {
		t.Errorf("editor defaults = %+v", cfg.Editor)
	}
	if !strings.HasSuffix(cfg.DatabasePath(), "artboard.db") {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath())
	}
}

func TestLoadFile_OverridesDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("ARTBOARD_TEST_DIR", "/tmp/boards")
	path := writeConfig(t, `
data:
  dir: ${ARTBOARD_TEST_DIR}
editor:
  unit: px
  width: 1200
  height: 800
autosave:
  schedule: "*/10 * * * *"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Data.Dir != "/tmp/boards" {
		t.Errorf("data.dir = %q", cfg.Data.Dir)
	}
	if cfg.Editor.Unit != domain.UnitPixel || cfg.Editor.Height != 800 {
		t.Errorf("editor = %+v", cfg.Editor)
	}
	// Untouched sections keep their defaults.
	if cfg.Storage.Driver != "sqlite" || cfg.MCP.Name != "artboard-mcp" || cfg.Autosave.Keep != 10 {
		t.Errorf("defaults lost: %+v %+v", cfg.Storage, cfg.MCP)
	}
	if cfg.SnapshotsDir() != filepath.Join("/tmp/boards", "snapshots") {
		t.Errorf("SnapshotsDir = %q", cfg.SnapshotsDir())
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "storage: {driver: oracle}"},
		{"postgres without dsn", "storage: {driver: postgres}"},
		{"mongodb without database", "storage: {driver: mongodb, dsn: 'mongodb://localhost'}"},
		{"bad unit", "editor: {unit: cm, width: 1, height: 1}"},
		{"bad schedule", "autosave: {schedule: 'whenever'}"},
		{"bad log level", "log: {level: chatty}"},
		{"not yaml", "editor: [unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFile(writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadFile_MissingExplicitFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
