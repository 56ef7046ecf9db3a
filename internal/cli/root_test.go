package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2026-01-01")
	t.Cleanup(func() { SetVersion("", "", "") })

	if version != "1.0.0" || commit != "abc123" || date != "2026-01-01" {
		t.Errorf("version info = %q %q %q", version, commit, date)
	}
}

// testConfig writes a config keeping all data under a temp dir.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "data:\n  dir: " + filepath.Join(dir, "data") + "\nlog:\n  level: error\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(nil)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

var idPattern = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

func TestCreateListExportImport(t *testing.T) {
	cfg := testConfig(t)

	out, err := execute(t, "--config", cfg, "create", "Flyer", "--unit", "px", "--width", "800", "--height", "600")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	m := idPattern.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("no id in %q", out)
	}
	id := m[1]

	out, err = execute(t, "--config", cfg, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "Flyer") || !strings.Contains(out, "800 × 600 px") {
		t.Errorf("list output = %q", out)
	}

	file := filepath.Join(t.TempDir(), "flyer.yaml")
	if _, err := execute(t, "--config", cfg, "export", id, file); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "name: Flyer") {
		t.Errorf("export file = %s", data)
	}

	// Import into a fresh store.
	other := testConfig(t)
	out, err = execute(t, "--config", other, "import", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, id) {
		t.Errorf("import output = %q", out)
	}
}

func TestCreate_RejectsUnknownUnit(t *testing.T) {
	if _, err := execute(t, "--config", testConfig(t), "create", "Flyer", "--unit", "cm"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExport_UnknownArtboard(t *testing.T) {
	file := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := execute(t, "--config", testConfig(t), "export", "nope", file); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Error("failed export should not leave a file behind")
	}
}

func TestSnapshots_Empty(t *testing.T) {
	out, err := execute(t, "--config", testConfig(t), "snapshots", "nope")
	if err != nil {
		t.Fatalf("snapshots: %v", err)
	}
	if !strings.Contains(out, "No snapshots") {
		t.Errorf("output = %q", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("storage: {driver: oracle}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", path, "list"); err == nil {
		t.Fatal("expected config error")
	}
}
