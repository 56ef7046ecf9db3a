package app

import (
	"context"
	"path/filepath"
	"testing"

	"artboard/internal/config"
	"artboard/internal/domain"
)

func testBackend(t *testing.T) (*Backend, *config.Config) {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Data.Dir = t.TempDir()
	cfg.Autosave.Keep = 3
	b, err := OpenBackend(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("OpenBackend: %v", err)
	}
	t.Cleanup(func() { b.Close(context.Background()) })
	return b, cfg
}

func TestResolveArtboard_CreatesFromEditorDefaults(t *testing.T) {
	b, _ := testBackend(t)

	a, err := b.ResolveArtboard("")
	if err != nil {
		t.Fatalf("ResolveArtboard: %v", err)
	}
	if a.Name != "Untitled" || a.Unit != domain.UnitInch || a.Width != 8.5 || a.Height != 11 {
		t.Errorf("created = %+v", a)
	}

	again, err := b.ResolveArtboard("")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != a.ID {
		t.Errorf("second resolve created another artboard: %s != %s", again.ID, a.ID)
	}

	if _, err := b.ResolveArtboard("missing"); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestOpenSession_RegistersAutosave(t *testing.T) {
	b, cfg := testBackend(t)
	a, err := b.Service().CreateArtboard("Flyer", domain.UnitPixel, 800, 600)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sess, unregister, err := b.OpenSession(ctx, a.ID)
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	paths := b.Autosave().RunOnce(ctx)
	if len(paths) != 1 || filepath.Dir(paths[0]) != filepath.Join(cfg.SnapshotsDir(), a.ID) {
		t.Errorf("snapshots = %v", paths)
	}

	unregister()
	if got := b.Autosave().RunOnce(ctx); len(got) != 0 {
		t.Errorf("unregistered session still snapshotted: %v", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run: %v", err)
	}
	sess.Close()
}

func TestOpenBackend_UnknownDriver(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Data.Dir = t.TempDir()
	cfg.Storage.Driver = "oracle"
	cfg.Storage.DSN = "x"
	if _, err := OpenBackend(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected error")
	}
}
