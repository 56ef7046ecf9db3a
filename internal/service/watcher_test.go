package service_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"artboard/internal/service"
)

func TestContentWatcher_FollowsWrites(t *testing.T) {
	var (
		mu  sync.Mutex
		got = map[string]string{}
	)
	w, err := service.NewContentWatcher(func(ref, content string) {
		mu.Lock()
		got[ref] = content
		mu.Unlock()
	}, nil)
	if err != nil {
		t.Fatalf("NewContentWatcher: %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "note.html")
	if err := os.WriteFile(path, []byte("  <p>one</p>\n"), 0644); err != nil {
		t.Fatal(err)
	}
	initial, err := w.Watch("b1", path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if initial != "<p>one</p>" {
		t.Errorf("initial = %q", initial)
	}
	if linked, ok := w.Linked("b1"); !ok || filepath.Base(linked) != "note.html" {
		t.Errorf("Linked = %q, %v", linked, ok)
	}

	if err := os.WriteFile(path, []byte("<p>two</p>"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "write event", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got["b1"] == "<p>two</p>"
	})

	w.Unwatch("b1")
	if _, ok := w.Linked("b1"); ok {
		t.Error("still linked after Unwatch")
	}
}

func TestContentWatcher_MissingFile(t *testing.T) {
	w, err := service.NewContentWatcher(nil, nil)
	if err != nil {
		t.Fatalf("NewContentWatcher: %v", err)
	}
	defer w.Close()
	if _, err := w.Watch("b1", filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
