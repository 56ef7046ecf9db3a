package service_test

import (
	"bytes"
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"artboard/internal/service"
)

// pngBytes is the PNG signature followed by an IHDR chunk header.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestImageStore_Save(t *testing.T) {
	store := service.NewImageStore(t.TempDir())

	raw, err := store.Save(context.Background(), "board", pngBytes)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "file" {
		t.Fatalf("url = %q (%v)", raw, err)
	}
	path := filepath.FromSlash(u.Path)
	if filepath.Dir(path) != filepath.Join(store.Dir(), "board") {
		t.Errorf("stored at %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(data, pngBytes) {
		t.Fatalf("stored content mismatch: %v", err)
	}

	if err := store.RemoveArtboard("board"); err != nil {
		t.Fatalf("RemoveArtboard: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("image survived RemoveArtboard: %v", err)
	}
}

func TestImageStore_RejectsNonImages(t *testing.T) {
	store := service.NewImageStore(t.TempDir())
	if _, err := store.Save(context.Background(), "board", []byte("just some text")); err == nil {
		t.Fatal("expected error for text upload")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Save(ctx, "board", pngBytes); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestDataURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pic.png")
	if err := os.WriteFile(path, pngBytes, 0644); err != nil {
		t.Fatal(err)
	}

	dataURL, err := service.ReadDataURL(path)
	if err != nil {
		t.Fatalf("ReadDataURL: %v", err)
	}
	if !strings.HasPrefix(dataURL, "data:image/png;base64,") {
		t.Fatalf("data url = %q", dataURL)
	}
	blob, err := service.DecodeDataURL(dataURL)
	if err != nil || !bytes.Equal(blob, pngBytes) {
		t.Fatalf("DecodeDataURL = %v, %v", blob, err)
	}

	if _, err := service.DecodeDataURL("data:image/png,raw"); err == nil {
		t.Error("expected error for non-base64 data url")
	}
}
