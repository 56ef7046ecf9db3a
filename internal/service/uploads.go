package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ─────────────────────────────────────────────────────────────
// Image uploads: files picked in the toolbar, stored per artboard
// ─────────────────────────────────────────────────────────────

var imageExts = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// ImageStore saves uploaded images under dir/<artboardID>/.
type ImageStore struct {
	dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{dir: dir}
}

func (s *ImageStore) Dir() string { return s.dir }

// Save writes blob and returns a file:// URL to it. Only image content is
// accepted.
func (s *ImageStore) Save(ctx context.Context, artboardID string, blob []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mime := http.DetectContentType(blob)
	ext, ok := imageExts[mime]
	if !ok {
		return "", fmt.Errorf("unsupported upload type %s", mime)
	}
	dir := filepath.Join(s.dir, artboardID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir for image: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+ext)
	if err := os.WriteFile(path, blob, 0644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// RemoveArtboard deletes every image stored for an artboard.
func (s *ImageStore) RemoveArtboard(artboardID string) error {
	return os.RemoveAll(filepath.Join(s.dir, artboardID))
}

// DecodeDataURL accepts "data:image/...;base64,..." or bare base64.
func DecodeDataURL(dataURL string) ([]byte, error) {
	encoded := dataURL
	if strings.HasPrefix(dataURL, "data:") {
		i := strings.Index(dataURL, ";base64,")
		if i < 0 {
			return nil, fmt.Errorf("data url is not base64 encoded")
		}
		encoded = dataURL[i+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// ReadDataURL returns the file at path (or file:// URL) as a data URL.
func ReadDataURL(path string) (string, error) {
	if u, err := url.Parse(path); err == nil && u.Scheme == "file" {
		path = filepath.FromSlash(u.Path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
