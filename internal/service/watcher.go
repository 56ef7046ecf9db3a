package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ContentHandler is called with the new content of a linked file.
type ContentHandler func(reference, content string)

// ContentWatcher keeps text blocks in sync with HTML files on disk. When a
// linked file is saved, its content is handed to the handler.
type ContentWatcher struct {
	watcher  *fsnotify.Watcher
	onChange ContentHandler
	logger   *log.Logger

	mu       sync.RWMutex
	watching map[string]string // abs path -> block reference
	dirs     map[string]int
}

func NewContentWatcher(onChange ContentHandler, logger *log.Logger) (*ContentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	w := &ContentWatcher{
		watcher:  watcher,
		onChange: onChange,
		logger:   logger.WithPrefix("watch"),
		watching: make(map[string]string),
		dirs:     make(map[string]int),
	}
	go w.watchLoop()
	return w, nil
}

// Watch links reference to the file at path and returns its current
// content. A block is linked to at most one file.
func (w *ContentWatcher) Watch(reference, path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("read linked file: %w", err)
	}

	w.Unwatch(reference)

	// fsnotify watches directories; editors often replace files on save
	dir := filepath.Dir(absPath)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return "", fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.watching[absPath] = reference
	return strings.TrimSpace(string(content)), nil
}

// Unwatch stops following the file linked to reference.
func (w *ContentWatcher) Unwatch(reference string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, ref := range w.watching {
		if ref != reference {
			continue
		}
		delete(w.watching, path)
		dir := filepath.Dir(path)
		if w.dirs[dir]--; w.dirs[dir] <= 0 {
			delete(w.dirs, dir)
			w.watcher.Remove(dir)
		}
		return
	}
}

// Linked returns the file linked to reference.
func (w *ContentWatcher) Linked(reference string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for path, ref := range w.watching {
		if ref == reference {
			return path, true
		}
	}
	return "", false
}

func (w *ContentWatcher) Close() error {
	return w.watcher.Close()
}

func (w *ContentWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			w.mu.RLock()
			ref, watched := w.watching[absPath]
			w.mu.RUnlock()
			if !watched {
				continue
			}
			content, err := os.ReadFile(absPath)
			if err != nil {
				w.logger.Warn("read linked file", "path", absPath, "err", err)
				continue
			}
			if w.onChange != nil {
				w.onChange(ref, strings.TrimSpace(string(content)))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "err", err)
		}
	}
}
