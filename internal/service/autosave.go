package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"artboard/internal/domain"
)

// ErrSnapshotRunning is returned when a snapshot of the same artboard is
// still being written.
var ErrSnapshotRunning = errors.New("autosave: snapshot already running")

// SnapshotFunc captures the current state of an open artboard.
type SnapshotFunc func(ctx context.Context) (*domain.ArtboardState, error)

// ─────────────────────────────────────────────────────────────
// Autosave: scheduled YAML snapshots of open artboards
// ─────────────────────────────────────────────────────────────

// Autosave writes a YAML snapshot of every registered artboard on a cron
// schedule, to dir/<artboardID>/<timestamp>.yaml. Only the newest Keep
// snapshots per artboard are retained.
type Autosave struct {
	dir     string
	Keep    int
	emitter EventEmitter
	logger  *log.Logger

	mu      sync.Mutex
	sources map[string]SnapshotFunc
	sched   *cron.Cron
	guard   runningGuard
}

func NewAutosave(dir string, emitter EventEmitter, logger *log.Logger) *Autosave {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Autosave{
		dir:     dir,
		Keep:    10,
		emitter: emitter,
		logger:  logger.WithPrefix("autosave"),
		sources: map[string]SnapshotFunc{},
	}
}

// Register adds an artboard to the schedule. The returned func removes it.
func (a *Autosave) Register(artboardID string, fn SnapshotFunc) func() {
	a.mu.Lock()
	a.sources[artboardID] = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.sources, artboardID)
		a.mu.Unlock()
	}
}

// Start schedules snapshots with a cron expression such as "@every 5m".
func (a *Autosave) Start(ctx context.Context, schedule string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sched != nil {
		return fmt.Errorf("autosave already started")
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { a.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid autosave schedule %q: %w", schedule, err)
	}
	c.Start()
	a.sched = c
	a.logger.Info("scheduled", "schedule", schedule, "dir", a.dir)
	return nil
}

// Stop halts the schedule and waits for running snapshots.
func (a *Autosave) Stop(ctx context.Context) {
	a.mu.Lock()
	c := a.sched
	a.sched = nil
	a.mu.Unlock()
	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
		}
	}
	if err := a.guard.wait(ctx); err != nil {
		a.logger.Warn("snapshots still running at stop", "err", err)
	}
}

// RunOnce snapshots every registered artboard and returns the written files.
func (a *Autosave) RunOnce(ctx context.Context) []string {
	a.mu.Lock()
	ids := make([]string, 0, len(a.sources))
	for id := range a.sources {
		ids = append(ids, id)
	}
	a.mu.Unlock()
	slices.Sort(ids)

	var paths []string
	for _, id := range ids {
		path, err := a.Snapshot(ctx, id)
		if err != nil {
			a.logger.Warn("snapshot failed", "artboard", id, "err", err)
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// Snapshot writes one snapshot of artboardID now.
func (a *Autosave) Snapshot(ctx context.Context, artboardID string) (string, error) {
	a.mu.Lock()
	fn, ok := a.sources[artboardID]
	a.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("artboard %s is not registered", artboardID)
	}
	release, ok := a.guard.acquire(artboardID)
	if !ok {
		return "", ErrSnapshotRunning
	}
	defer release()

	state, err := fn(ctx)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	dir := filepath.Join(a.dir, artboardID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(dir, time.Now().UTC().Format("20060102T150405.000000000")+".yaml")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	if err := ExportYAML(f, state); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	a.prune(dir)
	a.logger.Debug("snapshot written", "artboard", artboardID, "path", path)
	a.emitter.Emit(ctx, EventSnapshot, path)
	return path, nil
}

// Snapshots lists the snapshot files of an artboard, oldest first.
func (a *Autosave) Snapshots(artboardID string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(a.dir, artboardID, "*.yaml"))
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}

func (a *Autosave) prune(dir string) {
	if a.Keep <= 0 {
		return
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil || len(paths) <= a.Keep {
		return
	}
	slices.Sort(paths)
	for _, p := range paths[:len(paths)-a.Keep] {
		if err := os.Remove(p); err != nil {
			a.logger.Warn("prune snapshot", "path", p, "err", err)
		}
	}
}
