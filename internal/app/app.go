package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
	"golang.org/x/sync/errgroup"

	"artboard/internal/config"
	"artboard/internal/domain"
	"artboard/internal/editor"
	mcpserver "artboard/internal/mcp"
	"artboard/internal/service"
)

// ErrNoArtboard is returned by editor bindings before an artboard is open.
var ErrNoArtboard = errors.New("no artboard open")

// wailsEmitter relays service events to the frontend.
type wailsEmitter struct{}

func (wailsEmitter) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx     context.Context
	cfg     *config.Config
	version string
	logger  *log.Logger
	backend *Backend

	mu         sync.Mutex
	session    *service.Session
	mcp        *mcpserver.Server
	unregister func()
	stop       context.CancelFunc
	done       chan error
}

// New creates a new App.
func New(cfg *config.Config, version string, logger *log.Logger) *App {
	if logger == nil {
		logger = log.Default()
	}
	return &App{cfg: cfg, version: version, logger: logger.WithPrefix("app")}
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	backend, err := OpenBackend(ctx, a.cfg, wailsEmitter{}, a.logger)
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open storage: %v", err)
		return
	}
	a.backend = backend

	if err := backend.StartAutosave(ctx); err != nil {
		a.logger.Error("autosave disabled", "err", err)
	}

	board, err := backend.ResolveArtboard("")
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to load artboard: %v", err)
		return
	}
	if err := a.openSession(board.ID); err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to open artboard: %v", err)
	}
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeSessionLocked()
	if a.backend != nil {
		if err := a.backend.Close(ctx); err != nil {
			a.logger.Error("close storage", "err", err)
		}
	}
}

// openSession replaces the open artboard. The session loop and, when an
// address is configured, the MCP HTTP transport run until the next switch.
func (a *App) openSession(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closeSessionLocked()

	sess, unregister, err := a.backend.OpenSession(a.ctx, id)
	if err != nil {
		return err
	}
	runCtx, stop := context.WithCancel(a.ctx)
	g, gctx := errgroup.WithContext(runCtx)

	srv := mcpserver.New(gctx, mcpserver.Deps{
		Session:     sess,
		Autosave:    a.backend.Autosave(),
		Emitter:     wailsEmitter{},
		Logger:      a.logger,
		Name:        a.cfg.MCP.Name,
		Version:     a.version,
		AutoApprove: a.cfg.MCP.AutoApprove,
	})
	g.Go(func() error { return sess.Run(gctx) })
	if addr := a.cfg.MCP.Addr; addr != "" {
		g.Go(func() error {
			if err := srv.ServeHTTP(gctx, addr); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("mcp http", "err", err)
			}
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	a.session, a.mcp, a.unregister, a.stop, a.done = sess, srv, unregister, stop, done
	return nil
}

func (a *App) closeSessionLocked() {
	if a.session == nil {
		return
	}
	a.stop()
	if err := <-a.done; err != nil {
		a.logger.Error("session stopped", "err", err)
	}
	a.unregister()
	if err := a.session.Close(); err != nil {
		a.logger.Error("close session", "err", err)
	}
	a.session, a.mcp, a.unregister, a.stop, a.done = nil, nil, nil, nil, nil
}

func (a *App) current() (*service.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, ErrNoArtboard
	}
	return a.session, nil
}

// do runs fn on the open artboard's editor loop.
func (a *App) do(fn func(*editor.Surface) error) error {
	sess, err := a.current()
	if err != nil {
		return err
	}
	return sess.Do(a.ctx, fn)
}

// ============================================================
// Artboards
// ============================================================

func (a *App) ListArtboards() ([]domain.Artboard, error) {
	return a.backend.Service().ListArtboards()
}

func (a *App) CreateArtboard(name, unit string, width, height float64) (*domain.Artboard, error) {
	u := domain.Unit(unit)
	if u != domain.UnitInch && u != domain.UnitPixel {
		return nil, fmt.Errorf("unit must be %q or %q", domain.UnitInch, domain.UnitPixel)
	}
	return a.backend.Service().CreateArtboard(name, u, width, height)
}

// OpenArtboard switches the editor to artboard id.
func (a *App) OpenArtboard(id string) (*EditorState, error) {
	if err := a.openSession(id); err != nil {
		return nil, err
	}
	return a.State()
}

func (a *App) RenameArtboard(id, name string) error {
	return a.backend.Service().RenameArtboard(id, name)
}

// DeleteArtboard deletes a stored artboard other than the open one.
func (a *App) DeleteArtboard(id string) error {
	if sess, err := a.current(); err == nil && sess.Artboard().ID == id {
		return fmt.Errorf("cannot delete the open artboard")
	}
	if err := a.backend.Service().DeleteArtboard(id); err != nil {
		return err
	}
	return a.backend.Images().RemoveArtboard(id)
}

// State returns the open artboard with its blocks and selection.
func (a *App) State() (*EditorState, error) {
	sess, err := a.current()
	if err != nil {
		return nil, err
	}
	var st *EditorState
	err = sess.Do(a.ctx, func(sf *editor.Surface) error {
		st = editorState(sess.Artboard(), sf)
		return nil
	})
	return st, err
}

// ExportArtboard writes the open artboard to a YAML file picked by the user.
func (a *App) ExportArtboard() (string, error) {
	sess, err := a.current()
	if err != nil {
		return "", err
	}
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export Artboard",
		DefaultFilename: sess.Artboard().Name + ".yaml",
		Filters:         []wailsRuntime.FileFilter{{DisplayName: "YAML", Pattern: "*.yaml;*.yml"}},
	})
	if err != nil || path == "" {
		return "", err
	}
	state, err := sess.Snapshot(a.ctx)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()
	if err := service.ExportYAML(f, state); err != nil {
		return "", err
	}
	return path, nil
}

// ImportArtboard restores an exported YAML file and opens it.
func (a *App) ImportArtboard() (*EditorState, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:   "Import Artboard",
		Filters: []wailsRuntime.FileFilter{{DisplayName: "YAML", Pattern: "*.yaml;*.yml"}},
	})
	if err != nil || path == "" {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	board, err := a.backend.Service().Import(a.ctx, f)
	if err != nil {
		return nil, err
	}
	return a.OpenArtboard(board.ID)
}

// SaveSnapshot writes an autosave snapshot of the open artboard now.
func (a *App) SaveSnapshot() (string, error) {
	sess, err := a.current()
	if err != nil {
		return "", err
	}
	return a.backend.Autosave().Snapshot(a.ctx, sess.Artboard().ID)
}

// ============================================================
// MCP approvals
// ============================================================

func (a *App) ApproveAction(actionID string) {
	a.mu.Lock()
	srv := a.mcp
	a.mu.Unlock()
	if srv != nil {
		srv.Approve(actionID)
	}
}

func (a *App) RejectAction(actionID string) {
	a.mu.Lock()
	srv := a.mcp
	a.mu.Unlock()
	if srv != nil {
		srv.Reject(actionID)
	}
}
