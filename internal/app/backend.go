package app

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"artboard/internal/config"
	"artboard/internal/domain"
	"artboard/internal/service"
	"artboard/internal/storage"
)

// Backend is the storage and services shared by the desktop app, the
// standalone MCP server and the CLI commands.
type Backend struct {
	cfg      *config.Config
	svc      *service.ArtboardService
	images   *service.ImageStore
	autosave *service.Autosave
	logger   *log.Logger
	closer   io.Closer
}

// OpenBackend connects to the configured store and builds the services.
func OpenBackend(ctx context.Context, cfg *config.Config, emitter service.EventEmitter, logger *log.Logger) (*Backend, error) {
	if logger == nil {
		logger = log.Default()
	}
	artboards, blocks, closer, err := openStores(ctx, cfg.Storage, cfg.DatabasePath())
	if err != nil {
		return nil, err
	}
	logger.Debug("storage ready", "driver", cfg.Storage.Driver)
	autosave := service.NewAutosave(cfg.SnapshotsDir(), emitter, logger)
	autosave.Keep = cfg.Autosave.Keep
	return &Backend{
		cfg:      cfg,
		svc:      service.NewArtboardService(artboards, blocks, emitter, logger),
		images:   service.NewImageStore(cfg.ImagesDir()),
		autosave: autosave,
		logger:   logger,
		closer:   closer,
	}, nil
}

func openStores(ctx context.Context, sc config.StorageConfig, sqlitePath string) (domain.ArtboardStore, domain.BlockStore, io.Closer, error) {
	switch sc.Driver {
	case storage.DriverMongoDB:
		m, err := storage.NewMongoStore(ctx, sc.DSN, sc.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		return m, m, m, nil
	case storage.DriverSQLite, "":
		db, err := storage.New(sqlitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		return storage.NewArtboardStore(db), storage.NewBlockStore(db), db, nil
	default:
		db, err := storage.Open(sc.Driver, sc.DSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		return storage.NewArtboardStore(db), storage.NewBlockStore(db), db, nil
	}
}

func (b *Backend) Service() *service.ArtboardService { return b.svc }
func (b *Backend) Autosave() *service.Autosave       { return b.autosave }
func (b *Backend) Images() *service.ImageStore       { return b.images }

// ResolveArtboard returns artboard id, or the first stored artboard when id
// is empty. An empty store gets a new artboard sized from the editor config.
func (b *Backend) ResolveArtboard(id string) (*domain.Artboard, error) {
	if id != "" {
		return b.svc.GetArtboard(id)
	}
	list, err := b.svc.ListArtboards()
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return &list[0], nil
	}
	e := b.cfg.Editor
	return b.svc.CreateArtboard("Untitled", e.Unit, e.Width, e.Height)
}

// OpenSession opens artboard id with uploads going to the image store and
// registers it for autosave.
func (b *Backend) OpenSession(ctx context.Context, id string) (*service.Session, func(), error) {
	sess, err := b.svc.Open(ctx, id, service.WithImages(b.images))
	if err != nil {
		return nil, nil, err
	}
	unregister := b.autosave.Register(id, sess.Snapshot)
	return sess, unregister, nil
}

// StartAutosave schedules snapshots when a schedule is configured.
func (b *Backend) StartAutosave(ctx context.Context) error {
	if b.cfg.Autosave.Schedule == "" {
		return nil
	}
	return b.autosave.Start(ctx, b.cfg.Autosave.Schedule)
}

// Close stops autosave and releases the store.
func (b *Backend) Close(ctx context.Context) error {
	b.autosave.Stop(ctx)
	return b.closer.Close()
}
