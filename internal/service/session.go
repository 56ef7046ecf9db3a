package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"artboard/internal/domain"
	"artboard/internal/editor"
	"artboard/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Session: one open artboard: editor surface + persistence
// ─────────────────────────────────────────────────────────────

const defaultFlushDelay = 500 * time.Millisecond

type sessionOptions struct {
	images     *ImageStore
	flushDelay time.Duration
	editorOpts []editor.Option
}

type SessionOption func(*sessionOptions)

// WithImages enables image uploads into store.
func WithImages(store *ImageStore) SessionOption {
	return func(o *sessionOptions) { o.images = store }
}

// WithFlushDelay sets how long block changes are batched before they are
// written to the store.
func WithFlushDelay(d time.Duration) SessionOption {
	return func(o *sessionOptions) { o.flushDelay = d }
}

// WithEditorOptions passes options through to the editor surface.
func WithEditorOptions(opts ...editor.Option) SessionOption {
	return func(o *sessionOptions) { o.editorOpts = append(o.editorOpts, opts...) }
}

// Session is an artboard opened for editing. Its editor runs on its own
// loop; every method except Run, Do, Snapshot and Close must be called on
// that loop.
type Session struct {
	ctx      context.Context
	svc      *ArtboardService
	artboard domain.Artboard
	loop     *editor.Loop
	surface  *editor.Surface
	images   *ImageStore
	watcher  *ContentWatcher
	emitter  EventEmitter
	logger   *log.Logger

	flushDelay time.Duration
	timer      *time.Timer
	dirty      map[string]bool
	persisted  map[string]int // reference -> stored layer
}

// Open loads artboard id into a new editing session.
func (s *ArtboardService) Open(ctx context.Context, id string, opts ...SessionOption) (*Session, error) {
	o := sessionOptions{flushDelay: defaultFlushDelay}
	for _, opt := range opts {
		opt(&o)
	}
	state, err := s.GetState(id)
	if err != nil {
		return nil, fmt.Errorf("open artboard: %w", err)
	}

	sess := &Session{
		ctx:        ctx,
		svc:        s,
		artboard:   state.Artboard,
		loop:       editor.NewLoop(),
		images:     o.images,
		emitter:    s.emitter,
		logger:     s.logger.With("artboard", id),
		flushDelay: o.flushDelay,
		dirty:      map[string]bool{},
		persisted:  map[string]int{},
	}
	for _, b := range state.Blocks {
		sess.persisted[b.Reference] = b.Layer()
	}

	cfg := editor.Config{
		Unit:               state.Artboard.Unit,
		Width:              state.Artboard.Width,
		Height:             state.Artboard.Height,
		Blocks:             state.Blocks,
		BlockChanged:       sess.blockChanged,
		BlockAdded:         sess.blockAdded,
		BlocksRemoved:      sess.blocksRemoved,
		BlocksLevelChanged: sess.levelChanged,
		BlocksSelected:     sess.selected,
	}
	if o.images != nil {
		cfg.FileUpload = sess.upload
	}
	editorOpts := append([]editor.Option{editor.WithLoop(sess.loop), editor.WithLogger(sess.logger)}, o.editorOpts...)
	surface, err := editor.NewSurface(cfg, editorOpts...)
	if err != nil {
		sess.loop.Close()
		return nil, fmt.Errorf("open artboard %s: %w", id, err)
	}
	sess.surface = surface
	sess.logger.Info("opened", "blocks", len(state.Blocks))
	return sess, nil
}

func (s *Session) Artboard() domain.Artboard { return s.artboard }
func (s *Session) Surface() *editor.Surface  { return s.surface }
func (s *Session) Loop() *editor.Loop        { return s.loop }

// Run drives the session's loop until ctx is done, then closes the loop
// and writes pending changes. Do and Snapshot fail with editor.ErrClosed
// once Run has returned.
func (s *Session) Run(ctx context.Context) error {
	err := s.loop.Run(ctx)
	s.loop.Drain()
	s.loop.Close()
	if ferr := s.Flush(); ferr != nil {
		s.logger.Error("final flush", "err", ferr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Do runs fn on the session's loop and waits for it.
func (s *Session) Do(ctx context.Context, fn func(*editor.Surface) error) error {
	return s.loop.Do(ctx, func() error { return fn(s.surface) })
}

// State returns a deep copy of the artboard and its blocks, bottom layer first.
func (s *Session) State() *domain.ArtboardState {
	blocks := s.surface.Blocks()
	out := make([]*domain.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Clone())
	}
	return &domain.ArtboardState{Artboard: s.artboard, Blocks: out}
}

// Snapshot captures State from another goroutine.
func (s *Session) Snapshot(ctx context.Context) (*domain.ArtboardState, error) {
	var state *domain.ArtboardState
	err := s.loop.Do(ctx, func() error {
		state = s.State()
		return nil
	})
	return state, err
}

// LinkContent makes the block's content follow the HTML file at path.
func (s *Session) LinkContent(reference, path string) error {
	ctl, ok := s.surface.Controller(reference)
	if !ok {
		return fmt.Errorf("block %s: %w", reference, storage.ErrNotFound)
	}
	if s.watcher == nil {
		w, err := NewContentWatcher(s.contentChanged, s.logger)
		if err != nil {
			return err
		}
		s.watcher = w
	}
	content, err := s.watcher.Watch(reference, path)
	if err != nil {
		return err
	}
	ctl.SetContent(content)
	return nil
}

// contentChanged runs on the watcher goroutine.
func (s *Session) contentChanged(reference, content string) {
	s.loop.Post(func() {
		if ctl, ok := s.surface.Controller(reference); ok {
			ctl.SetContent(content)
		}
	})
}

// ─── Editor callbacks ────────────────────────────────────────

func (s *Session) blockChanged(b *domain.Block) {
	s.dirty[b.Reference] = true
	s.scheduleFlush()
	s.emitter.Emit(s.ctx, EventBlockChanged, b.Clone())
}

func (s *Session) blockAdded(b *domain.Block) {
	s.dirty[b.Reference] = true
	s.scheduleFlush()
	s.emitter.Emit(s.ctx, EventBlockAdded, b.Clone())
}

func (s *Session) blocksRemoved(blocks []*domain.Block) {
	refs := make([]string, 0, len(blocks))
	for _, b := range blocks {
		refs = append(refs, b.Reference)
		delete(s.dirty, b.Reference)
		if s.watcher != nil {
			s.watcher.Unwatch(b.Reference)
		}
		if _, ok := s.persisted[b.Reference]; !ok {
			continue
		}
		if err := s.svc.blocks.DeleteBlock(s.artboard.ID, b.Reference); err != nil {
			s.logger.Error("delete block", "block", b.Reference, "err", err)
			continue
		}
		delete(s.persisted, b.Reference)
	}
	s.emitter.Emit(s.ctx, EventBlocksRemoved, refs)
}

func (s *Session) levelChanged(sorted []*domain.Block) {
	s.scheduleFlush()
	s.emitter.Emit(s.ctx, EventBlocksReorder, references(sorted))
}

func (s *Session) selected(blocks []*domain.Block) {
	s.emitter.Emit(s.ctx, EventBlocksSelected, references(blocks))
}

func (s *Session) upload(ctx context.Context, blob []byte) (string, error) {
	return s.images.Save(ctx, s.artboard.ID, blob)
}

func references(blocks []*domain.Block) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Reference)
	}
	return out
}

// ─── Persistence ─────────────────────────────────────────────

func (s *Session) scheduleFlush() {
	if s.timer != nil {
		s.timer.Reset(s.flushDelay)
		return
	}
	s.timer = time.AfterFunc(s.flushDelay, func() {
		s.loop.Post(func() {
			if err := s.Flush(); err != nil {
				s.logger.Error("flush", "err", err)
			}
		})
	})
}

// Flush writes every changed, added or re-layered block to the store.
func (s *Session) Flush() error {
	var errs []error
	written := 0
	for _, b := range s.surface.Blocks() {
		layer, stored := s.persisted[b.Reference]
		if !s.dirty[b.Reference] && stored && layer == b.Layer() {
			continue
		}
		var err error
		if stored {
			err = s.svc.blocks.UpdateBlock(s.artboard.ID, b)
		} else {
			err = s.svc.blocks.CreateBlock(s.artboard.ID, b)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("block %s: %w", b.Reference, err))
			continue
		}
		delete(s.dirty, b.Reference)
		s.persisted[b.Reference] = b.Layer()
		written++
	}
	if written > 0 {
		s.logger.Debug("flushed", "blocks", written)
	}
	return errors.Join(errs...)
}

// Close writes pending changes and tears the editor down. The loop must
// no longer be running.
func (s *Session) Close() error {
	if s.timer != nil {
		s.timer.Stop()
	}
	err := s.Flush()
	if s.watcher != nil {
		s.watcher.Close()
	}
	s.surface.Close()
	s.loop.Close()
	s.logger.Info("closed")
	return err
}
