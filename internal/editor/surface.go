package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"artboard/internal/domain"
	"artboard/internal/gesture"
)

// Default geometry of a block created from the toolbar, in pixels.
const (
	defaultBlockTop    = 100
	defaultBlockLeft   = 100
	defaultBlockWidth  = 300
	defaultBlockHeight = 300
)

// Config is what a host hands to NewSurface. Width and Height are the
// artboard size in Unit. Callbacks are optional.
type Config struct {
	Unit   domain.Unit
	Width  float64
	Height float64
	Blocks []*domain.Block

	BlockChanged       func(*domain.Block)
	BlockAdded         func(*domain.Block)
	BlocksRemoved      func([]*domain.Block)
	BlocksLevelChanged func([]*domain.Block)
	BlocksSelected     func([]*domain.Block)

	// FileUpload stores an image and resolves to its URL. It runs off the
	// loop; the URL is applied to the selection on a later turn.
	FileUpload func(ctx context.Context, blob []byte) (string, error)
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Unit, validation.Required, validation.In(domain.UnitInch, domain.UnitPixel)),
		validation.Field(&c.Width, validation.Required, validation.Min(0.0)),
		validation.Field(&c.Height, validation.Required, validation.Min(0.0)),
		validation.Field(&c.Blocks, validation.By(uniqueReferences)),
	)
}

func uniqueReferences(value any) error {
	blocks, _ := value.([]*domain.Block)
	seen := make(map[string]bool, len(blocks))
	for i, b := range blocks {
		if b == nil {
			return fmt.Errorf("block %d is nil", i)
		}
		if b.Reference == "" {
			return fmt.Errorf("block %d has no reference", i)
		}
		if seen[b.Reference] {
			return fmt.Errorf("duplicate reference %q", b.Reference)
		}
		seen[b.Reference] = true
	}
	return nil
}

// Option customizes a Surface.
type Option func(*Surface)

// WithLoop runs the surface on an existing loop. The caller keeps
// ownership and must drive it.
func WithLoop(l *Loop) Option {
	return func(s *Surface) {
		s.loop = l
		s.ownsLoop = false
	}
}

// WithGestures sets the factory that creates block handles.
func WithGestures(f gesture.Factory) Option {
	return func(s *Surface) { s.gestures = f }
}

// WithContentEditors sets how a block's content editor is created.
func WithContentEditors(f func(*domain.Block) ContentEditor) Option {
	return func(s *Surface) { s.contents = f }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Surface) { s.logger = l }
}

type mount struct {
	ctl *BlockController
	sub *Subscription
}

// Surface is the artboard: it mounts a controller per block, runs the
// toolbar's bulk operations on the selection and relays every change to
// the host callbacks.
type Surface struct {
	cfg       Config
	loop      *Loop
	ownsLoop  bool
	coord     *Coordinator
	container *gesture.Element
	gestures  gesture.Factory
	contents  func(*domain.Block) ContentEditor
	logger    *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mounted       map[*domain.Block]mount
	subs          []*Subscription
	renderPending bool
	clippable     bool
	current       *domain.Block
	closed        bool
}

// NewSurface builds the artboard and mounts the initial blocks. An empty
// unit defaults to inches.
func NewSurface(cfg Config, opts ...Option) (*Surface, error) {
	s := &Surface{
		cfg:      cfg,
		loop:     NewLoop(),
		ownsLoop: true,
		gestures: gesture.Attach,
		contents: func(*domain.Block) ContentEditor { return nil },
		logger:   log.Default().WithPrefix("editor"),
		mounted:  map[*domain.Block]mount{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.Unit == "" {
		s.cfg.Unit = domain.UnitInch
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("editor config: %w", err)
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.coord = NewCoordinator(s.loop, s.cfg.Unit, s.logger)
	s.container = &gesture.Element{
		ID:     "artboard",
		Width:  ToPixels(s.cfg.Width, s.cfg.Unit),
		Height: ToPixels(s.cfg.Height, s.cfg.Unit),
	}
	s.coord.RegisterContainer(s.container)
	s.coord.Load(s.cfg.Blocks)

	if err := s.render(); err != nil {
		s.Close()
		return nil, fmt.Errorf("mount blocks: %w", err)
	}
	s.subs = append(s.subs,
		s.coord.SubscribeBlocks(func([]*domain.Block) { s.scheduleRender() }),
		s.coord.SubscribeSelection(s.selectionChanged),
	)
	s.logger.Debug("surface ready", "unit", s.cfg.Unit, "blocks", len(s.cfg.Blocks))
	return s, nil
}

// ─── Accessors ───────────────────────────────────────────────

func (s *Surface) Loop() *Loop                 { return s.loop }
func (s *Surface) Coordinator() *Coordinator   { return s.coord }
func (s *Surface) Container() *gesture.Element { return s.container }
func (s *Surface) Unit() domain.Unit           { return s.cfg.Unit }
func (s *Surface) Clippable() bool             { return s.clippable }

// Current is the first selected block, the one the toolbar reflects.
func (s *Surface) Current() *domain.Block { return s.current }

func (s *Surface) Controller(ref string) (*BlockController, bool) {
	return s.coord.Controller(ref)
}

func (s *Surface) Block(ref string) (*domain.Block, bool) {
	return s.coord.Block(ref)
}

// Blocks returns the collection sorted by layer, bottom first.
func (s *Surface) Blocks() []*domain.Block {
	return s.coord.OrderedBlocks()
}

// Selected returns the models of the selected blocks.
func (s *Surface) Selected() []*domain.Block {
	return models(s.coord.Selection())
}

// ─── Rendering ───────────────────────────────────────────────

// scheduleRender coalesces collection changes into one mount pass on the
// next loop turn.
func (s *Surface) scheduleRender() {
	if s.renderPending || s.closed {
		return
	}
	s.renderPending = true
	s.loop.Post(func() {
		s.renderPending = false
		if err := s.render(); err != nil {
			s.logger.Error("mount blocks", "err", err)
		}
	})
}

// render mounts a controller for every new block and destroys the ones
// whose block left the collection.
func (s *Surface) render() error {
	if s.closed {
		return nil
	}
	return s.coord.Batch(func() error {
		live := map[*domain.Block]bool{}
		for _, b := range s.coord.Blocks() {
			live[b] = true
			if _, ok := s.mounted[b]; ok {
				continue
			}
			ctl := NewBlockController(s.coord, b, s.contents(b))
			if err := ctl.Attach(s.gestures); err != nil {
				return err
			}
			s.mounted[b] = mount{ctl: ctl, sub: ctl.OnChanged(s.blockChanged)}
		}
		for b, m := range s.mounted {
			if !live[b] {
				m.sub.Unsubscribe()
				m.ctl.Destroy()
				delete(s.mounted, b)
			}
		}
		return nil
	})
}

func (s *Surface) blockChanged(b *domain.Block) {
	if s.cfg.BlockChanged != nil {
		s.cfg.BlockChanged(b)
	}
}

func (s *Surface) selectionChanged(sel []*BlockController) {
	s.clippable = false
	for _, ctl := range s.coord.Controllers() {
		ctl.setClippable(false)
	}
	s.current = nil
	if len(sel) > 0 {
		s.current = sel[0].block
	}
	if s.cfg.BlocksSelected != nil {
		s.cfg.BlocksSelected(models(sel))
	}
}

func models(ctrls []*BlockController) []*domain.Block {
	out := make([]*domain.Block, 0, len(ctrls))
	for _, ctl := range ctrls {
		out = append(out, ctl.block)
	}
	return out
}

// ─── Toolbar ─────────────────────────────────────────────────

func (s *Surface) each(fn func(*BlockController)) {
	for _, ctl := range s.coord.Selection() {
		fn(ctl)
	}
}

func (s *Surface) SetVerticalAlign(v domain.VerticalAlign) {
	s.each(func(c *BlockController) { c.SetVerticalAlign(v) })
}

func (s *Surface) SetHorizontalAlign(v domain.HorizontalAlign) {
	s.each(func(c *BlockController) { c.SetHorizontalAlign(v) })
}

// ToggleBold flips bold on each selected block independently.
func (s *Surface) ToggleBold() {
	s.each(func(c *BlockController) { c.SetBold(!c.block.Bold) })
}

func (s *Surface) ToggleItalic() {
	s.each(func(c *BlockController) { c.SetItalic(!c.block.Italic) })
}

func (s *Surface) ToggleUnderline() {
	s.each(func(c *BlockController) { c.SetUnderline(!c.block.Underline) })
}

func (s *Surface) SetFontColor(v string) {
	s.each(func(c *BlockController) { c.SetFontColor(v) })
}

func (s *Surface) SetBackgroundColor(v string) {
	s.each(func(c *BlockController) { c.SetBackgroundColor(v) })
}

func (s *Surface) SetBorderColor(v string) {
	s.each(func(c *BlockController) { c.SetBorderColor(v) })
}

func (s *Surface) SetFontSize(v string) {
	s.each(func(c *BlockController) { c.SetFontSize(v) })
}

func (s *Surface) SetLineHeight(v string) {
	s.each(func(c *BlockController) { c.SetLineHeight(v) })
}

func (s *Surface) SetPadding(side domain.PaddingSide, v string) {
	s.each(func(c *BlockController) { c.SetPadding(side, v) })
}

func (s *Surface) ToggleShape(corner domain.Corner) {
	s.each(func(c *BlockController) { c.ToggleShape(corner) })
}

func (s *Surface) SetShapeRadius(v float64) {
	s.each(func(c *BlockController) { c.SetShapeRadius(v) })
}

func (s *Surface) RemoveImage() {
	s.each(func(c *BlockController) { c.SetImageURL("") })
}

// ToggleClip flips clip mode for the selection. Any selection change
// turns it off again.
func (s *Surface) ToggleClip() bool {
	s.clippable = !s.clippable
	s.each(func(c *BlockController) { c.setClippable(s.clippable) })
	return s.clippable
}

// FileSelect uploads blob through the configured FileUpload and sets the
// resulting URL on the blocks selected when the upload completes.
// Upload failures are logged and dropped.
func (s *Surface) FileSelect(blob []byte) {
	upload := s.cfg.FileUpload
	if upload == nil {
		s.logger.Warn("file selected but no upload configured")
		return
	}
	ctx := s.ctx
	go func() {
		url, err := upload(ctx, blob)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.logger.Warn("file upload failed", "err", err)
			}
			return
		}
		s.loop.Post(func() {
			if s.closed {
				return
			}
			s.each(func(c *BlockController) { c.SetImageURL(url) })
		})
	}()
}

// ─── Actions ─────────────────────────────────────────────────

// AddBlock adds a block to the artboard. A nil template creates a text
// block with the default geometry. Once the block's controller is mounted
// its handles are enabled and BlockAdded fires.
func (s *Surface) AddBlock(tmpl *domain.Block) *domain.Block {
	b := tmpl
	if b == nil {
		u := s.cfg.Unit
		b = &domain.Block{
			Type:   domain.BlockTypeText,
			Top:    FromPixels(defaultBlockTop, u),
			Left:   FromPixels(defaultBlockLeft, u),
			Width:  FromPixels(defaultBlockWidth, u),
			Height: FromPixels(defaultBlockHeight, u),
		}
	}
	if b.Type == "" {
		b.Type = domain.BlockTypeText
	}
	if _, taken := s.coord.Block(b.Reference); b.Reference == "" || taken {
		b.Reference = uuid.NewString()
	}

	ref := b.Reference
	var wait *Subscription
	wait = s.coord.OnceControllersChanged(func(ctrls []*BlockController) {
		s.dropSub(wait)
		for _, ctl := range ctrls {
			if ctl.block.Reference != ref {
				continue
			}
			ctl.setTransformable(true)
			if s.cfg.BlockAdded != nil {
				s.cfg.BlockAdded(ctl.block)
			}
			return
		}
	})
	s.subs = append(s.subs, wait)

	s.coord.AddBlock(b)
	return b
}

func (s *Surface) dropSub(sub *Subscription) {
	s.subs = slices.DeleteFunc(s.subs, func(x *Subscription) bool { return x == sub })
}

// RemoveSelected removes the selected blocks and clears the selection.
func (s *Surface) RemoveSelected() []*domain.Block {
	sel := s.coord.Selection()
	if len(sel) == 0 {
		return nil
	}
	removed := models(sel)
	for _, b := range removed {
		s.coord.RemoveBlock(b)
	}
	if s.cfg.BlocksRemoved != nil {
		s.cfg.BlocksRemoved(removed)
	}
	s.coord.SetSelection(nil)
	return removed
}

// MoveLayer moves the selection one layer up (dir > 0) or down (dir < 0).
func (s *Surface) MoveLayer(dir int) []*domain.Block {
	sorted := s.coord.MoveLayer(dir)
	if s.cfg.BlocksLevelChanged != nil {
		s.cfg.BlocksLevelChanged(sorted)
	}
	return sorted
}

func (s *Surface) LayerUp() []*domain.Block   { return s.MoveLayer(1) }
func (s *Surface) LayerDown() []*domain.Block { return s.MoveLayer(-1) }

// Select replaces the selection with the blocks of refs. Unknown
// references are skipped.
func (s *Surface) Select(refs ...string) []*domain.Block {
	var ctrls []*BlockController
	for _, ref := range refs {
		if ctl, ok := s.coord.Controller(ref); ok && !slices.Contains(ctrls, ctl) {
			ctrls = append(ctrls, ctl)
		}
	}
	s.coord.SetSelection(ctrls)
	return models(ctrls)
}

// ClearSelection is a click on the bare artboard.
func (s *Surface) ClearSelection() {
	s.coord.SetSelection(nil)
}

// Edit puts the block into text edit mode, as a double click does.
func (s *Surface) Edit(ref string) bool {
	ctl, ok := s.coord.Controller(ref)
	if !ok {
		return false
	}
	if !ctl.Editable() {
		ctl.SetEditable(true)
	}
	return true
}

// Close destroys every controller and drops every subscription. Pending
// uploads are cancelled.
func (s *Surface) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
	for b, m := range s.mounted {
		m.sub.Unsubscribe()
		m.ctl.Destroy()
		delete(s.mounted, b)
	}
	s.coord.Close()
	if s.ownsLoop {
		s.loop.Close()
	}
}
