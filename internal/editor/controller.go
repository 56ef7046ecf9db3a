package editor

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"artboard/internal/domain"
	"artboard/internal/gesture"
	"artboard/internal/richtext"
)

// ContentEditor is the rich-text surface inside a block.
type ContentEditor interface {
	SetContent(html string)
	Content() string
	SelectAll()
	ClearSelection()
	HasSelection() bool
	SelectionBlocks() []string
}

// Handle throttles, in gesture units.
const (
	throttleDrag   = 1
	throttleResize = 1
	throttleRotate = 0.2
	throttleScale  = 0.01
)

// BlockController binds one block model to its element, its gesture handle
// and its content editor. Every mutation goes through the controller so
// the model and the element never disagree once a gesture ends.
type BlockController struct {
	block   *domain.Block
	coord   *Coordinator
	element *gesture.Element
	content ContentEditor
	handle  gesture.Handle
	unsubs  []func()
	changed Signal[*domain.Block]
	logger  *log.Logger

	selected      bool
	transformable bool
	editable      bool
	clippable     bool
	gesturing     bool
	destroyed     bool

	rotateStart float64
	revision    int
	// text of the content blocks selected when edit mode began
	savedSelection []string
}

// NewBlockController mounts block under coord. A nil content editor gets a
// richtext.Document seeded with the block's content.
func NewBlockController(coord *Coordinator, block *domain.Block, content ContentEditor) *BlockController {
	block.ApplyDefaults()
	if content == nil {
		content = richtext.NewDocument(block.Content)
	}
	c := &BlockController{
		block:   block,
		coord:   coord,
		element: &gesture.Element{ID: "block-" + block.Reference},
		content: content,
		logger:  coord.logger.With("block", block.Reference),
	}
	c.render()
	return c
}

// Attach creates the gesture handle through factory and registers the
// controller with its coordinator. It fails when no container has been
// registered.
func (c *BlockController) Attach(factory gesture.Factory) error {
	if c.handle != nil {
		return nil
	}
	container := c.coord.Container()
	if container == nil {
		return fmt.Errorf("attach block %s: %w", c.block.Reference, gesture.ErrNoContainer)
	}
	h, err := factory(gesture.Options{
		Target:         c.element,
		Container:      container,
		Snappable:      true,
		ThrottleDrag:   throttleDrag,
		ThrottleResize: throttleResize,
		ThrottleRotate: throttleRotate,
		ThrottleScale:  throttleScale,
	})
	if err != nil {
		return fmt.Errorf("attach block %s: %w", c.block.Reference, err)
	}
	c.handle = h

	g := gestures{c}
	c.unsubs = append(c.unsubs, h.OnDrag(g), h.OnResize(g), h.OnRotate(g), h.OnClip(g))
	c.setTransformable(c.selected)
	h.SetClippable(c.clippable)
	c.coord.register(c)
	return nil
}

// Destroy releases the handle, every listener and the coordinator slot.
func (c *BlockController) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	if c.handle != nil {
		c.handle.Destroy()
	}
	c.changed.Close()
	c.coord.unregister(c)
}

// ─── Accessors ───────────────────────────────────────────────

func (c *BlockController) Block() *domain.Block     { return c.block }
func (c *BlockController) Reference() string        { return c.block.Reference }
func (c *BlockController) Element() *gesture.Element { return c.element }
func (c *BlockController) Handle() gesture.Handle   { return c.handle }
func (c *BlockController) Content() ContentEditor   { return c.content }
func (c *BlockController) Selected() bool           { return c.selected }
func (c *BlockController) Transformable() bool      { return c.transformable }
func (c *BlockController) Editable() bool           { return c.editable }
func (c *BlockController) Clippable() bool          { return c.clippable }
func (c *BlockController) Destroyed() bool          { return c.destroyed }

// SavedSelection returns the content blocks captured when edit mode
// selected the whole content. It is empty outside edit mode.
func (c *BlockController) SavedSelection() []string { return slices.Clone(c.savedSelection) }

// Revision increases every time the element needs repainting.
func (c *BlockController) Revision() int { return c.revision }

// OnChanged notifies fn after every user-visible mutation of the block.
func (c *BlockController) OnChanged(fn func(*domain.Block)) *Subscription {
	return c.changed.Subscribe(fn)
}

// ─── Mode ────────────────────────────────────────────────────

func (c *BlockController) setSelected(v bool) {
	c.selected = v
	if v {
		c.SetEditable(false)
	}
	c.setTransformable(v)
}

// setTransformable toggles the drag, resize, rotate and round handles.
func (c *BlockController) setTransformable(v bool) {
	c.transformable = v
	if c.handle != nil {
		c.handle.SetDraggable(v)
		c.handle.SetResizable(v)
		c.handle.SetRotatable(v)
		c.handle.SetRoundable(v)
	}
	c.markForCheck()
}

func (c *BlockController) setClippable(v bool) {
	c.clippable = v
	if c.handle != nil {
		c.handle.SetClippable(v)
	}
	c.markForCheck()
}

func (c *BlockController) setIndex(i int) {
	c.block.SetLayer(i)
	c.markForCheck()
}

// SetEditable switches the block into or out of text edit mode. Entering
// it disables the transform handles and selects the whole content on the
// next loop turn, once the content is ready to take focus.
func (c *BlockController) SetEditable(v bool) {
	c.editable = v
	if v {
		c.setTransformable(false)
		c.coord.loop.Post(func() {
			if c.editable && !c.destroyed {
				c.content.SelectAll()
				c.savedSelection = c.content.SelectionBlocks()
			}
		})
	} else {
		c.content.ClearSelection()
		c.savedSelection = nil
	}
	c.markForCheck()
}

// ─── Style ───────────────────────────────────────────────────

func (c *BlockController) update(fn func(b *domain.Block)) {
	fn(c.block)
	c.markForCheck()
	c.triggerChanged()
}

func (c *BlockController) SetVerticalAlign(v domain.VerticalAlign) {
	c.update(func(b *domain.Block) { b.VerticalAlign = v })
}

func (c *BlockController) SetHorizontalAlign(v domain.HorizontalAlign) {
	c.update(func(b *domain.Block) { b.HorizontalAlign = v })
}

func (c *BlockController) SetBold(v bool) {
	c.update(func(b *domain.Block) { b.Bold = v })
}

func (c *BlockController) SetItalic(v bool) {
	c.update(func(b *domain.Block) { b.Italic = v })
}

func (c *BlockController) SetUnderline(v bool) {
	c.update(func(b *domain.Block) { b.Underline = v })
}

func (c *BlockController) SetFontColor(v string) {
	c.update(func(b *domain.Block) { b.FontColor = v })
}

func (c *BlockController) SetBackgroundColor(v string) {
	c.update(func(b *domain.Block) { b.BackgroundColor = v })
}

func (c *BlockController) SetBorderColor(v string) {
	c.update(func(b *domain.Block) { b.BorderColor = v })
}

// SetFontSize takes raw user input. Non-numeric input is ignored; the
// empty string clears the value.
func (c *BlockController) SetFontSize(v string) {
	n, ok := c.numeric("fontSize", v)
	if !ok {
		return
	}
	c.update(func(b *domain.Block) { b.FontSize = n })
}

func (c *BlockController) SetLineHeight(v string) {
	n, ok := c.numeric("lineHeight", v)
	if !ok {
		return
	}
	c.update(func(b *domain.Block) { b.LineHeight = n })
}

// SetPadding sets one side's padding from raw user input. Unknown sides
// are ignored like non-numeric input.
func (c *BlockController) SetPadding(side domain.PaddingSide, v string) {
	if !side.Valid() {
		c.logger.Debug("ignored unknown padding side", "side", side)
		return
	}
	n, ok := c.numeric(string(side), v)
	if !ok {
		return
	}
	c.update(func(b *domain.Block) { b.SetPadding(side, n) })
}

func (c *BlockController) numeric(field, v string) (*float64, bool) {
	n, ok := parseNumeric(v)
	if !ok {
		c.logger.Debug("ignored non-numeric input", "field", field, "value", v)
	}
	return n, ok
}

func (c *BlockController) SetShape(corner domain.Corner, s domain.CornerShape) {
	c.update(func(b *domain.Block) { b.SetShape(corner, s) })
}

// ToggleShape flips corner between round and square.
func (c *BlockController) ToggleShape(corner domain.Corner) {
	next := domain.ShapeRound
	if c.block.Shape(corner) == domain.ShapeRound {
		next = domain.ShapeSquare
	}
	c.SetShape(corner, next)
}

func (c *BlockController) SetShapeRadius(v float64) {
	c.update(func(b *domain.Block) { b.ShapeRadius = v })
}

func (c *BlockController) SetImageURL(url string) {
	c.update(func(b *domain.Block) { b.ImageURL = url })
}

func (c *BlockController) SetClipPath(v string) {
	c.update(func(b *domain.Block) { b.ClipPath = v })
}

// SetContent replaces the rich-text content of the block.
func (c *BlockController) SetContent(html string) {
	c.content.SetContent(html)
	c.update(func(b *domain.Block) { b.Content = c.content.Content() })
}

// ─── Geometry ────────────────────────────────────────────────
// Geometry setters take values in the coordinator's unit.

func (c *BlockController) SetWidth(v float64) {
	c.update(func(b *domain.Block) { b.Width = v })
}

func (c *BlockController) SetHeight(v float64) {
	c.update(func(b *domain.Block) { b.Height = v })
}

func (c *BlockController) SetTop(v float64) {
	c.update(func(b *domain.Block) { b.Top = v })
}

func (c *BlockController) SetLeft(v float64) {
	c.update(func(b *domain.Block) { b.Left = v })
}

func (c *BlockController) SetRotate(v float64) {
	c.update(func(b *domain.Block) { b.Rotate = v })
}

// ─── Rendering ───────────────────────────────────────────────

func (c *BlockController) triggerChanged() {
	c.changed.Emit(c.block)
}

// markForCheck re-renders the element from the model. While a gesture is
// in flight the element leads and is reconciled when the gesture ends.
func (c *BlockController) markForCheck() {
	if !c.gesturing {
		c.render()
	}
	c.revision++
}

func (c *BlockController) render() {
	u := c.coord.Unit()
	c.element.Left = ToPixels(c.block.Left, u)
	c.element.Top = ToPixels(c.block.Top, u)
	c.element.Width = ToPixels(c.block.Width, u)
	c.element.Height = ToPixels(c.block.Height, u)
	c.element.Transform = c.transform(0, 0)
	c.element.ClipPath = c.block.ClipPath
}

// transform composes the resize compensation with the block's rotation.
func (c *BlockController) transform(tx, ty float64) gesture.Matrix {
	return gesture.Translate(tx, ty).Multiply(gesture.Rotate(c.block.Rotate))
}

// ─── Gestures ────────────────────────────────────────────────

func (c *BlockController) beginGesture() {
	c.SetEditable(false)
	c.gesturing = true
}

func (c *BlockController) endGesture() {
	c.gesturing = false
	c.markForCheck()
	c.triggerChanged()
}

func (c *BlockController) onDrag(e gesture.DragEvent) {
	u := c.coord.Unit()
	c.element.Left, c.element.Top = e.Left, e.Top
	c.block.Left = FromPixels(e.Left, u)
	c.block.Top = FromPixels(e.Top, u)
	c.triggerChanged()
}

func (c *BlockController) onResize(e gesture.ResizeEvent) {
	u := c.coord.Unit()
	if e.Delta[0] != 0 {
		c.element.Width = e.Width
		c.block.Width = FromPixels(e.Width, u)
	}
	if e.Delta[1] != 0 {
		c.element.Height = e.Height
		c.block.Height = FromPixels(e.Height, u)
	}

	// growing from the left or top edge keeps the opposite edge in place
	var tx, ty float64
	if e.Direction[0] == -1 {
		tx = -e.Dist[0]
	}
	if e.Direction[1] == -1 {
		ty = -e.Dist[1]
	}
	c.element.Transform = c.transform(tx, ty)
	c.triggerChanged()
}

func (c *BlockController) onResizeEnd() {
	u := c.coord.Unit()
	tx, ty := c.element.Transform.Translation()
	c.block.Left = FromPixels(c.element.Left+tx, u)
	c.block.Top = FromPixels(c.element.Top+ty, u)
	c.endGesture()
}

func (c *BlockController) onRotateStart() {
	c.beginGesture()
	c.rotateStart = c.block.Rotate
}

func (c *BlockController) onRotate(e gesture.RotateEvent) {
	c.block.Rotate = c.rotateStart + e.Dist
	c.element.Transform = e.Transform
	c.triggerChanged()
}

func (c *BlockController) onClip(e gesture.ClipEvent) {
	c.block.ClipPath = e.ClipStyle
	c.element.ClipPath = e.ClipStyle
	c.triggerChanged()
}

// gestures adapts a controller to the handle's listener interfaces.
type gestures struct{ c *BlockController }

var (
	_ gesture.DragListener   = gestures{}
	_ gesture.ResizeListener = gestures{}
	_ gesture.RotateListener = gestures{}
	_ gesture.ClipListener   = gestures{}
)

func (g gestures) DragStart(gesture.DragEvent)     { g.c.beginGesture() }
func (g gestures) Drag(e gesture.DragEvent)        { g.c.onDrag(e) }
func (g gestures) DragEnd(gesture.DragEvent)       { g.c.endGesture() }
func (g gestures) ResizeStart(gesture.ResizeEvent) { g.c.beginGesture() }
func (g gestures) Resize(e gesture.ResizeEvent)    { g.c.onResize(e) }
func (g gestures) ResizeEnd(gesture.ResizeEvent)   { g.c.onResizeEnd() }
func (g gestures) RotateStart(gesture.RotateEvent) { g.c.onRotateStart() }
func (g gestures) Rotate(e gesture.RotateEvent)    { g.c.onRotate(e) }
func (g gestures) RotateEnd(gesture.RotateEvent)   { g.c.endGesture() }
func (g gestures) ClipStart(gesture.ClipEvent)     {}
func (g gestures) Clip(e gesture.ClipEvent)        { g.c.onClip(e) }
func (g gestures) ClipEnd(gesture.ClipEvent)       {}
