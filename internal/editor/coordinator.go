package editor

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/log"

	"artboard/internal/domain"
	"artboard/internal/gesture"
)

// layerShift pushes selected blocks past every unselected one during a
// layer move.
const layerShift = 999

// Coordinator owns the block collection, the selection and the set of
// mounted controllers of one surface. It is confined to the loop.
type Coordinator struct {
	loop      *Loop
	unit      domain.Unit
	container *gesture.Element
	logger    *log.Logger

	blocks      *Subject[[]*domain.Block]
	selection   *Subject[[]*BlockController]
	controllers []*BlockController
	mounted     Signal[[]*BlockController]

	batching     int
	batchChanged bool
	closed       bool
}

func NewCoordinator(loop *Loop, unit domain.Unit, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		loop:      loop,
		unit:      unit,
		logger:    logger,
		blocks:    NewSubject[[]*domain.Block](nil),
		selection: NewSubject[[]*BlockController](nil),
	}
}

func (c *Coordinator) Loop() *Loop       { return c.loop }
func (c *Coordinator) Unit() domain.Unit { return c.unit }

// RegisterContainer sets the artboard element handles are confined to.
func (c *Coordinator) RegisterContainer(el *gesture.Element) {
	c.container = el
	c.updateGuidelines()
}

func (c *Coordinator) Container() *gesture.Element { return c.container }

// ─── Blocks ──────────────────────────────────────────────────

// Load replaces the collection and normalizes its indices.
func (c *Coordinator) Load(blocks []*domain.Block) {
	c.publish(normalize(slices.Clone(blocks)))
}

// AddBlock appends b and renumbers the collection densely by layer.
func (c *Coordinator) AddBlock(b *domain.Block) {
	c.publish(normalize(append(slices.Clone(c.blocks.Value()), b)))
}

// RemoveBlock drops b from the collection. The remaining indices are left
// as they are.
func (c *Coordinator) RemoveBlock(b *domain.Block) bool {
	cur := c.blocks.Value()
	i := slices.Index(cur, b)
	if i < 0 {
		return false
	}
	c.publish(slices.Delete(slices.Clone(cur), i, i+1))
	return true
}

// Blocks returns the collection in insertion order.
func (c *Coordinator) Blocks() []*domain.Block {
	return slices.Clone(c.blocks.Value())
}

// OrderedBlocks returns the collection sorted bottom layer first.
func (c *Coordinator) OrderedBlocks() []*domain.Block {
	out := c.Blocks()
	slices.SortStableFunc(out, compareLayer)
	return out
}

// SubscribeBlocks replays the current collection to fn, then every change.
func (c *Coordinator) SubscribeBlocks(fn func([]*domain.Block)) *Subscription {
	return c.blocks.Subscribe(fn)
}

// Block finds a block by reference.
func (c *Coordinator) Block(ref string) (*domain.Block, bool) {
	for _, b := range c.blocks.Value() {
		if b.Reference == ref {
			return b, true
		}
	}
	return nil, false
}

func (c *Coordinator) publish(blocks []*domain.Block) {
	if c.closed {
		return
	}
	for _, b := range blocks {
		if ctl, ok := c.Controller(b.Reference); ok && ctl.block == b {
			ctl.markForCheck()
		}
	}
	c.blocks.Next(blocks)
}

// normalize assigns dense zero-based indices in layer order. Blocks
// without an index go on top in collection order; ties keep collection
// order.
func normalize(blocks []*domain.Block) []*domain.Block {
	sorted := slices.Clone(blocks)
	slices.SortStableFunc(sorted, compareLayer)
	for i, b := range sorted {
		b.SetLayer(i)
	}
	return blocks
}

func compareLayer(a, b *domain.Block) int {
	switch {
	case a.Index == nil && b.Index == nil:
		return 0
	case a.Index == nil:
		return 1
	case b.Index == nil:
		return -1
	}
	return cmp.Compare(*a.Index, *b.Index)
}

// MoveLayer moves the selected blocks one step up (dir > 0) or down
// (dir < 0) as a group, preserving their relative order, renumbers the
// collection densely and returns it sorted by index.
func (c *Coordinator) MoveLayer(dir int) []*domain.Block {
	switch {
	case dir > 0:
		dir = 1
	case dir < 0:
		dir = -1
	}
	cur := c.blocks.Value()

	// removals leave gaps, so the shift has to clear the highest index
	shift := layerShift
	keys := make(map[*domain.Block]int, len(cur))
	for _, b := range cur {
		keys[b] = b.Layer()
		shift = max(shift, b.Layer()+1)
	}
	for _, ctl := range c.selection.Value() {
		if _, ok := keys[ctl.block]; ok {
			keys[ctl.block] += shift * dir
		}
	}

	sorted := slices.Clone(cur)
	slices.SortStableFunc(sorted, func(a, b *domain.Block) int {
		return cmp.Compare(keys[a], keys[b])
	})
	for i, b := range sorted {
		if ctl, ok := c.controllerFor(b); ok {
			ctl.setIndex(i)
		} else {
			b.SetLayer(i)
		}
	}
	c.blocks.Next(slices.Clone(cur))
	return sorted
}

// ─── Selection ───────────────────────────────────────────────

// SetSelection makes ctrls the selection. Every mounted controller leaves
// edit mode; exactly the given ones get their transform handles.
func (c *Coordinator) SetSelection(ctrls []*BlockController) {
	sel := slices.Clone(ctrls)
	for _, ctl := range c.controllers {
		ctl.SetEditable(false)
		ctl.setSelected(slices.Contains(sel, ctl))
	}
	c.selection.Next(sel)
}

func (c *Coordinator) Selection() []*BlockController {
	return slices.Clone(c.selection.Value())
}

func (c *Coordinator) SubscribeSelection(fn func([]*BlockController)) *Subscription {
	return c.selection.Subscribe(fn)
}

func (c *Coordinator) IsSelected(ctl *BlockController) bool {
	return slices.Contains(c.selection.Value(), ctl)
}

// ─── Controllers ─────────────────────────────────────────────

func (c *Coordinator) Controllers() []*BlockController {
	return slices.Clone(c.controllers)
}

// Controller finds a mounted controller by block reference.
func (c *Coordinator) Controller(ref string) (*BlockController, bool) {
	for _, ctl := range c.controllers {
		if ctl.block.Reference == ref {
			return ctl, true
		}
	}
	return nil, false
}

func (c *Coordinator) controllerFor(b *domain.Block) (*BlockController, bool) {
	for _, ctl := range c.controllers {
		if ctl.block == b {
			return ctl, true
		}
	}
	return nil, false
}

// OnControllersChanged notifies fn whenever the mounted set changes.
func (c *Coordinator) OnControllersChanged(fn func([]*BlockController)) *Subscription {
	return c.mounted.Subscribe(fn)
}

// OnceControllersChanged notifies fn on the next change only.
func (c *Coordinator) OnceControllersChanged(fn func([]*BlockController)) *Subscription {
	return c.mounted.SubscribeOnce(fn)
}

// Batch runs fn and reports the mounted set at most once afterwards.
func (c *Coordinator) Batch(fn func() error) error {
	c.batching++
	defer func() {
		c.batching--
		if c.batching == 0 && c.batchChanged {
			c.batchChanged = false
			c.mounted.Emit(c.Controllers())
		}
	}()
	return fn()
}

func (c *Coordinator) register(ctl *BlockController) {
	if c.closed || slices.Contains(c.controllers, ctl) {
		return
	}
	c.controllers = append(c.controllers, ctl)
	c.controllersChanged()
}

func (c *Coordinator) unregister(ctl *BlockController) {
	i := slices.Index(c.controllers, ctl)
	if i < 0 {
		return
	}
	c.controllers = slices.Delete(c.controllers, i, i+1)
	if c.IsSelected(ctl) {
		sel := slices.DeleteFunc(c.Selection(), func(s *BlockController) bool { return s == ctl })
		c.selection.Next(sel)
	}
	c.controllersChanged()
}

func (c *Coordinator) controllersChanged() {
	c.updateGuidelines()
	if c.batching > 0 {
		c.batchChanged = true
		return
	}
	c.mounted.Emit(c.Controllers())
}

// updateGuidelines gives every handle the other blocks' elements plus the
// container to snap against.
func (c *Coordinator) updateGuidelines() {
	for _, ctl := range c.controllers {
		if ctl.handle == nil {
			continue
		}
		lines := make([]*gesture.Element, 0, len(c.controllers))
		for _, other := range c.controllers {
			if other != ctl {
				lines = append(lines, other.element)
			}
		}
		if c.container != nil {
			lines = append(lines, c.container)
		}
		ctl.handle.SetElementGuidelines(lines)
	}
}

// Close drops every subscriber. The coordinator ignores later changes.
func (c *Coordinator) Close() {
	c.closed = true
	c.blocks.Close()
	c.selection.Close()
	c.mounted.Close()
}
