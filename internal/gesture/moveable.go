package gesture

import "math"

const defaultSnapThreshold = 5.0

// Moveable is an in-memory Handle. Gestures are performed with the Driver
// methods and reported to listeners as start, one or more steps, and end.
// Moveable never writes the target's geometry itself; listeners do.
//
// Not safe for concurrent use.
type Moveable struct {
	opts       Options
	caps       Capabilities
	guidelines []*Element
	destroyed  bool

	nextID int
	drag   map[int]DragListener
	resize map[int]ResizeListener
	rotate map[int]RotateListener
	clip   map[int]ClipListener
}

var (
	_ Handle = (*Moveable)(nil)
	_ Driver = (*Moveable)(nil)
)

// NewMoveable attaches a handle to opts.Target. It fails when the target or
// the container is missing.
func NewMoveable(opts Options) (*Moveable, error) {
	if opts.Target == nil {
		return nil, ErrNoTarget
	}
	if opts.Container == nil {
		return nil, ErrNoContainer
	}
	if opts.SnapThreshold <= 0 {
		opts.SnapThreshold = defaultSnapThreshold
	}
	return &Moveable{
		opts:   opts,
		drag:   map[int]DragListener{},
		resize: map[int]ResizeListener{},
		rotate: map[int]RotateListener{},
		clip:   map[int]ClipListener{},
	}, nil
}

// Attach is a Factory backed by NewMoveable.
func Attach(opts Options) (Handle, error) {
	return NewMoveable(opts)
}

func (m *Moveable) Target() *Element { return m.opts.Target }

func (m *Moveable) OnDrag(l DragListener) func() {
	id := m.id()
	m.drag[id] = l
	return func() { delete(m.drag, id) }
}

func (m *Moveable) OnResize(l ResizeListener) func() {
	id := m.id()
	m.resize[id] = l
	return func() { delete(m.resize, id) }
}

func (m *Moveable) OnRotate(l RotateListener) func() {
	id := m.id()
	m.rotate[id] = l
	return func() { delete(m.rotate, id) }
}

func (m *Moveable) OnClip(l ClipListener) func() {
	id := m.id()
	m.clip[id] = l
	return func() { delete(m.clip, id) }
}

func (m *Moveable) id() int {
	m.nextID++
	return m.nextID
}

func (m *Moveable) SetDraggable(v bool)        { m.caps.Draggable = v }
func (m *Moveable) SetResizable(v bool)        { m.caps.Resizable = v }
func (m *Moveable) SetRotatable(v bool)        { m.caps.Rotatable = v }
func (m *Moveable) SetRoundable(v bool)        { m.caps.Roundable = v }
func (m *Moveable) SetClippable(v bool)        { m.caps.Clippable = v }
func (m *Moveable) Capabilities() Capabilities { return m.caps }

func (m *Moveable) SetElementGuidelines(els []*Element) {
	m.guidelines = append([]*Element(nil), els...)
}

func (m *Moveable) ElementGuidelines() []*Element {
	return m.guidelines
}

// Destroy detaches every listener; later gestures fail with ErrDestroyed.
func (m *Moveable) Destroy() {
	m.destroyed = true
	m.caps = Capabilities{}
	m.guidelines = nil
	clear(m.drag)
	clear(m.resize)
	clear(m.rotate)
	clear(m.clip)
}

func (m *Moveable) Destroyed() bool { return m.destroyed }

func (m *Moveable) check(enabled bool) error {
	if m.destroyed {
		return ErrDestroyed
	}
	if !enabled {
		return ErrDisabled
	}
	return nil
}

// DragBy moves the target by (dx, dy) pixels over steps intermediate moves.
func (m *Moveable) DragBy(dx, dy float64, steps int) error {
	if err := m.check(m.caps.Draggable); err != nil {
		return err
	}
	steps = max(steps, 1)
	t := m.opts.Target
	startL, startT := t.Left, t.Top
	for _, l := range m.drag {
		l.DragStart(DragEvent{Target: t, Left: startL, Top: startT})
	}

	prevL, prevT := startL, startT
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		left := startL + quantize(dx*f, m.opts.ThrottleDrag)
		top := startT + quantize(dy*f, m.opts.ThrottleDrag)
		if m.opts.Snappable {
			left, top = m.snap(left, top, t.Width, t.Height)
		}
		ev := DragEvent{
			Target: t,
			Left:   left,
			Top:    top,
			Delta:  [2]float64{left - prevL, top - prevT},
			Dist:   [2]float64{left - startL, top - startT},
		}
		for _, l := range m.drag {
			l.Drag(ev)
		}
		prevL, prevT = left, top
	}

	end := DragEvent{Target: t, Left: prevL, Top: prevT, Dist: [2]float64{prevL - startL, prevT - startT}}
	for _, l := range m.drag {
		l.DragEnd(end)
	}
	return nil
}

// ResizeBy grows the target by (dw, dh) pixels along the axes direction
// selects. Axes with a zero direction keep their size.
func (m *Moveable) ResizeBy(dw, dh float64, direction [2]int, steps int) error {
	if err := m.check(m.caps.Resizable); err != nil {
		return err
	}
	steps = max(steps, 1)
	t := m.opts.Target
	startW, startH := t.Width, t.Height
	for _, l := range m.resize {
		l.ResizeStart(ResizeEvent{Target: t, Width: startW, Height: startH, Direction: direction})
	}

	var prev [2]float64
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		var dist [2]float64
		if direction[0] != 0 {
			dist[0] = math.Max(quantize(dw*f, m.opts.ThrottleResize), 1-startW)
		}
		if direction[1] != 0 {
			dist[1] = math.Max(quantize(dh*f, m.opts.ThrottleResize), 1-startH)
		}
		ev := ResizeEvent{
			Target:    t,
			Width:     startW + dist[0],
			Height:    startH + dist[1],
			Dist:      dist,
			Delta:     [2]float64{dist[0] - prev[0], dist[1] - prev[1]},
			Direction: direction,
		}
		for _, l := range m.resize {
			l.Resize(ev)
		}
		prev = dist
	}

	end := ResizeEvent{Target: t, Width: startW + prev[0], Height: startH + prev[1], Dist: prev, Direction: direction}
	for _, l := range m.resize {
		l.ResizeEnd(end)
	}
	return nil
}

// RotateBy turns the target by deg degrees relative to its current angle.
func (m *Moveable) RotateBy(deg float64, steps int) error {
	if err := m.check(m.caps.Rotatable); err != nil {
		return err
	}
	steps = max(steps, 1)
	t := m.opts.Target
	start := t.Transform.Angle()
	tx, ty := t.Transform.Translation()
	for _, l := range m.rotate {
		l.RotateStart(RotateEvent{Target: t, Rotate: start, Transform: t.Transform})
	}

	prev := 0.0
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		dist := quantize(deg*f, m.opts.ThrottleRotate)
		ev := RotateEvent{
			Target:    t,
			Rotate:    start + dist,
			Delta:     dist - prev,
			Dist:      dist,
			Transform: Translate(tx, ty).Multiply(Rotate(start + dist)),
		}
		for _, l := range m.rotate {
			l.Rotate(ev)
		}
		prev = dist
	}

	end := RotateEvent{Target: t, Rotate: start + prev, Dist: prev, Transform: t.Transform}
	for _, l := range m.rotate {
		l.RotateEnd(end)
	}
	return nil
}

// ClipTo applies a CSS clip-path to the target.
func (m *Moveable) ClipTo(clipStyle string) error {
	if err := m.check(m.caps.Clippable); err != nil {
		return err
	}
	ev := ClipEvent{Target: m.opts.Target, ClipStyle: clipStyle}
	for _, l := range m.clip {
		l.ClipStart(ev)
	}
	for _, l := range m.clip {
		l.Clip(ev)
	}
	for _, l := range m.clip {
		l.ClipEnd(ev)
	}
	return nil
}

// snap aligns the moving rectangle's edges or center to the nearest
// guideline within the snap threshold, independently per axis.
func (m *Moveable) snap(left, top, w, h float64) (float64, float64) {
	var xs, ys []float64
	for _, g := range m.guidelines {
		if g == m.opts.Target {
			continue
		}
		if g == m.opts.Container {
			xs = append(xs, 0, g.Width/2, g.Width)
			ys = append(ys, 0, g.Height/2, g.Height)
			continue
		}
		xs = append(xs, g.Left, g.CenterX(), g.Right())
		ys = append(ys, g.Top, g.CenterY(), g.Bottom())
	}
	left += snapOffset([]float64{left, left + w/2, left + w}, xs, m.opts.SnapThreshold)
	top += snapOffset([]float64{top, top + h/2, top + h}, ys, m.opts.SnapThreshold)
	return left, top
}

func snapOffset(edges, lines []float64, threshold float64) float64 {
	best, found := 0.0, false
	for _, e := range edges {
		for _, l := range lines {
			d := l - e
			if math.Abs(d) <= threshold && (!found || math.Abs(d) < math.Abs(best)) {
				best, found = d, true
			}
		}
	}
	return best
}

func quantize(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}
