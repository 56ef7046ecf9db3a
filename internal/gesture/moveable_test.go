package gesture

import (
	"errors"
	"math"
	"testing"
)

type recorder struct {
	target *Element
	drags  []DragEvent
	resize []ResizeEvent
	rotate []RotateEvent
	clips  []ClipEvent
	starts int
	ends   int
}

func (r *recorder) DragStart(DragEvent) { r.starts++ }
func (r *recorder) Drag(e DragEvent) {
	r.drags = append(r.drags, e)
	e.Target.Left, e.Target.Top = e.Left, e.Top
}
func (r *recorder) DragEnd(DragEvent)       { r.ends++ }
func (r *recorder) ResizeStart(ResizeEvent) { r.starts++ }
func (r *recorder) Resize(e ResizeEvent)    { r.resize = append(r.resize, e) }
func (r *recorder) ResizeEnd(ResizeEvent)   { r.ends++ }
func (r *recorder) RotateStart(RotateEvent) { r.starts++ }
func (r *recorder) Rotate(e RotateEvent) {
	r.rotate = append(r.rotate, e)
	e.Target.Transform = e.Transform
}
func (r *recorder) RotateEnd(RotateEvent) { r.ends++ }
func (r *recorder) ClipStart(ClipEvent)   { r.starts++ }
func (r *recorder) Clip(e ClipEvent)      { r.clips = append(r.clips, e) }
func (r *recorder) ClipEnd(ClipEvent)     { r.ends++ }

func newTestMoveable(t *testing.T, snappable bool) (*Moveable, *Element, *Element) {
	t.Helper()
	container := &Element{ID: "artboard", Width: 1000, Height: 1000}
	target := &Element{ID: "b1", Left: 100, Top: 100, Width: 200, Height: 100, Transform: Identity()}
	m, err := NewMoveable(Options{Target: target, Container: container, Snappable: snappable, ThrottleDrag: 1, ThrottleRotate: 0.2})
	if err != nil {
		t.Fatalf("NewMoveable: %v", err)
	}
	return m, target, container
}

func TestNewMoveable_RequiresTargetAndContainer(t *testing.T) {
	if _, err := NewMoveable(Options{Container: &Element{}}); !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}
	if _, err := NewMoveable(Options{Target: &Element{}}); !errors.Is(err, ErrNoContainer) {
		t.Errorf("expected ErrNoContainer, got %v", err)
	}
}

func TestMoveable_DisabledCapability(t *testing.T) {
	m, _, _ := newTestMoveable(t, false)
	if err := m.DragBy(10, 10, 1); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
	m.SetDraggable(true)
	if err := m.DragBy(10, 10, 1); err != nil {
		t.Fatalf("DragBy: %v", err)
	}
}

func TestMoveable_DragSteps(t *testing.T) {
	m, target, _ := newTestMoveable(t, false)
	m.SetDraggable(true)
	r := &recorder{}
	m.OnDrag(r)

	if err := m.DragBy(40, -20, 4); err != nil {
		t.Fatal(err)
	}
	if r.starts != 1 || r.ends != 1 {
		t.Errorf("expected one start and one end, got %d/%d", r.starts, r.ends)
	}
	if len(r.drags) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(r.drags))
	}
	last := r.drags[3]
	if last.Left != 140 || last.Top != 80 {
		t.Errorf("final position = (%v, %v), want (140, 80)", last.Left, last.Top)
	}
	if last.Delta != [2]float64{10, -5} {
		t.Errorf("last delta = %v", last.Delta)
	}
	if target.Left != 140 {
		t.Errorf("listener did not move target: %v", target.Left)
	}
}

func TestMoveable_DragSnapsToGuideline(t *testing.T) {
	m, _, container := newTestMoveable(t, true)
	m.SetDraggable(true)
	other := &Element{ID: "b2", Left: 400, Top: 600, Width: 50, Height: 50}
	m.SetElementGuidelines([]*Element{other, container})
	r := &recorder{}
	m.OnDrag(r)

	// right edge lands at 397, three pixels short of other's left edge
	if err := m.DragBy(97, 0, 1); err != nil {
		t.Fatal(err)
	}
	if got := r.drags[0].Left; got != 200 {
		t.Errorf("expected snap to left=200, got %v", got)
	}
}

func TestMoveable_ResizeLeavesIdleAxis(t *testing.T) {
	m, _, _ := newTestMoveable(t, false)
	m.SetResizable(true)
	r := &recorder{}
	m.OnResize(r)

	if err := m.ResizeBy(50, 80, [2]int{-1, 0}, 2); err != nil {
		t.Fatal(err)
	}
	last := r.resize[len(r.resize)-1]
	if last.Width != 250 || last.Height != 100 {
		t.Errorf("size = %vx%v, want 250x100", last.Width, last.Height)
	}
	if last.Delta[1] != 0 || last.Dist[1] != 0 {
		t.Errorf("idle axis reported movement: %+v", last)
	}
}

func TestMoveable_RotateIsRelativeToStart(t *testing.T) {
	m, target, _ := newTestMoveable(t, false)
	m.SetRotatable(true)
	r := &recorder{}
	m.OnRotate(r)

	if err := m.RotateBy(30, 3); err != nil {
		t.Fatal(err)
	}
	if err := m.RotateBy(15, 1); err != nil {
		t.Fatal(err)
	}
	last := r.rotate[len(r.rotate)-1]
	if math.Abs(last.Dist-15) > 1e-9 {
		t.Errorf("dist = %v, want 15", last.Dist)
	}
	if math.Abs(target.Transform.Angle()-45) > 1e-6 {
		t.Errorf("angle = %v, want 45", target.Transform.Angle())
	}
}

func TestMoveable_DestroyDetaches(t *testing.T) {
	m, _, _ := newTestMoveable(t, false)
	m.SetClippable(true)
	r := &recorder{}
	unsubscribe := m.OnClip(r)

	if err := m.ClipTo("inset(1px 2px 3px 4px)"); err != nil {
		t.Fatal(err)
	}
	unsubscribe()
	if err := m.ClipTo("inset(0)"); err != nil {
		t.Fatal(err)
	}
	if len(r.clips) != 1 {
		t.Errorf("expected 1 clip after unsubscribe, got %d", len(r.clips))
	}

	m.Destroy()
	if err := m.ClipTo("inset(0)"); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
}

func TestMatrix_TranslateThenRotateKeepsTranslation(t *testing.T) {
	m := Translate(12, -7).Multiply(Rotate(90))
	tx, ty := m.Translation()
	if tx != 12 || ty != -7 {
		t.Errorf("translation = (%v, %v)", tx, ty)
	}
	if math.Abs(m.Angle()-90) > 1e-9 {
		t.Errorf("angle = %v", m.Angle())
	}
	if (Matrix{}).String() != "matrix(1, 0, 0, 1, 0, 0)" {
		t.Errorf("zero matrix should print as identity, got %s", Matrix{})
	}
}
