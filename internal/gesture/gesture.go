// Package gesture defines the direct-manipulation handle a block binds to and
// ships Moveable, an in-memory handle that performs drag, resize, rotate and
// clip gestures on request.
package gesture

import "errors"

var (
	ErrNoTarget    = errors.New("gesture: no target element")
	ErrNoContainer = errors.New("gesture: no container element")
	ErrDisabled    = errors.New("gesture: capability disabled")
	ErrDestroyed   = errors.New("gesture: handle destroyed")
)

// DragEvent reports the target's position in pixels.
type DragEvent struct {
	Target *Element
	Left   float64
	Top    float64
	Delta  [2]float64 // since the previous step
	Dist   [2]float64 // since gesture start
}

// ResizeEvent reports the target's size in pixels. Direction is -1, 0 or 1
// per axis: -1 drags the left/top edge, 0 leaves the axis alone.
type ResizeEvent struct {
	Target    *Element
	Width     float64
	Height    float64
	Dist      [2]float64
	Delta     [2]float64
	Direction [2]int
}

// RotateEvent reports angles in degrees. Dist is relative to the gesture's
// own start, Rotate is the handle's absolute view of the angle.
type RotateEvent struct {
	Target    *Element
	Rotate    float64
	Delta     float64
	Dist      float64
	Transform Matrix
}

type ClipEvent struct {
	Target    *Element
	ClipStyle string
}

type DragListener interface {
	DragStart(DragEvent)
	Drag(DragEvent)
	DragEnd(DragEvent)
}

type ResizeListener interface {
	ResizeStart(ResizeEvent)
	Resize(ResizeEvent)
	ResizeEnd(ResizeEvent)
}

type RotateListener interface {
	RotateStart(RotateEvent)
	Rotate(RotateEvent)
	RotateEnd(RotateEvent)
}

type ClipListener interface {
	ClipStart(ClipEvent)
	Clip(ClipEvent)
	ClipEnd(ClipEvent)
}

// Capabilities is the set of gestures a handle currently accepts.
type Capabilities struct {
	Draggable bool
	Resizable bool
	Rotatable bool
	Roundable bool
	Clippable bool
}

// Handle mediates the interactive gestures of one element. Every On* call
// returns a func that removes the listener.
type Handle interface {
	OnDrag(DragListener) func()
	OnResize(ResizeListener) func()
	OnRotate(RotateListener) func()
	OnClip(ClipListener) func()

	SetDraggable(bool)
	SetResizable(bool)
	SetRotatable(bool)
	SetRoundable(bool)
	SetClippable(bool)
	Capabilities() Capabilities

	SetElementGuidelines([]*Element)
	ElementGuidelines() []*Element

	Destroy()
}

// Driver performs gestures on a handle's target. Implemented by Moveable.
type Driver interface {
	DragBy(dx, dy float64, steps int) error
	ResizeBy(dw, dh float64, direction [2]int, steps int) error
	RotateBy(deg float64, steps int) error
	ClipTo(clipStyle string) error
}

// Options configures a handle at attach time.
type Options struct {
	Target    *Element
	Container *Element

	Snappable     bool
	SnapThreshold float64 // pixels

	// Throttles quantize reported values; zero disables quantization.
	ThrottleDrag   float64
	ThrottleResize float64
	ThrottleRotate float64
	ThrottleScale  float64
}

// Factory creates a handle for the given options.
type Factory func(Options) (Handle, error)
