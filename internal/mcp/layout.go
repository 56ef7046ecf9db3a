package mcpserver

import (
	"math"

	"artboard/internal/domain"
	"artboard/internal/editor"
)

// Layout constants, in pixels.
const (
	GridSize = 24.0 // quarter inch
	Padding  = 24.0
)

// LayoutEngine places agent-created blocks on the artboard so that they
// don't overlap existing ones. It works in pixels and converts from and
// to the artboard unit at the edges.
type LayoutEngine struct {
	unit     domain.Unit
	gridSize float64
	padding  float64
	maxRowW  float64
	maxH     float64
}

// NewLayoutEngine lays out blocks on an artboard of width x height unit.
func NewLayoutEngine(unit domain.Unit, width, height float64) *LayoutEngine {
	return &LayoutEngine{
		unit:     unit,
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  editor.ToPixels(width, unit),
		maxH:     editor.ToPixels(height, unit),
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// rect is a simple axis-aligned bounding box in pixels.
type rect struct {
	x, y, w, h float64
}

func (a rect) intersects(b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}

func (le *LayoutEngine) rectOf(b *domain.Block) rect {
	return rect{
		x: editor.ToPixels(b.Left, le.unit),
		y: editor.ToPixels(b.Top, le.unit),
		w: editor.ToPixels(b.Width, le.unit),
		h: editor.ToPixels(b.Height, le.unit),
	}
}

// NextPosition finds the first free grid position, scanning rows top to
// bottom, for a block of size (w, h) in the artboard unit. It returns
// left and top in the artboard unit.
func (le *LayoutEngine) NextPosition(existing []*domain.Block, w, h float64) (float64, float64) {
	if len(existing) == 0 {
		return 0, 0
	}

	occupied := make([]rect, len(existing))
	for i, b := range existing {
		r := le.rectOf(b)
		occupied[i] = rect{r.x - le.padding, r.y - le.padding, r.w + le.padding*2, r.h + le.padding*2}
	}

	candidate := rect{w: editor.ToPixels(w, le.unit), h: editor.ToPixels(h, le.unit)}
	for y := 0.0; y+candidate.h <= le.maxH; y += le.gridSize {
		for x := 0.0; x+candidate.w <= le.maxRowW; x += le.gridSize {
			candidate.x, candidate.y = le.snap(x), le.snap(y)
			free := true
			for _, occ := range occupied {
				if candidate.intersects(occ) {
					free = false
					break
				}
			}
			if free {
				return le.fromPixels(candidate.x), le.fromPixels(candidate.y)
			}
		}
	}

	// Artboard full: place below everything.
	maxY := 0.0
	for _, r := range occupied {
		maxY = max(maxY, r.y+r.h)
	}
	return 0, le.fromPixels(le.snap(maxY))
}

// Position is a block's new top-left corner in the artboard unit.
type Position struct {
	Reference string  `json:"reference"`
	Left      float64 `json:"left"`
	Top       float64 `json:"top"`
}

// ArrangeGroup places blocks in rows starting from (startX, startY), in the
// artboard unit, wrapping at the artboard width. Blocks are not modified.
func (le *LayoutEngine) ArrangeGroup(blocks []*domain.Block, startX, startY float64) []Position {
	x0 := le.snap(editor.ToPixels(startX, le.unit))
	x, y := x0, le.snap(editor.ToPixels(startY, le.unit))
	rowHeight := 0.0

	out := make([]Position, 0, len(blocks))
	for _, b := range blocks {
		r := le.rectOf(b)
		if x > x0 && x+r.w > le.maxRowW {
			x = x0
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
		out = append(out, Position{Reference: b.Reference, Left: le.fromPixels(x), Top: le.fromPixels(y)})
		rowHeight = max(rowHeight, r.h)
		x += le.snap(r.w + le.padding)
	}
	return out
}

func (le *LayoutEngine) fromPixels(px float64) float64 {
	return editor.FromPixels(px, le.unit)
}
