package mcpserver

import (
	"testing"

	"artboard/internal/domain"
)

func TestNextPosition_EmptyArtboard(t *testing.T) {
	le := NewLayoutEngine(domain.UnitInch, 8.5, 11)
	x, y := le.NextPosition(nil, 3, 2)
	if x != 0 || y != 0 {
		t.Errorf("expected (0, 0) for empty artboard, got (%.2f, %.2f)", x, y)
	}
}

func TestNextPosition_AvoidsExistingBlocks(t *testing.T) {
	le := NewLayoutEngine(domain.UnitPixel, 1000, 1000)
	existing := []*domain.Block{
		{Left: 0, Top: 0, Width: 480, Height: 360},
		{Left: 500, Top: 0, Width: 200, Height: 200},
	}
	x, y := le.NextPosition(existing, 240, 240)

	candidate := rect{x, y, 240, 240}
	for _, b := range existing {
		padded := rect{b.Left - Padding, b.Top - Padding, b.Width + Padding*2, b.Height + Padding*2}
		if candidate.intersects(padded) {
			t.Errorf("position (%.0f, %.0f) overlaps block at (%.0f, %.0f)", x, y, b.Left, b.Top)
		}
	}
	if x+240 > 1000 {
		t.Errorf("position (%.0f, %.0f) leaves the artboard", x, y)
	}
}

func TestNextPosition_Inches(t *testing.T) {
	le := NewLayoutEngine(domain.UnitInch, 8.5, 11)
	existing := []*domain.Block{{Left: 0, Top: 0, Width: 8.5, Height: 2}}
	x, y := le.NextPosition(existing, 2, 2)
	// 2in + 0.25in padding below the full-width block.
	if x != 0 || y != 2.25 {
		t.Errorf("got (%.2f, %.2f), want (0, 2.25)", x, y)
	}
}

func TestArrangeGroup(t *testing.T) {
	le := NewLayoutEngine(domain.UnitPixel, 700, 2000)
	blocks := []*domain.Block{
		{Reference: "1", Width: 300, Height: 200},
		{Reference: "2", Width: 300, Height: 100},
		{Reference: "3", Width: 300, Height: 200},
	}

	got := le.ArrangeGroup(blocks, 0, 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(got))
	}
	want := []Position{
		{Reference: "1", Left: 0, Top: 0},
		{Reference: "2", Left: 336, Top: 0},
		{Reference: "3", Left: 0, Top: 216},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if blocks[1].Left != 0 {
		t.Error("ArrangeGroup modified its input")
	}
}

func TestSnap(t *testing.T) {
	le := NewLayoutEngine(domain.UnitPixel, 100, 100)
	tests := []struct {
		input, want float64
	}{
		{0, 0},
		{11, 0},
		{13, 24},
		{24, 24},
		{37, 48},
		{100, 96},
	}
	for _, tt := range tests {
		if got := le.snap(tt.input); got != tt.want {
			t.Errorf("snap(%.0f) = %.0f, want %.0f", tt.input, got, tt.want)
		}
	}
}
