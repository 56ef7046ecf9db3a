package gesture

import (
	"fmt"
	"math"
)

// Element is the on-screen node a block is rendered into. Geometry is in
// device pixels, relative to the container's origin.
type Element struct {
	ID        string
	Left      float64
	Top       float64
	Width     float64
	Height    float64
	Transform Matrix
	ClipPath  string
}

func (e *Element) Right() float64   { return e.Left + e.Width }
func (e *Element) Bottom() float64  { return e.Top + e.Height }
func (e *Element) CenterX() float64 { return e.Left + e.Width/2 }
func (e *Element) CenterY() float64 { return e.Top + e.Height/2 }

// Matrix is a 2D affine transform in CSS matrix(a, b, c, d, e, f) order:
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
//
// The zero Matrix is treated as the identity.
type Matrix struct {
	A, B, C, D, E, F float64
}

func Identity() Matrix {
	return Matrix{A: 1, D: 1}
}

func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, D: 1, E: tx, F: ty}
}

// Rotate returns a rotation by deg degrees around the origin.
func Rotate(deg float64) Matrix {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

func (m Matrix) IsZero() bool {
	return m == Matrix{}
}

// Multiply returns m × n, i.e. n applied first, as in a CSS transform list "m n".
func (m Matrix) Multiply(n Matrix) Matrix {
	if m.IsZero() {
		m = Identity()
	}
	if n.IsZero() {
		n = Identity()
	}
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Translation returns the translation component (m41, m42 in CSSMatrix terms).
func (m Matrix) Translation() (float64, float64) {
	return m.E, m.F
}

// Angle returns the rotation encoded in m, in degrees.
func (m Matrix) Angle() float64 {
	if m.IsZero() {
		return 0
	}
	return math.Atan2(m.B, m.A) * 180 / math.Pi
}

func (m Matrix) String() string {
	if m.IsZero() {
		m = Identity()
	}
	return fmt.Sprintf("matrix(%g, %g, %g, %g, %g, %g)", m.A, m.B, m.C, m.D, m.E, m.F)
}
