// Package geom provides the pixel rectangle type used for selections,
// monitor bounds and transform targets. Rectangles live in virtual-desktop
// space with the origin at the capture bitmap's top-left corner.
package geom

// Unset marks a coordinate that has not been assigned yet. A rectangle is
// only usable once all four coordinates are set.
const Unset int32 = -0x80000000

// Point is a pixel position. Either coordinate may be Unset.
type Point struct {
	X int32
	Y int32
}

// Rect is a selection rectangle. It is deliberately NOT kept normalized:
// Left may exceed Right and Top may exceed Bottom. The orientation encodes
// which corner is anchor A (Left,Top) and which is anchor B (Right,Bottom),
// so normalization must never be applied to the stored anchors.
type Rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// UnsetRect returns a rectangle with all four coordinates unset.
func UnsetRect() Rect {
	return Rect{Left: Unset, Top: Unset, Right: Unset, Bottom: Unset}
}

// IsValid reports whether all four coordinates are set.
func (r Rect) IsValid() bool {
	return r.Left != Unset && r.Top != Unset && r.Right != Unset && r.Bottom != Unset
}

// Normalized returns the rectangle with Left <= Right and Top <= Bottom.
// Idempotent; the receiver is not modified.
func (r Rect) Normalized() Rect {
	if r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	if r.Top > r.Bottom {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	return r
}

// Width returns the inclusive pixel width of the normalized rectangle.
func (r Rect) Width() int32 {
	n := r.Normalized()
	return n.Right - n.Left + 1
}

// Height returns the inclusive pixel height of the normalized rectangle.
func (r Rect) Height() int32 {
	n := r.Normalized()
	return n.Bottom - n.Top + 1
}

// A returns anchor A, the (Left,Top) corner.
func (r Rect) A() Point { return Point{X: r.Left, Y: r.Top} }

// B returns anchor B, the (Right,Bottom) corner.
func (r Rect) B() Point { return Point{X: r.Right, Y: r.Bottom} }

// Bounds describes the capture bitmap extent used for clamping.
type Bounds struct {
	Width  int32
	Height int32
}

// ClampX saturates x into [0, Width-1].
func (b Bounds) ClampX(x int32) int32 {
	if x < 0 {
		return 0
	}
	if x > b.Width-1 {
		return b.Width - 1
	}
	return x
}

// ClampY saturates y into [0, Height-1].
func (b Bounds) ClampY(y int32) int32 {
	if y < 0 {
		return 0
	}
	if y > b.Height-1 {
		return b.Height - 1
	}
	return y
}

// ClampPoint saturates both coordinates of p into the bounds.
func (b Bounds) ClampPoint(p Point) Point {
	return Point{X: b.ClampX(p.X), Y: b.ClampY(p.Y)}
}

// ClampRect saturates all four coordinates of r into the bounds.
// Unset coordinates stay unset.
func (b Bounds) ClampRect(r Rect) Rect {
	if r.Left != Unset {
		r.Left = b.ClampX(r.Left)
	}
	if r.Right != Unset {
		r.Right = b.ClampX(r.Right)
	}
	if r.Top != Unset {
		r.Top = b.ClampY(r.Top)
	}
	if r.Bottom != Unset {
		r.Bottom = b.ClampY(r.Bottom)
	}
	return r
}

// Contains reports whether p lies inside the bounds.
func (b Bounds) Contains(p Point) bool {
	return p.X >= 0 && p.X < b.Width && p.Y >= 0 && p.Y < b.Height
}
