// Package render paints an overlay frame from a selection snapshot. It is a
// pure function of its input: the captured bitmap plus selection state go in,
// pixels come out. Nothing here touches the OS, so every drawing rule is
// testable headless.
package render

import (
	"fmt"
	"image"
	"image/color"

	"screen-snip/src/geom"
	"screen-snip/src/selection"
)

const (
	// ZoomTile is the edge length of the bitmap patch a loupe magnifies.
	ZoomTile = 32
)

// Scheme is the overlay color set.
type Scheme struct {
	Accent      color.RGBA
	Inverse     color.RGBA
	DarkenAlpha uint8
}

// SchemeFor returns the normal or alternate overlay colors. The alternate
// scheme darkens the backdrop fully, which reads better on bright desktops.
func SchemeFor(alternate bool) Scheme {
	if alternate {
		return Scheme{
			Accent:      color.RGBA{R: 0, G: 116, B: 129, A: 255},
			Inverse:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
			DarkenAlpha: 255,
		}
	}
	return Scheme{
		Accent:      color.RGBA{R: 245, G: 167, B: 66, A: 255},
		Inverse:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		DarkenAlpha: 50,
	}
}

// Input is everything one frame depends on.
type Input struct {
	// Bitmap is the captured desktop; it is only read.
	Bitmap *image.RGBA

	Mode    selection.Mode
	Rect    geom.Rect
	Zoom    int32
	Pointer geom.Point

	Monitors []geom.Rect
	Stored   geom.Rect

	Alternate   bool
	Diagnostics bool
	// Blink flips each second so the frame colors pulse.
	Blink bool
}

func (in Input) scheme() Scheme {
	s := SchemeFor(in.Alternate)
	if in.Blink {
		s.Accent, s.Inverse = s.Inverse, s.Accent
	}
	return s
}

// Draw composes a full overlay frame into dst, which must have the bitmap's
// dimensions.
func Draw(dst *image.RGBA, in Input) {
	sc := in.scheme()

	drawBackdrop(dst, in.Bitmap, sc.DarkenAlpha)

	switch in.Mode {
	case selection.ModeFirstPoint:
		a := in.Rect.A()
		drawCross(dst, a, sc.Accent)
		drawLoupe(dst, in.Bitmap, a, in.Zoom, sc)
		drawCornerLabel(dst, in.Rect, a, "A", sc)
	case selection.ModeEditA, selection.ModeEditB:
		n := in.Rect.Normalized()
		drawInterior(dst, in.Bitmap, n)
		drawFrame(dst, n, sc)
		drawSizeLabels(dst, in, n, sc)
		drawCornerLoupes(dst, in, sc)
	}

	if in.Diagnostics {
		drawDiagnostics(dst, in, sc)
	}
}

// drawBackdrop copies the bitmap darkened by a constant-alpha black layer.
func drawBackdrop(dst *image.RGBA, src *image.RGBA, alpha uint8) {
	keep := uint32(255 - alpha)
	b := src.Bounds().Intersect(dst.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		si := src.PixOffset(b.Min.X, y)
		di := dst.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Pix[di+0] = uint8(uint32(src.Pix[si+0]) * keep / 255)
			dst.Pix[di+1] = uint8(uint32(src.Pix[si+1]) * keep / 255)
			dst.Pix[di+2] = uint8(uint32(src.Pix[si+2]) * keep / 255)
			dst.Pix[di+3] = 255
			si += 4
			di += 4
		}
	}
}

// drawInterior restores the undarkened pixels inside the selection.
func drawInterior(dst *image.RGBA, src *image.RGBA, n geom.Rect) {
	r := image.Rect(int(n.Left), int(n.Top), int(n.Right)+1, int(n.Bottom)+1)
	r = r.Intersect(src.Bounds()).Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		si := src.PixOffset(r.Min.X, y)
		di := dst.PixOffset(r.Min.X, y)
		copy(dst.Pix[di:di+r.Dx()*4], src.Pix[si:si+r.Dx()*4])
	}
}

// drawFrame strokes a double border just outside the selection.
func drawFrame(dst *image.RGBA, n geom.Rect, sc Scheme) {
	outer := image.Rect(int(n.Left)-2, int(n.Top)-2, int(n.Right)+3, int(n.Bottom)+3)
	innerEdge := image.Rect(int(n.Left)-1, int(n.Top)-1, int(n.Right)+2, int(n.Bottom)+2)
	strokeRect(dst, outer, sc.Accent)
	strokeRect(dst, innerEdge, sc.Inverse)
}

// drawCross paints full-length crosshair lines through the first point.
func drawCross(dst *image.RGBA, p geom.Point, c color.RGBA) {
	b := dst.Bounds()
	fillRect(dst, image.Rect(b.Min.X, int(p.Y), b.Max.X, int(p.Y)+1), c)
	fillRect(dst, image.Rect(int(p.X), b.Min.Y, int(p.X)+1, b.Max.Y), c)
}

// drawSizeLabels paints the width label above the selection and the height
// label rotated along its right edge, falling back to the left when the
// right side runs off the bitmap. Labels are skipped while the selection is
// smaller than one zoomed loupe tile, where they would collide with the
// loupes.
func drawSizeLabels(dst *image.RGBA, in Input, n geom.Rect, sc Scheme) {
	w := int(n.Right - n.Left + 1)
	h := int(n.Bottom - n.Top + 1)
	threshold := int(in.Zoom) * ZoomTile

	if w >= threshold {
		label := fmt.Sprintf("%d px", w)
		tw, th := measureText(label)
		x := int(n.Left) + (w-tw)/2
		y := int(n.Top) - th - 4
		if y < dst.Bounds().Min.Y {
			// Not enough room above; drop the label inside the frame.
			y = int(n.Top) + 4
		}
		drawText(dst, x, y, label, sc.Inverse, sc.Accent)
	}

	if h >= threshold {
		label := fmt.Sprintf("%d px", h)
		rw, rh := rotatedTextSize(label)
		x := int(n.Right) + 4
		y := int(n.Top) + (h-rh)/2
		if x+rw > dst.Bounds().Max.X {
			x = int(n.Left) - rw - 4
		}
		drawTextRotated(dst, x, y, label, sc.Inverse, sc.Accent)
	}
}

// drawCornerLoupes magnifies both corners. The inactive corner's loupe is
// suppressed while either axis span is smaller than one zoomed tile, because
// the loupe would cover the selection.
func drawCornerLoupes(dst *image.RGBA, in Input, sc Scheme) {
	n := in.Rect
	a, b := n.A(), n.B()
	active := a
	inactive := b
	if in.Mode == selection.ModeEditB {
		active, inactive = b, a
	}

	drawLoupe(dst, in.Bitmap, active, in.Zoom, sc)
	drawCornerLabel(dst, in.Rect, active, activeName(in.Mode), sc)

	spanX := n.Right - n.Left
	if spanX < 0 {
		spanX = -spanX
	}
	spanY := n.Bottom - n.Top
	if spanY < 0 {
		spanY = -spanY
	}
	tile := in.Zoom * ZoomTile
	if spanX >= tile && spanY >= tile {
		drawLoupe(dst, in.Bitmap, inactive, in.Zoom, sc)
		drawCornerLabel(dst, in.Rect, inactive, inactiveName(in.Mode), sc)
	}
}

func activeName(m selection.Mode) string {
	if m == selection.ModeEditB {
		return "B"
	}
	return "A"
}

func inactiveName(m selection.Mode) string {
	if m == selection.ModeEditB {
		return "A"
	}
	return "B"
}

// drawCornerLabel places the corner's coordinates beside it, pushed away from
// the rectangle so the label never covers the selection.
func drawCornerLabel(dst *image.RGBA, r geom.Rect, p geom.Point, name string, sc Scheme) {
	label := fmt.Sprintf("%s (%d, %d)", name, p.X, p.Y)
	tw, th := measureText(label)

	x := int(p.X) + 8
	y := int(p.Y) + 8
	// Flip to the other side when the corner anchors the right or bottom
	// edge, keeping the label outside the rectangle.
	if r.IsValid() {
		n := r.Normalized()
		if p.X == n.Right {
			x = int(p.X) - tw - 8
		}
		if p.Y == n.Bottom {
			y = int(p.Y) - th - 8
		}
	}
	b := dst.Bounds()
	if x < b.Min.X {
		x = b.Min.X
	}
	if x+tw > b.Max.X {
		x = b.Max.X - tw
	}
	if y < b.Min.Y {
		y = b.Min.Y
	}
	if y+th > b.Max.Y {
		y = b.Max.Y - th
	}
	drawText(dst, x, y, label, sc.Inverse, sc.Accent)
}
