package render

import (
	"fmt"
	"image"

	"screen-snip/src/geom"
)

const diagMapWidth = 200

// drawDiagnostics paints the diagnostic panel: geometry readouts, the pixel
// color under the pointer, and a to-scale miniature of the monitor layout.
// The panel sits on the left, or flips to the right edge when the pointer is
// in the left half of the bitmap so it stays out of the way.
func drawDiagnostics(dst *image.RGBA, in Input, sc Scheme) {
	b := in.Bitmap.Bounds()
	lines := []string{
		fmt.Sprintf("bitmap    %dx%d", b.Dx(), b.Dy()),
		fmt.Sprintf("mode      %s", in.Mode),
		fmt.Sprintf("zoom      %dx", in.Zoom),
		fmt.Sprintf("selection %s", rectString(in.Rect)),
		fmt.Sprintf("stored    %s", rectString(in.Stored)),
		pointerLine(in),
	}
	for i, m := range in.Monitors {
		lines = append(lines, fmt.Sprintf("monitor %d %s", i, rectString(m)))
	}

	panelW := 0
	lineH := 0
	for _, s := range lines {
		w, h := measureText(s)
		if w > panelW {
			panelW = w
		}
		if h > lineH {
			lineH = h
		}
	}
	if panelW < diagMapWidth {
		panelW = diagMapWidth
	}

	x := 10
	if int(in.Pointer.X) < b.Dx()/2 {
		x = b.Dx() - panelW - 10
		if x < 10 {
			x = 10
		}
	}
	y := 10

	for _, s := range lines {
		drawText(dst, x, y, s, sc.Inverse, sc.Accent)
		y += lineH + 2
	}

	drawMonitorMap(dst, in, x, y+6)
}

func pointerLine(in Input) string {
	p := in.Pointer
	if !image.Pt(int(p.X), int(p.Y)).In(in.Bitmap.Bounds()) {
		return fmt.Sprintf("pointer   (%d, %d)", p.X, p.Y)
	}
	c := in.Bitmap.RGBAAt(int(p.X), int(p.Y))
	return fmt.Sprintf("pointer   (%d, %d) rgb(%d, %d, %d)", p.X, p.Y, c.R, c.G, c.B)
}

func rectString(r geom.Rect) string {
	if !r.IsValid() {
		if r.Left == geom.Unset {
			return "unset"
		}
		return fmt.Sprintf("(%d, %d) .. unset", r.Left, r.Top)
	}
	n := r.Normalized()
	return fmt.Sprintf("(%d, %d)-(%d, %d) %dx%d", r.Left, r.Top, r.Right, r.Bottom, n.Width(), n.Height())
}

// drawMonitorMap paints a miniature of the monitor layout with the current
// selection filled in, scaled to diagMapWidth.
func drawMonitorMap(dst *image.RGBA, in Input, x, y int) {
	if len(in.Monitors) == 0 {
		return
	}
	b := in.Bitmap.Bounds()
	if b.Dx() == 0 {
		return
	}
	scale := float64(diagMapWidth) / float64(b.Dx())

	shrink := func(r geom.Rect) image.Rectangle {
		n := r.Normalized()
		return image.Rect(
			x+int(float64(n.Left)*scale),
			y+int(float64(n.Top)*scale),
			x+int(float64(n.Right+1)*scale),
			y+int(float64(n.Bottom+1)*scale),
		)
	}

	sc := in.scheme()
	for _, m := range in.Monitors {
		strokeRect(dst, shrink(m), sc.Inverse)
	}
	if in.Rect.IsValid() {
		fillRect(dst, shrink(in.Rect), sc.Accent)
	}
}
