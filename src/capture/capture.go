// Package capture takes the full virtual-desktop snapshot a selection
// session works on, together with the monitor layout at that moment.
package capture

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/kbinani/screenshot"

	"screen-snip/src/geom"
)

// Session holds one capture: the desktop bitmap and the monitor rectangles,
// both valid until the next capture replaces them. All coordinates elsewhere
// in the program are relative to the bitmap origin (virtual-desktop top-left).
type Session struct {
	bitmap   *image.RGBA
	monitors []geom.Rect
	// Origin is the virtual-desktop top-left in OS screen coordinates.
	// Needed to translate the OS cursor position into bitmap space.
	origin image.Point
}

// NewSession wraps an existing bitmap and layout, for callers that obtain
// pixels from somewhere other than the live desktop.
func NewSession(bitmap *image.RGBA, monitors []geom.Rect, origin image.Point) *Session {
	return &Session{bitmap: bitmap, monitors: monitors, origin: origin}
}

// Start snapshots the entire virtual desktop and enumerates monitors.
// Monitor order is whatever the OS yields; it is stable within the session.
func Start() (*Session, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}

	union := screenshot.GetDisplayBounds(0)
	displays := make([]image.Rectangle, n)
	displays[0] = union
	for i := 1; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		displays[i] = b
		union = union.Union(b)
	}

	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, fmt.Errorf("failed to capture virtual desktop: %w", err)
	}

	// Monitor rectangles are stored in bitmap coordinates (inclusive edges),
	// so the rest of the program never sees the virtual-desktop offset.
	monitors := make([]geom.Rect, n)
	for i, d := range displays {
		monitors[i] = geom.Rect{
			Left:   int32(d.Min.X - union.Min.X),
			Top:    int32(d.Min.Y - union.Min.Y),
			Right:  int32(d.Max.X - union.Min.X - 1),
			Bottom: int32(d.Max.Y - union.Min.Y - 1),
		}
	}

	return &Session{bitmap: img, monitors: monitors, origin: union.Min}, nil
}

// Bitmap returns the captured desktop image. The session owns it; transforms
// mutate it in place.
func (s *Session) Bitmap() *image.RGBA { return s.bitmap }

// Bounds returns the bitmap extent for clamping.
func (s *Session) Bounds() geom.Bounds {
	b := s.bitmap.Bounds()
	return geom.Bounds{Width: int32(b.Dx()), Height: int32(b.Dy())}
}

// Monitors returns per-display bounds in bitmap coordinates.
func (s *Session) Monitors() []geom.Rect { return s.monitors }

// Origin returns the virtual-desktop top-left in OS screen coordinates.
func (s *Session) Origin() image.Point { return s.origin }

// ToBitmap translates an OS screen position into bitmap coordinates.
func (s *Session) ToBitmap(x, y int) geom.Point {
	return geom.Point{X: int32(x - s.origin.X), Y: int32(y - s.origin.Y)}
}

// ToScreen translates a bitmap position back into OS screen coordinates.
func (s *Session) ToScreen(p geom.Point) (int, int) {
	return int(p.X) + s.origin.X, int(p.Y) + s.origin.Y
}

// PixelAt samples the bitmap. Out-of-bounds positions return opaque black.
func (s *Session) PixelAt(p geom.Point) (r, g, b uint8) {
	if !s.Bounds().Contains(p) {
		return 0, 0, 0
	}
	c := s.bitmap.RGBAAt(int(p.X), int(p.Y))
	return c.R, c.G, c.B
}

// Crop copies the pixels of a normalized, clamped rectangle into a fresh
// image. The source bitmap is left untouched.
func Crop(src *image.RGBA, r geom.Rect) *image.RGBA {
	n := r.Normalized()
	w := int(n.Right - n.Left + 1)
	h := int(n.Bottom - n.Top + 1)
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), src, image.Pt(int(n.Left), int(n.Top)), draw.Src)
	return out
}
