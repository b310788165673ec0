package capture

import (
	"image"
	"image/color"
	"testing"

	"screen-snip/src/geom"
)

func TestCropCopiesRegion(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.SetRGBA(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 0, A: 255})
		}
	}

	out := Crop(src, geom.Rect{Left: 2, Top: 3, Right: 5, Bottom: 6})
	if got := out.Bounds(); got.Dx() != 4 || got.Dy() != 4 {
		t.Fatalf("crop size = %dx%d, want 4x4 (edges inclusive)", got.Dx(), got.Dy())
	}
	if got := out.RGBAAt(0, 0); got != (color.RGBA{R: 20, G: 30, A: 255}) {
		t.Errorf("top-left pixel = %+v, want source (2,3)", got)
	}
	if got := out.RGBAAt(3, 3); got != (color.RGBA{R: 50, G: 60, A: 255}) {
		t.Errorf("bottom-right pixel = %+v, want source (5,6)", got)
	}
}

func TestCropNormalizesOrientation(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	src.SetRGBA(2, 3, color.RGBA{R: 200, A: 255})

	out := Crop(src, geom.Rect{Left: 5, Top: 6, Right: 2, Bottom: 3})
	if got := out.Bounds(); got.Dx() != 4 || got.Dy() != 4 {
		t.Fatalf("crop size = %dx%d, want 4x4", got.Dx(), got.Dy())
	}
	if got := out.RGBAAt(0, 0); got.R != 200 {
		t.Errorf("top-left pixel R = %d, want 200 from normalized origin", got.R)
	}
}

func TestSessionCoordinateTranslation(t *testing.T) {
	s := &Session{
		bitmap: image.NewRGBA(image.Rect(0, 0, 100, 50)),
		origin: image.Pt(-1920, 0),
	}
	if got := s.ToBitmap(-1900, 10); got != (geom.Point{X: 20, Y: 10}) {
		t.Errorf("ToBitmap = %+v, want {20 10}", got)
	}
	x, y := s.ToScreen(geom.Point{X: 20, Y: 10})
	if x != -1900 || y != 10 {
		t.Errorf("ToScreen = (%d,%d), want (-1900,10)", x, y)
	}
}

func TestPixelAtOutOfBounds(t *testing.T) {
	s := &Session{bitmap: image.NewRGBA(image.Rect(0, 0, 4, 4))}
	s.bitmap.SetRGBA(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	if r, g, b := s.PixelAt(geom.Point{X: 1, Y: 1}); r != 10 || g != 20 || b != 30 {
		t.Errorf("PixelAt(1,1) = (%d,%d,%d), want (10,20,30)", r, g, b)
	}
	if r, g, b := s.PixelAt(geom.Point{X: -1, Y: 0}); r != 0 || g != 0 || b != 0 {
		t.Errorf("out of bounds = (%d,%d,%d), want black", r, g, b)
	}
}
